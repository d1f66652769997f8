/* Copyright (C) 2016 Philipp Benner
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package main

/* -------------------------------------------------------------------------- */

import   "context"
import   "fmt"
import   "log"
import   "os"
import   "strconv"
import   "strings"

import   "github.com/pborman/getopt"
import . "github.com/pbenner/pseudobulk"

/* -------------------------------------------------------------------------- */

func parseZoomLevels(str string) ([]int, error) {
  levels := []int{}
  for _, s := range strings.Split(str, ",") {
    t, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
    if err != nil {
      return nil, fmt.Errorf("invalid zoom level `%s'", s)
    }
    levels = append(levels, int(t))
  }
  return levels, nil
}

/* -------------------------------------------------------------------------- */

func main() {
  log.SetFlags(0)

  options := getopt.New()

  optConfig          := options. StringLong("config",                0 , "", "read settings from a YAML configuration file")
  optProjectDir      := options. StringLong("project-dir",           0 , "", "project directory (default: .)")
  optDataDir         := options. StringLong("data-dir",              0 , "", "data directory (default: <project-dir>/data)")
  optOutDir          := options. StringLong("out-dir",               0 , "", "output directory (default: <project-dir>/outs)")
  optAssembly        := options. StringLong("assembly",              0 , "", "genome assembly (default: hg38)")
  optReferenceURL    := options. StringLong("reference-url",         0 , "", "url of the chromosome sizes, `{assembly}' is replaced by the assembly name")
  optChromSizes      := options. StringLong("chrom-sizes",           0 , "", "read chromosome sizes from a local file instead")
  optSaveChromSizes  := options. StringLong("save-chrom-sizes",      0 , "", "save retrieved chromosome sizes to the given file")
  optUCSCMySQL       := options.   BoolLong("ucsc-mysql",            0 ,     "retrieve chromosome sizes from the UCSC MySQL server")
  optGroupColumn     := options. StringLong("group-column",          0 , "", "cell data column with group labels (default: VSN_cell_type)")
  optSampleColumn    := options. StringLong("sample-column",         0 , "", "cell data column with sample ids (default: VSN_sample_id)")
  optThreads         := options.    IntLong("threads",               0 ,  1, "number of threads")
  optNormalize       := options.   BoolLong("normalize",             0 ,     "normalize coverage to reads per million")
  optKeepDuplicates  := options.   BoolLong("keep-duplicates",       0 ,     "do not remove duplicate fragments")
  optScratchDir      := options. StringLong("scratch-dir",           0 , "", "directory for temporary files (default: /tmp)")
  optSplitPattern    := options. StringLong("split-pattern",         0 , "", "pattern separating barcodes from sample names in cell ids (default: -)")
  optBWZoomLevels    := options. StringLong("bigwig-zoom-levels",    0 , "", "comma separated list of BigWig zoom levels")
  optPlotFragLengths := options.   BoolLong("plot-fragment-lengths", 0 ,     "save fragment length histograms of each pseudobulk")
  optVerbose         := options.CounterLong("verbose",              'v',     "verbose level [-v or -vv]")
  optHelp            := options.   BoolLong("help",                 'h',     "print help")

  options.SetParameters("")
  options.Parse(os.Args)

  // command options
  if *optHelp {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  if len(options.Args()) != 0 {
    options.PrintUsage(os.Stderr)
    os.Exit(1)
  }
  config := DefaultConfig()
  if *optConfig != "" {
    if c, err := LoadConfig(*optConfig); err != nil {
      log.Fatal(err)
    } else {
      config = c
    }
  }
  if options.IsSet("project-dir") {
    config.ProjectDir = *optProjectDir
  }
  if options.IsSet("data-dir") {
    config.DataDir = *optDataDir
  }
  if options.IsSet("out-dir") {
    config.OutDir = *optOutDir
  }
  if options.IsSet("assembly") {
    config.Assembly = *optAssembly
  }
  if options.IsSet("reference-url") {
    config.ReferenceURL = *optReferenceURL
  }
  if options.IsSet("chrom-sizes") {
    config.ChromSizesFile = *optChromSizes
  }
  if options.IsSet("save-chrom-sizes") {
    config.SaveChromSizes = *optSaveChromSizes
  }
  if *optUCSCMySQL {
    config.ReferenceSource = ReferenceSourceMySQL
  }
  if options.IsSet("group-column") {
    config.GroupColumn = *optGroupColumn
  }
  if options.IsSet("sample-column") {
    config.SampleColumn = *optSampleColumn
  }
  if options.IsSet("threads") {
    config.Threads = *optThreads
  }
  if *optNormalize {
    config.Normalize = true
  }
  if *optKeepDuplicates {
    config.RemoveDuplicates = false
  }
  if options.IsSet("scratch-dir") {
    config.ScratchDir = *optScratchDir
  }
  if options.IsSet("split-pattern") {
    config.SplitPattern = *optSplitPattern
  }
  if *optBWZoomLevels != "" {
    if levels, err := parseZoomLevels(*optBWZoomLevels); err != nil {
      options.PrintUsage(os.Stderr)
      log.Fatal(err)
    } else {
      config.ZoomLevels = levels
    }
  }
  if *optPlotFragLengths {
    config.PlotFragmentLengths = true
  }
  if *optVerbose > 0 {
    config.Verbose = *optVerbose
  }
  logger := NewLogger(os.Stdout, config.Verbose)

  pipeline := NewPipeline(config, logger)
  if _, err := pipeline.Run(context.Background()); err != nil {
    logger.Error("%v", err)
    os.Exit(1)
  }
}
