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


package pseudobulk

/* -------------------------------------------------------------------------- */

import "fmt"
import "io"
import "os"
import "path/filepath"

import "github.com/pkg/errors"
import "gopkg.in/yaml.v3"

/* -------------------------------------------------------------------------- */

const (
  ReferenceSourceHTTP  = "http"
  ReferenceSourceMySQL = "mysql"
)

// Config collects all settings of the pipeline. Empty data and output
// directories are derived from the project directory by Resolve.
type Config struct {
  ProjectDir          string `yaml:"project_dir"`
  DataDir             string `yaml:"data_dir"`
  OutDir              string `yaml:"out_dir"`
  CellDataFile        string `yaml:"cell_data"`
  FragmentsFile       string `yaml:"fragments"`
  Assembly            string `yaml:"assembly"`
  ReferenceURL        string `yaml:"reference_url"`
  ReferenceSource     string `yaml:"reference_source"`
  UCSCDataSource      string `yaml:"ucsc_data_source"`
  ChromSizesFile      string `yaml:"chrom_sizes"`
  SaveChromSizes      string `yaml:"save_chrom_sizes"`
  GroupColumn         string `yaml:"group_column"`
  SampleColumn        string `yaml:"sample_column"`
  Threads             int    `yaml:"threads"`
  Normalize           bool   `yaml:"normalize"`
  RemoveDuplicates    bool   `yaml:"remove_duplicates"`
  ScratchDir          string `yaml:"scratch_dir"`
  SplitPattern        string `yaml:"split_pattern"`
  ZoomLevels        []int    `yaml:"bigwig_zoom_levels"`
  PlotFragmentLengths bool   `yaml:"plot_fragment_lengths"`
  Verbose             int    `yaml:"verbose"`
}

func DefaultConfig() Config {
  config := Config{}
  config.ProjectDir       = "."
  config.Assembly         = "hg38"
  config.ReferenceURL     = DefaultReferenceURL
  config.ReferenceSource  = ReferenceSourceHTTP
  config.UCSCDataSource   = DefaultUCSCDataSource
  config.GroupColumn      = "VSN_cell_type"
  config.SampleColumn     = "VSN_sample_id"
  config.Threads          = 1
  config.Normalize        = false
  config.RemoveDuplicates = true
  config.ScratchDir       = "/tmp"
  config.SplitPattern     = "-"
  return config
}

// Read a YAML configuration. Fields missing in the file keep the values of
// DefaultConfig.
func LoadConfig(filename string) (Config, error) {
  config := DefaultConfig()
  f, err := os.Open(filename)
  if err != nil {
    return config, err
  }
  defer f.Close()

  decoder := yaml.NewDecoder(f)
  decoder.KnownFields(true)
  // an empty file leaves all defaults
  if err := decoder.Decode(&config); err != nil && err != io.EOF {
    return config, errors.Wrapf(err, "parsing config file `%s' failed", filename)
  }
  return config, nil
}

/* -------------------------------------------------------------------------- */

// Fill in derived paths: <project>/data, <project>/outs, the cell data table
// and the fragment file inside the data directory.
func (config *Config) Resolve() {
  if config.DataDir == "" {
    config.DataDir = filepath.Join(config.ProjectDir, "data")
  }
  if config.OutDir == "" {
    config.OutDir = filepath.Join(config.ProjectDir, "outs")
  }
  if config.CellDataFile == "" {
    config.CellDataFile = filepath.Join(config.DataDir, "cell_data.tsv")
  }
  if config.FragmentsFile == "" {
    config.FragmentsFile = filepath.Join(config.DataDir, "fragments.tsv.gz")
  }
}

func (config Config) Validate() error {
  if config.Threads < 1 {
    return fmt.Errorf("invalid number of threads `%d'", config.Threads)
  }
  if config.GroupColumn == "" || config.SampleColumn == "" {
    return fmt.Errorf("group and sample columns must be specified")
  }
  if config.ChromSizesFile == "" {
    switch config.ReferenceSource {
    case ReferenceSourceHTTP:
      if config.ReferenceURL == "" {
        return fmt.Errorf("no reference url specified")
      }
    case ReferenceSourceMySQL:
    default:
      return fmt.Errorf("invalid reference source `%s'", config.ReferenceSource)
    }
  }
  for _, z := range config.ZoomLevels {
    if z < 1 {
      return fmt.Errorf("invalid bigWig zoom level `%d'", z)
    }
  }
  return nil
}

/* -------------------------------------------------------------------------- */

func (config Config) ConsensusDir() string {
  return filepath.Join(config.OutDir, "consensus_peak_calling")
}

func (config Config) BedDir() string {
  return filepath.Join(config.ConsensusDir(), "pseudobulk_bed_files")
}

func (config Config) BigWigDir() string {
  return filepath.Join(config.ConsensusDir(), "pseudobulk_bw_files")
}

func (config Config) QCDir() string {
  return filepath.Join(config.ConsensusDir(), "pseudobulk_qc")
}

// Aggregator settings derived from the pipeline configuration.
func (config Config) ExportConfig() ExportConfig {
  r := DefaultExportConfig()
  r.GroupColumn      = config.GroupColumn
  r.SampleColumn     = config.SampleColumn
  r.BedDir           = config.BedDir()
  r.BigWigDir        = config.BigWigDir()
  r.Threads          = config.Threads
  r.Normalize        = config.Normalize
  r.ScratchDir       = config.ScratchDir
  r.SplitPattern     = config.SplitPattern
  r.RemoveDuplicates = config.RemoveDuplicates
  r.BigWigParameters.ReductionLevels = config.ZoomLevels
  if config.PlotFragmentLengths {
    r.QCDir = config.QCDir()
  }
  return r
}
