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

import "context"
import "net/http"
import "path/filepath"

import "github.com/pkg/errors"

/* -------------------------------------------------------------------------- */

const (
  BedPathsArtifact    = "bed_paths.gob"
  BigWigPathsArtifact = "bw_paths.gob"
)

// Pipeline runs the stages metadata loading, reference retrieval, sample
// resolution, aggregation and persistence exactly once and in this order.
type Pipeline struct {
  Config     Config
  Logger     *Logger
  Aggregator Aggregator
  Client     *http.Client
}

type PipelineResult struct {
  BigWigPaths OutputPathMap
  BedPaths    OutputPathMap
  // locations of the persisted maps
  BigWigPathsFile string
  BedPathsFile    string
}

func NewPipeline(config Config, logger *Logger) Pipeline {
  return Pipeline{
    Config    : config,
    Logger    : logger,
    Aggregator: PseudobulkExporter{Logger: logger},
    Client    : http.DefaultClient }
}

/* -------------------------------------------------------------------------- */

func (p Pipeline) loadReference(ctx context.Context) (Genome, error) {
  config := p.Config
  genome := Genome{}
  switch {
  case config.ChromSizesFile != "":
    p.Logger.Info("reading chromosome sizes from `%s'", config.ChromSizesFile)
    if err := genome.Import(config.ChromSizesFile); err != nil {
      return genome, err
    }
  case config.ReferenceSource == ReferenceSourceMySQL:
    p.Logger.Info("retrieving chromosome sizes of `%s' from UCSC database", config.Assembly)
    if g, err := ImportGenomeFromUCSC(config.UCSCDataSource, config.Assembly); err != nil {
      return genome, err
    } else {
      genome = g
    }
  default:
    url := ExpandReferenceURL(config.ReferenceURL, config.Assembly)
    p.Logger.Info("downloading chromosome sizes from `%s'", url)
    if g, err := FetchGenome(ctx, p.Client, url); err != nil {
      return genome, err
    } else {
      genome = g
    }
  }
  p.Logger.Info("chromosome sizes loaded: %d chromosomes", genome.Length())
  if config.SaveChromSizes != "" {
    if err := genome.Export(config.SaveChromSizes); err != nil {
      return genome, err
    }
    p.Logger.Info("chromosome sizes saved to `%s'", config.SaveChromSizes)
  }
  return genome, nil
}

/* -------------------------------------------------------------------------- */

func (p Pipeline) Run(ctx context.Context) (PipelineResult, error) {
  r := PipelineResult{}

  config := p.Config
  config.Resolve()
  if err := config.Validate(); err != nil {
    return r, errors.Wrap(err, "invalid configuration")
  }
  p.Config = config

  dirs := []string{config.BedDir(), config.BigWigDir()}
  if config.PlotFragmentLengths {
    dirs = append(dirs, config.QCDir())
  }
  if err := makeDirs(dirs...); err != nil {
    return r, err
  }
  // metadata
  p.Logger.Info("loading cell data from `%s'", config.CellDataFile)
  cellData, err := LoadCellData(config.CellDataFile, p.Logger, config.GroupColumn, config.SampleColumn)
  if err != nil {
    return r, err
  }
  // reference
  genome, err := p.loadReference(ctx)
  if err != nil {
    return r, err
  }
  // sample
  sample, sources, err := ResolveSample(cellData, config.SampleColumn, config.FragmentsFile)
  if err != nil {
    return r, err
  }
  p.Logger.Info("using fragments of sample `%s' from `%s'", sample, sources[sample])

  // pseudobulks
  if err := ctx.Err(); err != nil {
    return r, errors.Wrap(err, "pipeline cancelled")
  }
  p.Logger.Info("exporting pseudobulks grouped by `%s'", config.GroupColumn)
  aggregator := p.Aggregator
  if aggregator == nil {
    aggregator = PseudobulkExporter{Logger: p.Logger}
  }
  bigWigPaths, bedPaths, err := aggregator.ExportPseudobulk(cellData, genome.GRanges(), sources, config.ExportConfig())
  if err != nil {
    return r, asAggregationError(err)
  }
  p.Logger.Info("exported %d pseudobulks", len(bigWigPaths))

  // artifacts
  r.BigWigPaths     = bigWigPaths
  r.BedPaths        = bedPaths
  r.BedPathsFile    = filepath.Join(config.ConsensusDir(), BedPathsArtifact)
  r.BigWigPathsFile = filepath.Join(config.ConsensusDir(), BigWigPathsArtifact)
  if err := SaveOutputPathMap(r.BedPathsFile, bedPaths); err != nil {
    return r, err
  }
  p.Logger.Info("bed paths saved to `%s'", r.BedPathsFile)
  if err := SaveOutputPathMap(r.BigWigPathsFile, bigWigPaths); err != nil {
    return r, err
  }
  p.Logger.Info("bigWig paths saved to `%s'", r.BigWigPathsFile)
  return r, nil
}
