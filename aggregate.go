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
import "os"
import "path/filepath"
import "sort"
import "sync"

import "github.com/pbenner/pseudobulk/lib/progress"
import "github.com/pbenner/threadpool"
import "github.com/pkg/errors"

/* -------------------------------------------------------------------------- */

// Map from group label to the path of an output file.
type OutputPathMap map[string]string

// Group labels in sorted order.
func (m OutputPathMap) Keys() []string {
  keys := make([]string, 0, len(m))
  for k := range m {
    keys = append(keys, k)
  }
  sort.Strings(keys)
  return keys
}

/* -------------------------------------------------------------------------- */

type ExportConfig struct {
  GroupColumn      string
  SampleColumn     string
  BedDir           string
  BigWigDir        string
  Threads          int
  Normalize        bool
  ScratchDir       string
  SplitPattern     string
  RemoveDuplicates bool
  BigWigParameters BigWigParameters
  // fragment length plots are skipped if empty
  QCDir            string
}

func DefaultExportConfig() ExportConfig {
  config := ExportConfig{}
  config.Threads          = 1
  config.ScratchDir       = os.TempDir()
  config.SplitPattern     = "-"
  config.RemoveDuplicates = true
  config.BigWigParameters = DefaultBigWigParameters()
  return config
}

// An Aggregator splits the fragments of all annotated cells by group and
// writes one BED and one bigWig file per group. It returns the bigWig and
// the BED paths indexed by group label.
type Aggregator interface {
  ExportPseudobulk(cellData CellData, chromSizes GRanges, fragments FragmentSources, config ExportConfig) (OutputPathMap, OutputPathMap, error)
}

/* -------------------------------------------------------------------------- */

// Aggregator implementation. Groups are processed in parallel and the first
// failing group aborts the whole export.
type PseudobulkExporter struct {
  Logger *Logger
}

type pseudobulkGroups struct {
  Labels    []string
  Fragments []Fragments
}

// Assign each annotated cell to its group and collect the fragments of
// every group.
func (exporter PseudobulkExporter) collect(cellData CellData, fragments FragmentSources, config ExportConfig) (pseudobulkGroups, error) {
  r := pseudobulkGroups{}
  groupColumn, err := cellData.GetColumn(config.GroupColumn)
  if err != nil {
    return r, err
  }
  sampleColumn, err := cellData.GetColumn(config.SampleColumn)
  if err != nil {
    return r, err
  }
  labels := make([]string, cellData.Length())
  empty  := []string{}
  for i, label := range groupColumn {
    if labels[i] = SanitizeGroupLabel(label); labels[i] == "" {
      empty = append(empty, cellData.Index[i])
    }
  }
  if len(empty) > 0 {
    return r, newValidationError(empty, "cells with empty label in column `%s'", config.GroupColumn)
  }
  r.Labels = removeDuplicatesString(labels)
  sort.Strings(r.Labels)
  r.Fragments = make([]Fragments, len(r.Labels))

  groupIdx := make(map[string]int)
  for i, label := range r.Labels {
    groupIdx[label] = i
  }
  annotated := make(map[string]bool)
  for _, sample := range sampleColumn {
    annotated[sample] = true
  }
  samples := []string{}
  for _, sample := range fragments.Samples() {
    if annotated[sample] {
      samples = append(samples, sample)
    } else {
      exporter.Logger.Warning("fragment file for sample `%s' ignored: sample not found in column `%s'", sample, config.SampleColumn)
    }
  }
  for _, sample := range samples {
    // barcodes of this sample mapped to group indices
    barcodes := make(map[string][]int)
    keep     := make(map[string]bool)
    for i := 0; i < cellData.Length(); i++ {
      if sampleColumn[i] != sample {
        continue
      }
      barcode := CellBarcode(cellData.Index[i], config.SplitPattern)
      if j := groupIdx[labels[i]]; !containsInt(barcodes[barcode], j) {
        barcodes[barcode] = append(barcodes[barcode], j)
      }
      keep[barcode] = true
    }
    exporter.Logger.Info("reading fragments of sample `%s' from `%s'", sample, fragments[sample])
    f := Fragments{}
    if err := f.Import(fragments[sample], keep); err != nil {
      return r, err
    }
    exporter.Logger.Info("read %d fragments of %d annotated cells", f.Length(), len(keep))

    indices := make([][]int, len(r.Labels))
    for i, barcode := range f.Barcodes {
      for _, j := range barcodes[barcode] {
        indices[j] = append(indices[j], i)
      }
    }
    if len(samples) > 1 {
      for i := range f.Barcodes {
        f.Barcodes[i] = f.Barcodes[i] + config.SplitPattern + sample
      }
    }
    for j := range indices {
      r.Fragments[j] = r.Fragments[j].Append(f.Subset(indices[j]))
    }
  }
  return r, nil
}

func (exporter PseudobulkExporter) exportGroup(label string, fragments Fragments, genome Genome, scratch string, config ExportConfig) error {
  exporter.Logger.Info("creating pseudobulk for `%s'", label)
  if config.RemoveDuplicates {
    fragments = fragments.RemoveDuplicates()
  }
  if fragments.Length() == 0 {
    exporter.Logger.Warning("pseudobulk `%s' has no fragments", label)
  }
  // bed file
  tmpBed := filepath.Join(scratch, label+".bed.gz")
  if err := fragments.ExportBed(tmpBed); err != nil {
    return err
  }
  if err := moveFile(tmpBed, bedPath(config, label)); err != nil {
    return err
  }
  // bigWig file
  coverage, skipped := NewCoverage(genome, fragments, !config.RemoveDuplicates)
  if skipped > 0 {
    exporter.Logger.Warning("pseudobulk `%s': skipped %d fragments on chromosomes without size information", label, skipped)
  }
  if config.Normalize {
    // duplicates contribute their counts to the coverage
    if config.RemoveDuplicates {
      coverage.NormalizeRPM(fragments.Length())
    } else {
      coverage.NormalizeRPM(fragments.TotalCount())
    }
  }
  tmpBw := filepath.Join(scratch, label+".bw")
  if err := coverage.ExportBigWig(tmpBw, config.BigWigParameters); err != nil {
    return err
  }
  if err := moveFile(tmpBw, bigWigPath(config, label)); err != nil {
    return err
  }
  // quality control
  if config.QCDir != "" && fragments.Length() > 0 {
    filename := filepath.Join(config.QCDir, label+".fragment_lengths.pdf")
    if err := fragments.PlotFragmentLengths(filename, label); err != nil {
      return errors.Wrapf(err, "plotting fragment lengths to `%s' failed", filename)
    }
  }
  exporter.Logger.Info("`%s' done!", label)
  return nil
}

func containsInt(s []int, x int) bool {
  for _, y := range s {
    if y == x {
      return true
    }
  }
  return false
}

func bedPath(config ExportConfig, label string) string {
  return filepath.Join(config.BedDir, label+".bed.gz")
}

func bigWigPath(config ExportConfig, label string) string {
  return filepath.Join(config.BigWigDir, label+".bw")
}

func (exporter PseudobulkExporter) ExportPseudobulk(cellData CellData, chromSizes GRanges, fragments FragmentSources, config ExportConfig) (OutputPathMap, OutputPathMap, error) {
  if config.Threads < 1 {
    return nil, nil, &AggregationError{Err: fmt.Errorf("invalid number of threads `%d'", config.Threads)}
  }
  if config.BedDir == "" || config.BigWigDir == "" {
    return nil, nil, &AggregationError{Err: fmt.Errorf("output directories not specified")}
  }
  if err := cellData.Require(config.GroupColumn, config.SampleColumn); err != nil {
    return nil, nil, &AggregationError{Err: err}
  }
  genome, err := GenomeFromGRanges(chromSizes)
  if err != nil {
    return nil, nil, &AggregationError{Err: err}
  }
  dirs := []string{config.BedDir, config.BigWigDir, config.ScratchDir}
  if config.QCDir != "" {
    dirs = append(dirs, config.QCDir)
  }
  if err := makeDirs(dirs...); err != nil {
    return nil, nil, &AggregationError{Err: err}
  }
  scratch, err := os.MkdirTemp(config.ScratchDir, "pseudobulk-")
  if err != nil {
    return nil, nil, &AggregationError{Err: err}
  }
  defer os.RemoveAll(scratch)

  groups, err := exporter.collect(cellData, fragments, config)
  if err != nil {
    return nil, nil, &AggregationError{Err: err}
  }
  exporter.Logger.Info("exporting %d pseudobulks using %d threads", len(groups.Labels), config.Threads)

  pool := threadpool.New(config.Threads, 100*config.Threads)
  defer pool.Stop()
  g    := pool.NewJobGroup()
  bar  := progress.New(len(groups.Labels), 100)
  mtx  := sync.Mutex{}
  done := 0
  addErr := error(nil)
  bar.Print(exporter.Logger.progressWriter(), 0)
  for i := range groups.Labels {
    label := groups.Labels[i]
    data  := groups.Fragments[i]
    if err := pool.AddJob(g, func(pool threadpool.ThreadPool, erf func() error) error {
      // skip remaining groups once a job failed
      if erf() != nil {
        return nil
      }
      if err := exporter.exportGroup(label, data, genome, scratch, config); err != nil {
        return &AggregationError{Group: label, Err: err}
      }
      mtx.Lock()
      done++
      bar.Print(exporter.Logger.progressWriter(), done)
      mtx.Unlock()
      return nil
    }); err != nil {
      // a job failed, wait for running jobs before reporting
      addErr = err
      break
    }
  }
  if err := pool.Wait(g); err != nil {
    return nil, nil, asAggregationError(err)
  }
  if addErr != nil {
    return nil, nil, asAggregationError(addErr)
  }
  bigWigPaths := OutputPathMap{}
  bedPaths    := OutputPathMap{}
  for _, label := range groups.Labels {
    bigWigPaths[label] = bigWigPath(config, label)
    bedPaths   [label] = bedPath   (config, label)
  }
  return bigWigPaths, bedPaths, nil
}

func asAggregationError(err error) error {
  var e *AggregationError
  if errors.As(err, &e) {
    return e
  }
  return &AggregationError{Err: err}
}
