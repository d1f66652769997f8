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

import   "context"
import   "fmt"
import   "io"
import   "net/http"
import   "net/http/httptest"
import   "os"
import   "path/filepath"
import   "strings"
import   "testing"

import   "github.com/stretchr/testify/assert"
import   "github.com/stretchr/testify/require"

/* -------------------------------------------------------------------------- */

func newTestReferenceServer(t *testing.T) *httptest.Server {
  ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/hg38.chrom.sizes" {
      http.NotFound(w, r)
      return
    }
    fmt.Fprint(w, "chr1\t248956422\nchr2\t242193529\nchrM\t16569\n")
  }))
  t.Cleanup(ts.Close)
  return ts
}

func newTestProject(t *testing.T, ts *httptest.Server, cellData ...string) Config {
  dir := t.TempDir()
  require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
  require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "cell_data.tsv"),
    []byte(strings.Join(cellData, "\n") + "\n"), 0644))
  writeTestGzip(t, filepath.Join(dir, "data", "fragments.tsv.gz"),
    "chr1\t10000\t10200\tAAACGAAAGCGCAATG-1\t1",
    "chr1\t10100\t10300\tAAACGAAAGCGCAATG-1\t3",
    "chr2\t5000\t5150\tAAACGAAAGGCTTCGC-1\t1",
    "chr1\t20000\t20400\tAAACGAAAGGCTTCGC-1\t1",
    "chr2\t7000\t7100\tTTTTTTTTTTTTTTTT-1\t1")

  config := DefaultConfig()
  config.ProjectDir   = dir
  config.ReferenceURL = ts.URL + "/{assembly}.chrom.sizes"
  config.ScratchDir   = filepath.Join(dir, "scratch")
  config.Threads      = 2
  return config
}

var testCellData = []string{
  "cell\tVSN_cell_type\tVSN_sample_id",
  "AAACGAAAGCGCAATG-1-sample1\tTcell\tsample1",
  "AAACGAAAGGCTTCGC-1-sample1\tBcell\tsample1",
}

func newTestPipeline(config Config) Pipeline {
  return NewPipeline(config, NewLogger(io.Discard, 0))
}

/* -------------------------------------------------------------------------- */

func TestPipeline(t *testing.T) {
  ts     := newTestReferenceServer(t)
  config := newTestProject(t, ts, testCellData...)

  r, err := newTestPipeline(config).Run(context.Background())
  require.NoError(t, err)

  assert.Equal(t, []string{"Bcell", "Tcell"}, r.BigWigPaths.Keys())
  assert.Equal(t, []string{"Bcell", "Tcell"}, r.BedPaths.Keys())

  consensusDir := filepath.Join(config.ProjectDir, "outs", "consensus_peak_calling")
  assert.Equal(t, filepath.Join(consensusDir, "bed_paths.gob"), r.BedPathsFile)
  assert.Equal(t, filepath.Join(consensusDir, "bw_paths.gob"), r.BigWigPathsFile)

  for _, filename := range []string{r.BedPathsFile, r.BigWigPathsFile} {
    info, err := os.Stat(filename)
    require.NoError(t, err)
    assert.True(t, info.Size() > 0)
  }
  bedPaths, err := LoadOutputPathMap(r.BedPathsFile)
  require.NoError(t, err)
  assert.Equal(t, r.BedPaths, bedPaths)

  bigWigPaths, err := LoadOutputPathMap(r.BigWigPathsFile)
  require.NoError(t, err)
  assert.Equal(t, r.BigWigPaths, bigWigPaths)

  assert.Equal(t, filepath.Join(consensusDir, "pseudobulk_bw_files", "Tcell.bw"), bigWigPaths["Tcell"])
  assert.Equal(t, filepath.Join(consensusDir, "pseudobulk_bed_files", "Bcell.bed.gz"), bedPaths["Bcell"])

  tcell := importTestBed(t, bedPaths["Tcell"])
  assert.Equal(t, 2, tcell.Length())
  bcell := importTestBed(t, bedPaths["Bcell"])
  assert.Equal(t, 2, bcell.Length())

  // re-running over existing outputs succeeds
  s, err := newTestPipeline(config).Run(context.Background())
  require.NoError(t, err)
  assert.Equal(t, r, s)
}

func TestPipelineLocalReference(t *testing.T) {
  ts     := newTestReferenceServer(t)
  config := newTestProject(t, ts, testCellData...)
  config.SaveChromSizes = filepath.Join(config.ProjectDir, "hg38.chrom.sizes")
  config.PlotFragmentLengths = true

  _, err := newTestPipeline(config).Run(context.Background())
  require.NoError(t, err)

  // second run reads the saved file, the server is not needed
  ts.Close()
  config.ChromSizesFile = config.SaveChromSizes
  config.SaveChromSizes = ""
  r, err := newTestPipeline(config).Run(context.Background())
  require.NoError(t, err)
  assert.Len(t, r.BigWigPaths, 2)

  config.Resolve()
  _, err = os.Stat(filepath.Join(config.QCDir(), "Tcell.fragment_lengths.pdf"))
  assert.NoError(t, err)
}

func TestPipelineEmptyCellData(t *testing.T) {
  ts     := newTestReferenceServer(t)
  config := newTestProject(t, ts, testCellData[0])

  _, err := newTestPipeline(config).Run(context.Background())
  var e *ValidationError
  require.ErrorAs(t, err, &e)
  assert.Empty(t, e.Items)
}

func TestPipelineMultipleSamples(t *testing.T) {
  ts     := newTestReferenceServer(t)
  config := newTestProject(t, ts,
    "cell\tVSN_cell_type\tVSN_sample_id",
    "AAACGAAAGCGCAATG-1-sample1\tTcell\tsample1",
    "AAACGAAAGGCTTCGC-1-sample2\tBcell\tsample2")

  _, err := newTestPipeline(config).Run(context.Background())
  var e *ValidationError
  require.ErrorAs(t, err, &e)
  assert.Equal(t, []string{"sample1", "sample2"}, e.Items)
}

func TestPipelineMissingColumn(t *testing.T) {
  ts     := newTestReferenceServer(t)
  config := newTestProject(t, ts,
    "cell\tcell_type",
    "AAACGAAAGCGCAATG-1-sample1\tTcell")

  _, err := newTestPipeline(config).Run(context.Background())
  var e *ValidationError
  require.ErrorAs(t, err, &e)
  assert.Equal(t, []string{"VSN_cell_type", "VSN_sample_id"}, e.Items)
}

func TestPipelineFetchError(t *testing.T) {
  ts     := newTestReferenceServer(t)
  config := newTestProject(t, ts, testCellData...)
  config.Assembly = "hg19"

  _, err := newTestPipeline(config).Run(context.Background())
  var e *FetchError
  require.ErrorAs(t, err, &e)
  assert.Equal(t, ts.URL+"/hg19.chrom.sizes", e.URL)
}

func TestPipelineCancelled(t *testing.T) {
  ts     := newTestReferenceServer(t)
  config := newTestProject(t, ts, testCellData...)
  config.ChromSizesFile = filepath.Join(config.ProjectDir, "hg38.chrom.sizes")
  require.NoError(t, NewGenome([]string{"chr1", "chr2"}, []int{248956422, 242193529}).Export(config.ChromSizesFile))

  ctx, cancel := context.WithCancel(context.Background())
  cancel()

  _, err := newTestPipeline(config).Run(ctx)
  require.ErrorIs(t, err, context.Canceled)
  assert.Contains(t, err.Error(), "pipeline cancelled")
}

/* -------------------------------------------------------------------------- */

type testAggregator struct {
  config  ExportConfig
  sources FragmentSources
  err     error
}

func (a *testAggregator) ExportPseudobulk(cellData CellData, chromSizes GRanges, fragments FragmentSources, config ExportConfig) (OutputPathMap, OutputPathMap, error) {
  a.config  = config
  a.sources = fragments
  if a.err != nil {
    return nil, nil, a.err
  }
  return OutputPathMap{"Tcell": "Tcell.bw"}, OutputPathMap{"Tcell": "Tcell.bed.gz"}, nil
}

func TestPipelineAggregator(t *testing.T) {
  ts     := newTestReferenceServer(t)
  config := newTestProject(t, ts, testCellData...)
  config.Normalize = true

  aggregator := &testAggregator{}
  pipeline   := newTestPipeline(config)
  pipeline.Aggregator = aggregator

  r, err := pipeline.Run(context.Background())
  require.NoError(t, err)
  assert.Equal(t, OutputPathMap{"Tcell": "Tcell.bed.gz"}, r.BedPaths)
  assert.Equal(t, FragmentSources{"sample1": filepath.Join(config.ProjectDir, "data", "fragments.tsv.gz")}, aggregator.sources)
  assert.True(t, aggregator.config.Normalize)
  assert.Equal(t, 2, aggregator.config.Threads)

  // aggregator failures are reported as aggregation errors
  aggregator.err = fmt.Errorf("disk full")
  _, err = pipeline.Run(context.Background())
  var e *AggregationError
  require.ErrorAs(t, err, &e)
  assert.Contains(t, err.Error(), "disk full")
}
