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

import "math"
import "sort"

/* -------------------------------------------------------------------------- */

// Interval [From, To) with constant signal.
type CoverageRun struct {
  From, To int
  Value    float64
}

// Base-level coverage stored as runs of constant value. Runs[i] belongs to
// chromosome Genome.Seqnames[i], is sorted and contains no zero values.
type Coverage struct {
  Genome Genome
  Runs   [][]CoverageRun
}

/* -------------------------------------------------------------------------- */

type coverageEvent struct {
  position int
  delta    float64
}

func runsFromEvents(events []coverageEvent) []CoverageRun {
  sort.SliceStable(events, func(i, j int) bool {
    return events[i].position < events[j].position
  })
  runs  := []CoverageRun{}
  value := 0.0
  for i := 0; i < len(events); {
    position := events[i].position
    for ; i < len(events) && events[i].position == position; i++ {
      value += events[i].delta
    }
    // round off floating point noise
    if math.Abs(value) < 1e-9 {
      value = 0.0
    }
    if i == len(events) {
      break
    }
    next := events[i].position
    if value == 0.0 {
      continue
    }
    if n := len(runs); n > 0 && runs[n-1].To == position && runs[n-1].Value == value {
      runs[n-1].To = next
    } else {
      runs = append(runs, CoverageRun{position, next, value})
    }
  }
  return runs
}

// Compute the number of fragments covering each position. If weighted is
// true each fragment contributes its count. Fragments are clipped to the
// chromosome length, fragments on unknown chromosomes are skipped and their
// number is returned.
func NewCoverage(genome Genome, fragments Fragments, weighted bool) (Coverage, int) {
  index := make(map[string]int, genome.Length())
  for i, seqname := range genome.Seqnames {
    index[seqname] = i
  }
  events  := make([][]coverageEvent, genome.Length())
  skipped := 0
  for i := 0; i < fragments.Length(); i++ {
    idx, ok := index[fragments.Seqnames[i]]
    if !ok {
      skipped++
      continue
    }
    r := fragments.Ranges[i].Clip(genome.Lengths[idx])
    if r.Length() == 0 {
      continue
    }
    w := 1.0
    if weighted {
      w = float64(fragments.Counts[i])
    }
    events[idx] = append(events[idx], coverageEvent{r.From, w}, coverageEvent{r.To, -w})
  }
  coverage := Coverage{Genome: genome, Runs: make([][]CoverageRun, genome.Length())}
  for i := range events {
    coverage.Runs[i] = runsFromEvents(events[i])
  }
  return coverage, skipped
}

/* -------------------------------------------------------------------------- */

// Multiply all values by c.
func (coverage Coverage) Scale(c float64) {
  for i := range coverage.Runs {
    for j := range coverage.Runs[i] {
      coverage.Runs[i][j].Value *= c
    }
  }
}

// Scale coverage to reads per million, n is the total number of fragments.
func (coverage Coverage) NormalizeRPM(n int) {
  if n > 0 {
    coverage.Scale(1e6/float64(n))
  }
}

func (coverage Coverage) At(seqname string, position int) float64 {
  idx, err := coverage.Genome.GetIdx(seqname)
  if err != nil {
    return 0.0
  }
  runs := coverage.Runs[idx]
  j := sort.Search(len(runs), func(j int) bool { return runs[j].To > position })
  if j < len(runs) && runs[j].From <= position {
    return runs[j].Value
  }
  return 0.0
}

// Summary statistics over all covered bases.
func (coverage Coverage) Summary() BbiSummaryRecord {
  s := NewBbiSummaryRecord()
  for i := range coverage.Runs {
    for _, run := range coverage.Runs[i] {
      s.AddRun(run.Value, run.To-run.From)
    }
  }
  return s
}
