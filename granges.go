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

import "bytes"
import "fmt"

/* -------------------------------------------------------------------------- */

type GRanges struct {
  Seqnames   []string
  Ranges     []Range
}

/* constructors
 * -------------------------------------------------------------------------- */

func NewGRanges(seqnames []string, from, to []int) GRanges {
  n := len(seqnames)
  if len(from) != n || len(to) != n {
    panic("NewGRanges(): invalid arguments!")
  }
  ranges := make([]Range, n)
  for i := 0; i < n; i++ {
    ranges[i] = NewRange(from[i], to[i])
  }
  return GRanges{seqnames, ranges}
}

/* -------------------------------------------------------------------------- */

func (r GRanges) Length() int {
  return len(r.Ranges)
}

func (r GRanges) Subset(indices []int) GRanges {
  n := len(indices)
  seqnames := make([]string, n)
  ranges   := make([]Range,  n)

  for i := 0; i < n; i++ {
    seqnames[i] = r.Seqnames[indices[i]]
    ranges  [i] = r.Ranges  [indices[i]]
  }
  return GRanges{seqnames, ranges}
}

/* convert to string
 * -------------------------------------------------------------------------- */

func (r GRanges) String() string {
  var buffer bytes.Buffer

  buffer.WriteString(fmt.Sprintf("%10s %10s %10s", "seqnames", "from", "to"))
  for i := 0; i < r.Length(); i++ {
    buffer.WriteString(fmt.Sprintf("\n%10s %10d %10d", r.Seqnames[i], r.Ranges[i].From, r.Ranges[i].To))
  }
  return buffer.String()
}
