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

import "bufio"
import "fmt"
import "io"
import "os"
import "strconv"
import "strings"

import "github.com/klauspost/compress/gzip"
import "github.com/pkg/errors"

/* -------------------------------------------------------------------------- */

// ATAC-seq fragments as found in 10x fragment files. Each fragment has a
// barcode of the cell it was observed in and the number of times it was
// observed.
type Fragments struct {
  GRanges
  Barcodes []string
  Counts   []int
}

/* -------------------------------------------------------------------------- */

func (f Fragments) Subset(indices []int) Fragments {
  barcodes := make([]string, len(indices))
  counts   := make([]int,    len(indices))
  for i, j := range indices {
    barcodes[i] = f.Barcodes[j]
    counts  [i] = f.Counts  [j]
  }
  return Fragments{f.GRanges.Subset(indices), barcodes, counts}
}

func (f Fragments) Append(g Fragments) Fragments {
  r := Fragments{}
  r.Seqnames = append(append([]string{}, f.Seqnames...), g.Seqnames...)
  r.Ranges   = append(append([]Range {}, f.Ranges  ...), g.Ranges  ...)
  r.Barcodes = append(append([]string{}, f.Barcodes...), g.Barcodes...)
  r.Counts   = append(append([]int   {}, f.Counts  ...), g.Counts  ...)
  return r
}

// Remove fragments with identical coordinates, the first occurrence is kept.
func (f Fragments) RemoveDuplicates() Fragments {
  type key struct {
    seqname  string
    from, to int
  }
  seen    := make(map[key]struct{}, f.Length())
  indices := make([]int, 0, f.Length())
  for i := 0; i < f.Length(); i++ {
    k := key{f.Seqnames[i], f.Ranges[i].From, f.Ranges[i].To}
    if _, ok := seen[k]; ok {
      continue
    }
    seen[k] = struct{}{}
    indices = append(indices, i)
  }
  if len(indices) == f.Length() {
    return f
  }
  return f.Subset(indices)
}

// Sum of fragment counts.
func (f Fragments) TotalCount() int {
  n := 0
  for _, c := range f.Counts {
    n += c
  }
  return n
}

// Fragment lengths in base pairs.
func (f Fragments) Lengths() []int {
  r := make([]int, f.Length())
  for i := range f.Ranges {
    r[i] = f.Ranges[i].Length()
  }
  return r
}

/* i/o
 * -------------------------------------------------------------------------- */

// Read fragments from a tab-separated file with columns chromosome, start,
// end, barcode and an optional count. Lines starting with `#' are skipped.
// If keep is not nil only fragments with barcodes in keep are retained.
func (f *Fragments) Read(reader io.Reader, keep map[string]bool) error {
  r := Fragments{}

  scanner := bufio.NewScanner(reader)
  scanner.Buffer(make([]byte, 64*1024), 1024*1024)
  for i := 1; scanner.Scan(); i++ {
    line := scanner.Text()
    if len(line) == 0 || line[0] == '#' {
      continue
    }
    fields := strings.SplitN(strings.TrimRight(line, "\r"), "\t", 6)
    if len(fields) < 4 {
      return fmt.Errorf("line %d: fragment file must have at least four columns", i)
    }
    if keep != nil && !keep[fields[3]] {
      continue
    }
    t1, err := strconv.ParseInt(fields[1], 10, 64); if err != nil {
      return errors.Wrapf(err, "line %d", i)
    }
    t2, err := strconv.ParseInt(fields[2], 10, 64); if err != nil {
      return errors.Wrapf(err, "line %d", i)
    }
    if t1 < 0 || t2 < t1 {
      return fmt.Errorf("line %d: invalid fragment [%d, %d)", i, t1, t2)
    }
    count := int64(1)
    if len(fields) >= 5 && fields[4] != "" {
      if count, err = strconv.ParseInt(fields[4], 10, 64); err != nil {
        return errors.Wrapf(err, "line %d", i)
      }
    }
    r.Seqnames = append(r.Seqnames, fields[0])
    r.Ranges   = append(r.Ranges,   Range{int(t1), int(t2)})
    r.Barcodes = append(r.Barcodes, fields[3])
    r.Counts   = append(r.Counts,   int(count))
  }
  if err := scanner.Err(); err != nil {
    return err
  }
  *f = r
  return nil
}

func (f *Fragments) Import(filename string, keep map[string]bool) error {
  file, err := os.Open(filename)
  if err != nil {
    return err
  }
  defer file.Close()

  r, closer, err := openMaybeGzip(file)
  if err != nil {
    return errors.Wrapf(err, "reading fragments from `%s' failed", filename)
  }
  defer closer()

  if err := f.Read(r, keep); err != nil {
    return errors.Wrapf(err, "reading fragments from `%s' failed", filename)
  }
  return nil
}

// Write fragments as BED file with columns chromosome, start, end, barcode
// and count.
func (f Fragments) WriteBed(writer io.Writer) error {
  w := bufio.NewWriter(writer)
  for i := 0; i < f.Length(); i++ {
    if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\n", f.Seqnames[i], f.Ranges[i].From, f.Ranges[i].To, f.Barcodes[i], f.Counts[i]); err != nil {
      return err
    }
  }
  return w.Flush()
}

// Export fragments as BED file, the output is gzipped if the file name
// ends with `.gz'.
func (f Fragments) ExportBed(filename string) error {
  file, err := os.Create(filename)
  if err != nil {
    return err
  }
  defer file.Close()

  if isGzipFilename(filename) {
    g := gzip.NewWriter(file)
    if err := f.WriteBed(g); err != nil {
      return err
    }
    if err := g.Close(); err != nil {
      return err
    }
  } else {
    if err := f.WriteBed(file); err != nil {
      return err
    }
  }
  return file.Close()
}
