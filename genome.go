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
import "bytes"
import "context"
import "fmt"
import "io"
import "net/http"
import "os"
import "strconv"
import "strings"

import "github.com/pkg/errors"

/* -------------------------------------------------------------------------- */

const DefaultReferenceURL = "http://hgdownload.cse.ucsc.edu/goldenPath/{assembly}/bigZips/{assembly}.chrom.sizes"

/* -------------------------------------------------------------------------- */

// Structure containing chromosome sizes.
type Genome struct {
  Seqnames []string
  Lengths  []int
}

/* constructor
 * -------------------------------------------------------------------------- */

func NewGenome(seqnames []string, lengths []int) Genome {
  if len(seqnames) != len(lengths) {
    panic("NewGenome(): Invalid parameters!")
  }
  return Genome{seqnames, lengths}
}

// Convert chromosome intervals back to a genome. All intervals must start at
// zero and each chromosome may appear only once.
func GenomeFromGRanges(granges GRanges) (Genome, error) {
  seqnames := make([]string, granges.Length())
  lengths  := make([]int,    granges.Length())
  seen     := make(map[string]bool)
  for i := 0; i < granges.Length(); i++ {
    if granges.Ranges[i].From != 0 {
      return Genome{}, fmt.Errorf("chromosome `%s' does not start at zero", granges.Seqnames[i])
    }
    if seen[granges.Seqnames[i]] {
      return Genome{}, fmt.Errorf("chromosome `%s' appears more than once", granges.Seqnames[i])
    }
    seen[granges.Seqnames[i]] = true
    seqnames[i] = granges.Seqnames[i]
    lengths [i] = granges.Ranges[i].To
  }
  return NewGenome(seqnames, lengths), nil
}

/* -------------------------------------------------------------------------- */

// Number of chromosomes in the structure.
func (genome Genome) Length() int {
  return len(genome.Seqnames)
}

// Length of the given chromosome. Returns an error if the chromosome
// is not found.
func (genome Genome) SeqLength(seqname string) (int, error) {
  if i, err := genome.GetIdx(seqname); err != nil {
    return 0, err
  } else {
    return genome.Lengths[i], nil
  }
}

func (genome Genome) GetIdx(seqname string) (int, error) {
  for i, s := range genome.Seqnames {
    if seqname == s {
      return i, nil
    }
  }
  return -1, fmt.Errorf("sequence `%s' not found", seqname)
}

// Chromosome intervals [0, length) as GRanges object.
func (genome Genome) GRanges() GRanges {
  from := make([]int, genome.Length())
  return NewGRanges(genome.Seqnames, from, genome.Lengths)
}

/* convert to string
 * -------------------------------------------------------------------------- */

func (genome Genome) String() string {
  var buffer bytes.Buffer

  buffer.WriteString(
    fmt.Sprintf("%10s %10s", "seqnames", "lengths"))

  for i := 0; i < genome.Length(); i++ {
    buffer.WriteString(
      fmt.Sprintf("\n%10s %10d",
        genome.Seqnames[i],
        genome.Lengths [i]))
  }
  return buffer.String()
}

/* i/o
 * -------------------------------------------------------------------------- */

// Read chromosome sizes in UCSC format. The format is a whitespace separated
// table without header where the first column is the name of the chromosome
// and the second column the chromosome length.
func (genome *Genome) Read(reader io.Reader) error {
  seqnames := []string{}
  lengths  := []int{}

  scanner := bufio.NewScanner(reader)
  for i := 1; scanner.Scan(); i++ {
    fields := strings.Fields(scanner.Text())
    if len(fields) == 0 {
      continue
    }
    if len(fields) < 2 {
      return fmt.Errorf("line %d: expected two columns", i)
    }
    t, err := strconv.ParseInt(fields[1], 10, 64)
    if err != nil {
      return errors.Wrapf(err, "line %d: invalid chromosome length", i)
    }
    if t < 0 {
      return fmt.Errorf("line %d: chromosome `%s' has negative length", i, fields[0])
    }
    seqnames = append(seqnames, fields[0])
    lengths  = append(lengths,  int(t))
  }
  if err := scanner.Err(); err != nil {
    return err
  }
  *genome = NewGenome(seqnames, lengths)
  return nil
}

func (genome *Genome) Import(filename string) error {
  f, err := os.Open(filename)
  if err != nil {
    return err
  }
  defer f.Close()

  if err := genome.Read(f); err != nil {
    return errors.Wrapf(err, "reading genome from `%s' failed", filename)
  }
  return nil
}

func (genome Genome) Write(writer io.Writer) error {
  w := bufio.NewWriter(writer)
  for i := 0; i < genome.Length(); i++ {
    if _, err := fmt.Fprintf(w, "%s\t%d\n", genome.Seqnames[i], genome.Lengths[i]); err != nil {
      return err
    }
  }
  return w.Flush()
}

func (genome Genome) Export(filename string) error {
  f, err := os.Create(filename)
  if err != nil {
    return newIOError(filename, err)
  }
  if err := genome.Write(f); err != nil {
    f.Close()
    return newIOError(filename, err)
  }
  if err := f.Close(); err != nil {
    return newIOError(filename, err)
  }
  return nil
}

/* remote reference data
 * -------------------------------------------------------------------------- */

// Substitute the assembly name (e.g. hg38) into a reference URL template.
func ExpandReferenceURL(template, assembly string) string {
  return strings.Replace(template, "{assembly}", assembly, -1)
}

// Download chromosome sizes. The request is not retried, any failure is
// returned as *FetchError.
func FetchGenome(ctx context.Context, client *http.Client, url string) (Genome, error) {
  if client == nil {
    client = http.DefaultClient
  }
  req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
  if err != nil {
    return Genome{}, &FetchError{URL: url, Err: err}
  }
  resp, err := client.Do(req)
  if err != nil {
    return Genome{}, &FetchError{URL: url, Err: err}
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    return Genome{}, &FetchError{URL: url, Err: fmt.Errorf("server returned status `%s'", resp.Status)}
  }
  genome := Genome{}
  if err := genome.Read(resp.Body); err != nil {
    return Genome{}, &FetchError{URL: url, Err: err}
  }
  if genome.Length() == 0 {
    return Genome{}, &FetchError{URL: url, Err: fmt.Errorf("no chromosomes found")}
  }
  return genome, nil
}
