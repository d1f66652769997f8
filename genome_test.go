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
import   "errors"
import   "fmt"
import   "net/http"
import   "net/http/httptest"
import   "path/filepath"
import   "reflect"
import   "strings"
import   "testing"

/* -------------------------------------------------------------------------- */

func TestGenomeRead(t *testing.T) {
  genome := Genome{}
  if err := genome.Read(strings.NewReader("chr1\t248956422\nchr2  242193529\n\n")); err != nil {
    t.Fatal(err)
  }
  if genome.Length() != 2 {
    t.Fatal("test failed")
  }
  if n, err := genome.SeqLength("chr2"); err != nil || n != 242193529 {
    t.Error("test failed")
  }
  if err := genome.Read(strings.NewReader("chr1\t-5\n")); err == nil {
    t.Error("test failed")
  }
  if err := genome.Read(strings.NewReader("chr1\tabc\n")); err == nil {
    t.Error("test failed")
  }
}

func TestGenomeGRanges(t *testing.T) {
  genome  := NewGenome([]string{"chr1", "chrM"}, []int{1000, 16569})
  granges := genome.GRanges()
  if !reflect.DeepEqual(granges.Ranges, []Range{{0, 1000}, {0, 16569}}) {
    t.Error("test failed")
  }
  if r, err := GenomeFromGRanges(granges); err != nil {
    t.Error(err)
  } else if !reflect.DeepEqual(r, genome) {
    t.Error("test failed")
  }
  granges.Ranges[1].From = 10
  if _, err := GenomeFromGRanges(granges); err == nil {
    t.Error("test failed")
  }
}

func TestGenomeExport(t *testing.T) {
  genome   := NewGenome([]string{"chr1", "chrM"}, []int{1000, 16569})
  filename := filepath.Join(t.TempDir(), "hg38.chrom.sizes")
  if err := genome.Export(filename); err != nil {
    t.Fatal(err)
  }
  r := Genome{}
  if err := r.Import(filename); err != nil {
    t.Fatal(err)
  }
  if !reflect.DeepEqual(r, genome) {
    t.Error("test failed")
  }
  var e *IOError
  if err := genome.Export(filepath.Join(t.TempDir(), "missing", "x")); !errors.As(err, &e) {
    t.Error("test failed")
  }
}

/* -------------------------------------------------------------------------- */

func TestExpandReferenceURL(t *testing.T) {
  url := ExpandReferenceURL(DefaultReferenceURL, "mm10")
  if url != "http://hgdownload.cse.ucsc.edu/goldenPath/mm10/bigZips/mm10.chrom.sizes" {
    t.Errorf("test failed: %s", url)
  }
}

func TestFetchGenome(t *testing.T) {
  ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    switch r.URL.Path {
    case "/hg38.chrom.sizes":
      fmt.Fprint(w, "chr1\t1000\nchr2\t500\n")
    case "/broken.chrom.sizes":
      fmt.Fprint(w, "<html>not found</html>\n")
    case "/empty.chrom.sizes":
    default:
      http.NotFound(w, r)
    }
  }))
  defer ts.Close()

  genome, err := FetchGenome(context.Background(), ts.Client(), ts.URL+"/hg38.chrom.sizes")
  if err != nil {
    t.Fatal(err)
  }
  if !reflect.DeepEqual(genome, NewGenome([]string{"chr1", "chr2"}, []int{1000, 500})) {
    t.Error("test failed")
  }
  for _, name := range []string{"/missing", "/broken.chrom.sizes", "/empty.chrom.sizes"} {
    _, err := FetchGenome(context.Background(), ts.Client(), ts.URL+name)

    var e *FetchError
    if !errors.As(err, &e) {
      t.Errorf("test failed for `%s': %v", name, err)
    } else if e.URL != ts.URL+name {
      t.Error("test failed")
    }
  }
}

func TestFetchGenomeUnreachable(t *testing.T) {
  ts := httptest.NewServer(http.NotFoundHandler())
  url := ts.URL
  ts.Close()

  var e *FetchError
  if _, err := FetchGenome(context.Background(), nil, url); !errors.As(err, &e) {
    t.Error("test failed")
  }
}
