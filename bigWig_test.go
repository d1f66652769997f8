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

import   "bytes"
import   "encoding/binary"
import   "io"
import   "os"
import   "path/filepath"
import   "testing"

import   "github.com/klauspost/compress/zlib"

/* -------------------------------------------------------------------------- */

type testBigWig struct {
  Header      BbiHeader
  ZoomHeaders []BbiHeaderZoom
  Data        []byte
}

func readTestBigWig(t *testing.T, filename string) testBigWig {
  data, err := os.ReadFile(filename)
  if err != nil {
    t.Fatal(err)
  }
  r := testBigWig{Data: data}
  buffer := bytes.NewReader(data)
  if err := binary.Read(buffer, binary.LittleEndian, &r.Header); err != nil {
    t.Fatal(err)
  }
  r.ZoomHeaders = make([]BbiHeaderZoom, r.Header.ZoomLevels)
  if err := binary.Read(buffer, binary.LittleEndian, r.ZoomHeaders); err != nil {
    t.Fatal(err)
  }
  return r
}

func (bw testBigWig) uint32At(offset uint64) uint32 {
  return binary.LittleEndian.Uint32(bw.Data[offset:offset+4])
}

func (bw testBigWig) uint64At(offset uint64) uint64 {
  return binary.LittleEndian.Uint64(bw.Data[offset:offset+8])
}

// Decompress the first block referenced by a single-level R tree.
func (bw testBigWig) firstBlock(t *testing.T, indexOffset uint64) []byte {
  if bw.uint32At(indexOffset) != IDX_MAGIC {
    t.Fatal("invalid index magic")
  }
  // root node header
  node := indexOffset + 48
  if bw.Data[node] != 1 {
    t.Fatal("root is not a leaf")
  }
  item   := node + 4
  offset := bw.uint64At(item + 16)
  size   := bw.uint64At(item + 24)
  z, err := zlib.NewReader(bytes.NewReader(bw.Data[offset:offset+size]))
  if err != nil {
    t.Fatal(err)
  }
  defer z.Close()
  block, err := io.ReadAll(z)
  if err != nil {
    t.Fatal(err)
  }
  return block
}

/* -------------------------------------------------------------------------- */

func TestBigWig1(t *testing.T) {
  genome := NewGenome([]string{"chr2", "chr1"}, []int{50, 100})
  coverage, _ := NewCoverage(genome, newTestFragments(), false)

  filename := filepath.Join(t.TempDir(), "test.bw")
  if err := coverage.ExportBigWig(filename, DefaultBigWigParameters()); err != nil {
    t.Fatal(err)
  }
  bw := readTestBigWig(t, filename)

  if bw.Header.Magic != BIGWIG_MAGIC || bw.Header.Version != 4 || bw.Header.ZoomLevels != 0 {
    t.Error("invalid header")
  }
  if binary.LittleEndian.Uint32(bw.Data[len(bw.Data)-4:]) != BIGWIG_MAGIC {
    t.Error("magic number missing at end of file")
  }
  // chromosome tree
  if bw.uint32At(bw.Header.CtOffset) != CIRTREE_MAGIC {
    t.Error("invalid chromosome tree magic")
  }
  if bw.uint32At(bw.Header.CtOffset+8) != 4 || bw.uint64At(bw.Header.CtOffset+16) != 2 {
    t.Error("invalid chromosome tree header")
  }
  // first key is chr1 with id 1
  leaf := bw.Header.CtOffset + 32 + 4
  if string(bw.Data[leaf:leaf+4]) != "chr1" || bw.uint32At(leaf+4) != 1 || bw.uint32At(leaf+8) != 100 {
    t.Error("invalid chromosome tree leaf")
  }
  // one data block per chromosome
  if bw.uint64At(bw.Header.DataOffset) != 2 {
    t.Error("invalid number of data blocks")
  }
  // total summary
  if bw.uint64At(bw.Header.SummaryOffset) != 30 {
    t.Error("invalid total summary")
  }
  // first block contains coverage of chr2
  block  := bw.firstBlock(t, bw.Header.IndexOffset)
  header := BbiDataHeader{}
  if err := binary.Read(bytes.NewReader(block), binary.LittleEndian, &header); err != nil {
    t.Fatal(err)
  }
  if header.ChromId != 0 || header.Type != BbiTypeBedGraph || header.ItemCount != 1 {
    t.Error("invalid data block header")
  }
  if header.Start != 0 || header.End != 5 {
    t.Error("invalid data block header")
  }
  if uint32(len(block)) > bw.Header.UncompressBufSize {
    t.Error("invalid uncompress buffer size")
  }
}

func TestBigWig2(t *testing.T) {
  genome := NewGenome([]string{"chr1", "chr2"}, []int{100, 50})
  coverage, _ := NewCoverage(genome, newTestFragments(), false)

  parameters := DefaultBigWigParameters()
  parameters.ReductionLevels = []int{10, 1000}

  filename := filepath.Join(t.TempDir(), "test.bw")
  if err := coverage.ExportBigWig(filename, parameters); err != nil {
    t.Fatal(err)
  }
  bw := readTestBigWig(t, filename)

  if len(bw.ZoomHeaders) != 2 || bw.ZoomHeaders[0].ReductionLevel != 10 {
    t.Fatal("invalid zoom headers")
  }
  // bins [10,20), [20,30) and [90,100) on chr1, [0,10) on chr2
  if n := bw.uint32At(bw.ZoomHeaders[0].DataOffset); n != 4 {
    t.Errorf("invalid number of zoom records: %d", n)
  }
  // one record per chromosome
  if n := bw.uint32At(bw.ZoomHeaders[1].DataOffset); n != 2 {
    t.Errorf("invalid number of zoom records: %d", n)
  }
  block := bw.firstBlock(t, bw.ZoomHeaders[1].IndexOffset)
  if len(block) != 32 {
    t.Fatal("invalid zoom block")
  }
  // record covers the whole chromosome
  if binary.LittleEndian.Uint32(block[4:8]) != 0 || binary.LittleEndian.Uint32(block[8:12]) != 100 {
    t.Error("invalid zoom record")
  }
  if binary.LittleEndian.Uint32(block[12:16]) != 25 {
    t.Error("invalid zoom record")
  }
}

func TestBigWigEmpty(t *testing.T) {
  genome := NewGenome([]string{"chr1"}, []int{100})
  coverage, _ := NewCoverage(genome, Fragments{}, false)

  parameters := DefaultBigWigParameters()
  parameters.ReductionLevels = []int{10}

  filename := filepath.Join(t.TempDir(), "test.bw")
  if err := coverage.ExportBigWig(filename, parameters); err != nil {
    t.Fatal(err)
  }
  bw := readTestBigWig(t, filename)
  if bw.uint64At(bw.Header.DataOffset) != 0 {
    t.Error("test failed")
  }
  if bw.uint32At(bw.Header.IndexOffset) != IDX_MAGIC {
    t.Error("test failed")
  }
}

func TestBigWigParameters(t *testing.T) {
  parameters := DefaultBigWigParameters()
  parameters.ReductionLevels = []int{0}
  if _, err := NewBigWigWriter(nil, parameters); err == nil {
    t.Error("test failed")
  }
}
