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
import "encoding/binary"
import "fmt"
import "io"
import "os"

/* -------------------------------------------------------------------------- */

const BIGWIG_MAGIC = 0x888FFC26

/* -------------------------------------------------------------------------- */

type BigWigParameters struct {
  BlockSize         int
  ItemsPerSlot      int
  ReductionLevels []int
}

func DefaultBigWigParameters() BigWigParameters {
  return BigWigParameters{
    BlockSize      : 256,
    ItemsPerSlot   : 1024,
    ReductionLevels: nil }
}

/* -------------------------------------------------------------------------- */

type BigWigWriter struct {
  Writer      io.WriteSeeker
  Header      BbiHeader
  ZoomHeaders []BbiHeaderZoom
  Parameters  BigWigParameters
}

func NewBigWigWriter(writer io.WriteSeeker, parameters BigWigParameters) (*BigWigWriter, error) {
  if parameters.BlockSize < 2 || parameters.ItemsPerSlot < 1 {
    return nil, fmt.Errorf("invalid bigWig parameters")
  }
  bww := BigWigWriter{Writer: writer, Parameters: parameters}
  bww.Header.Magic      = BIGWIG_MAGIC
  bww.Header.Version    = 4
  bww.Header.ZoomLevels = uint16(len(parameters.ReductionLevels))
  for _, r := range parameters.ReductionLevels {
    if r < 1 {
      return nil, fmt.Errorf("invalid reduction level `%d'", r)
    }
    bww.ZoomHeaders = append(bww.ZoomHeaders, BbiHeaderZoom{ReductionLevel: uint32(r)})
  }
  return &bww, nil
}

// Compress and write a single block, the block location is returned.
func (bww *BigWigWriter) writeBlock(block []byte) (uint64, uint64, error) {
  if uint32(len(block)) > bww.Header.UncompressBufSize {
    bww.Header.UncompressBufSize = uint32(len(block))
  }
  compressed, err := compressSlice(block)
  if err != nil {
    return 0, 0, err
  }
  offset, err := currentOffset(bww.Writer)
  if err != nil {
    return 0, 0, err
  }
  if _, err := bww.Writer.Write(compressed); err != nil {
    return 0, 0, err
  }
  return uint64(offset), uint64(len(compressed)), nil
}

func (bww *BigWigWriter) writeIndex(items []RTreeItem) (uint64, error) {
  offset, err := currentOffset(bww.Writer)
  if err != nil {
    return 0, err
  }
  tree := NewRTree(bww.Parameters.BlockSize, bww.Parameters.ItemsPerSlot)
  tree.EndFileOffset = uint64(offset)
  tree.BuildTree(items)
  if err := tree.Write(bww.Writer); err != nil {
    return 0, err
  }
  return uint64(offset), nil
}

func (bww *BigWigWriter) writeData(coverage Coverage) error {
  items   := []RTreeItem{}
  nBlocks := uint64(0)
  for _, runs := range coverage.Runs {
    nBlocks += uint64(divIntUp(len(runs), bww.Parameters.ItemsPerSlot))
  }
  if offset, err := currentOffset(bww.Writer); err != nil {
    return err
  } else {
    bww.Header.DataOffset = uint64(offset)
  }
  if err := binary.Write(bww.Writer, binary.LittleEndian, nBlocks); err != nil {
    return err
  }
  for idx, runs := range coverage.Runs {
    for i := 0; i < len(runs); i += bww.Parameters.ItemsPerSlot {
      writer := NewBbiBlockWriter(idx)
      for j := i; j < len(runs) && j < i+bww.Parameters.ItemsPerSlot; j++ {
        if err := writer.Write(runs[j]); err != nil {
          return err
        }
      }
      offset, size, err := bww.writeBlock(writer.Bytes())
      if err != nil {
        return err
      }
      items = append(items, RTreeItem{idx, int(writer.Header.Start), int(writer.Header.End), offset, size})
    }
  }
  if offset, err := bww.writeIndex(items); err != nil {
    return err
  } else {
    bww.Header.IndexOffset = offset
  }
  return nil
}

/* -------------------------------------------------------------------------- */

// Summarize coverage of one chromosome in bins of the given size. Bins
// without coverage are omitted.
func zoomRecords(idx, seqlength int, runs []CoverageRun, reduction int) []BbiSummaryRecord {
  records := []BbiSummaryRecord{}
  current := NewBbiSummaryRecord()
  current.From = -1
  for _, run := range runs {
    for from := run.From; from < run.To; {
      bin := from/reduction
      to  := iMin(run.To, (bin+1)*reduction)
      if current.From != bin*reduction {
        if current.Valid > 0 {
          records = append(records, current)
        }
        current = NewBbiSummaryRecord()
        current.ChromId = idx
        current.From    = bin*reduction
        current.To      = iMin((bin+1)*reduction, seqlength)
      }
      current.AddRun(run.Value, to-from)
      from = to
    }
  }
  if current.Valid > 0 {
    records = append(records, current)
  }
  return records
}

func (bww *BigWigWriter) writeZoom(coverage Coverage, i int) error {
  reduction := int(bww.ZoomHeaders[i].ReductionLevel)
  records   := [][]BbiSummaryRecord{}
  n         := 0
  for idx, runs := range coverage.Runs {
    r := zoomRecords(idx, coverage.Genome.Lengths[idx], runs, reduction)
    records = append(records, r)
    n += len(r)
  }
  if offset, err := currentOffset(bww.Writer); err != nil {
    return err
  } else {
    bww.ZoomHeaders[i].DataOffset = uint64(offset)
  }
  if err := binary.Write(bww.Writer, binary.LittleEndian, uint32(n)); err != nil {
    return err
  }
  items := []RTreeItem{}
  for idx := range records {
    for j := 0; j < len(records[idx]); j += bww.Parameters.ItemsPerSlot {
      block := records[idx][j:iMin(j+bww.Parameters.ItemsPerSlot, len(records[idx]))]
      buffer := bytes.Buffer{}
      for _, record := range block {
        if err := record.writeZoom(&buffer); err != nil {
          return err
        }
      }
      offset, size, err := bww.writeBlock(buffer.Bytes())
      if err != nil {
        return err
      }
      items = append(items, RTreeItem{idx, block[0].From, block[len(block)-1].To, offset, size})
    }
  }
  if offset, err := bww.writeIndex(items); err != nil {
    return err
  } else {
    bww.ZoomHeaders[i].IndexOffset = offset
  }
  return nil
}

/* -------------------------------------------------------------------------- */

// Write coverage as bigWig file with bedGraph sections.
func (bww *BigWigWriter) Write(coverage Coverage) error {
  // reserve space for header, zoom headers and total summary
  placeholder := make([]byte, bbiHeaderSize+24*len(bww.ZoomHeaders)+40)
  if _, err := bww.Writer.Write(placeholder); err != nil {
    return err
  }
  bww.Header.SummaryOffset = uint64(bbiHeaderSize+24*len(bww.ZoomHeaders))
  // chromosome list
  if offset, err := currentOffset(bww.Writer); err != nil {
    return err
  } else {
    bww.Header.CtOffset = uint64(offset)
  }
  if tree, err := NewChromTree(coverage.Genome, bww.Parameters.BlockSize); err != nil {
    return err
  } else {
    if err := tree.Write(bww.Writer); err != nil {
      return err
    }
  }
  if err := bww.writeData(coverage); err != nil {
    return err
  }
  for i := range bww.ZoomHeaders {
    if err := bww.writeZoom(coverage, i); err != nil {
      return err
    }
  }
  if err := binary.Write(bww.Writer, binary.LittleEndian, uint32(BIGWIG_MAGIC)); err != nil {
    return err
  }
  // rewrite header with final offsets
  if _, err := bww.Writer.Seek(0, io.SeekStart); err != nil {
    return err
  }
  if err := bww.Header.Write(bww.Writer, bww.ZoomHeaders); err != nil {
    return err
  }
  if err := coverage.Summary().writeTotal(bww.Writer); err != nil {
    return err
  }
  _, err := bww.Writer.Seek(0, io.SeekEnd)
  return err
}

/* -------------------------------------------------------------------------- */

func (coverage Coverage) WriteBigWig(writer io.WriteSeeker, parameters BigWigParameters) error {
  bww, err := NewBigWigWriter(writer, parameters)
  if err != nil {
    return err
  }
  return bww.Write(coverage)
}

func (coverage Coverage) ExportBigWig(filename string, parameters BigWigParameters) error {
  f, err := os.Create(filename)
  if err != nil {
    return err
  }
  defer f.Close()

  if err := coverage.WriteBigWig(f, parameters); err != nil {
    return err
  }
  return f.Close()
}
