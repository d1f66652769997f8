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

// Data structures for writing Big Binary Indexed files (bigWig)

/* -------------------------------------------------------------------------- */

import "bytes"
import "encoding/binary"
import "fmt"
import "io"
import "math"
import "sort"

/* -------------------------------------------------------------------------- */

const CIRTREE_MAGIC = 0x78ca8c91
const     IDX_MAGIC = 0x2468ace0

const (
  BbiTypeBedGraph = 1
  BbiTypeVarStep  = 2
  BbiTypeFixedStep = 3
)

/* -------------------------------------------------------------------------- */

func currentOffset(w io.Seeker) (int64, error) {
  return w.Seek(0, io.SeekCurrent)
}

/* -------------------------------------------------------------------------- */

type BbiSummaryRecord struct {
  ChromId    int
  From       int
  To         int
  Valid      float64
  Min        float64
  Max        float64
  Sum        float64
  SumSquares float64
}

func NewBbiSummaryRecord() BbiSummaryRecord {
  return BbiSummaryRecord{Min: math.Inf(1), Max: math.Inf(-1)}
}

// Add n bases with the given value.
func (record *BbiSummaryRecord) AddRun(value float64, n int) {
  if n <= 0 {
    return
  }
  record.Valid      += float64(n)
  record.Min         = math.Min(record.Min, value)
  record.Max         = math.Max(record.Max, value)
  record.Sum        += value*float64(n)
  record.SumSquares += value*value*float64(n)
}

func (record BbiSummaryRecord) writeTotal(w io.Writer) error {
  tmp := struct {
    ValidCount uint64
    MinVal     float64
    MaxVal     float64
    SumData    float64
    SumSquares float64
  }{}
  if record.Valid > 0 {
    tmp.ValidCount = uint64(record.Valid)
    tmp.MinVal     = record.Min
    tmp.MaxVal     = record.Max
    tmp.SumData    = record.Sum
    tmp.SumSquares = record.SumSquares
  }
  return binary.Write(w, binary.LittleEndian, tmp)
}

func (record BbiSummaryRecord) writeZoom(w io.Writer) error {
  tmp := struct {
    ChromId    uint32
    Start      uint32
    End        uint32
    ValidCount uint32
    MinVal     float32
    MaxVal     float32
    SumData    float32
    SumSquares float32
  }{
    uint32(record.ChromId), uint32(record.From), uint32(record.To), uint32(record.Valid),
    float32(record.Min), float32(record.Max), float32(record.Sum), float32(record.SumSquares) }
  return binary.Write(w, binary.LittleEndian, tmp)
}

/* -------------------------------------------------------------------------- */

type BbiDataHeader struct {
  ChromId   uint32
  Start     uint32
  End       uint32
  Step      uint32
  Span      uint32
  Type      byte
  Reserved  byte
  ItemCount uint16
}

// Accumulates bedGraph items of a single data block.
type BbiBlockWriter struct {
  Header BbiDataHeader
  Buffer bytes.Buffer
}

func NewBbiBlockWriter(chromId int) *BbiBlockWriter {
  writer := BbiBlockWriter{}
  writer.Header.ChromId = uint32(chromId)
  writer.Header.Type    = BbiTypeBedGraph
  return &writer
}

func (writer *BbiBlockWriter) Write(run CoverageRun) error {
  if writer.Header.ItemCount == math.MaxUint16 {
    return fmt.Errorf("too many items in data block")
  }
  if writer.Header.ItemCount == 0 {
    writer.Header.Start = uint32(run.From)
  }
  writer.Header.End = uint32(run.To)
  writer.Header.ItemCount++
  item := struct {
    Start uint32
    End   uint32
    Value float32
  }{uint32(run.From), uint32(run.To), float32(run.Value)}
  return binary.Write(&writer.Buffer, binary.LittleEndian, item)
}

// Uncompressed block including the section header.
func (writer *BbiBlockWriter) Bytes() []byte {
  var b bytes.Buffer
  binary.Write(&b, binary.LittleEndian, writer.Header)
  b.Write(writer.Buffer.Bytes())
  return b.Bytes()
}

/* chromosome tree
 * -------------------------------------------------------------------------- */

type BVertex struct {
  IsLeaf     uint8
  Keys     [][]byte
  Values   [][]byte
  Children []*BVertex
  offset     int64
}

func (vertex *BVertex) size(keySize int) int64 {
  return int64(4 + len(vertex.Keys)*(keySize+8))
}

type BTree struct {
  BlockSize uint32
  KeySize   uint32
  ValueSize uint32
  ItemCount uint64
  Root      *BVertex
}

// Build a B+ tree mapping chromosome names to (id, length). Keys are sorted
// and padded with zeros to the longest name.
func NewChromTree(genome Genome, blockSize int) (*BTree, error) {
  tree := BTree{ValueSize: 8, ItemCount: uint64(genome.Length())}
  for _, name := range genome.Seqnames {
    if tree.KeySize < uint32(len(name)) {
      tree.KeySize = uint32(len(name))
    }
  }
  if tree.KeySize == 0 {
    tree.KeySize = 1
  }
  tree.BlockSize = uint32(iMax(1, iMin(blockSize, genome.Length())))
  if tree.BlockSize > math.MaxUint16 {
    return nil, fmt.Errorf("block size too large (maximum value is `%d')", math.MaxUint16)
  }
  idx := make([]int, genome.Length())
  for i := range idx {
    idx[i] = i
  }
  sort.Slice(idx, func(i, j int) bool { return genome.Seqnames[idx[i]] < genome.Seqnames[idx[j]] })

  level := []*BVertex{}
  for i := 0; i < len(idx); i += int(tree.BlockSize) {
    v := &BVertex{IsLeaf: 1}
    for j := i; j < len(idx) && j < i+int(tree.BlockSize); j++ {
      key   := make([]byte, tree.KeySize)
      value := make([]byte, tree.ValueSize)
      copy(key, genome.Seqnames[idx[j]])
      binary.LittleEndian.PutUint32(value[0:4], uint32(idx[j]))
      binary.LittleEndian.PutUint32(value[4:8], uint32(genome.Lengths[idx[j]]))
      v.Keys   = append(v.Keys,   key)
      v.Values = append(v.Values, value)
    }
    level = append(level, v)
  }
  for len(level) > 1 {
    parents := []*BVertex{}
    for i := 0; i < len(level); i += int(tree.BlockSize) {
      v := &BVertex{}
      for j := i; j < len(level) && j < i+int(tree.BlockSize); j++ {
        v.Keys     = append(v.Keys,     level[j].Keys[0])
        v.Children = append(v.Children, level[j])
      }
      parents = append(parents, v)
    }
    level = parents
  }
  if len(level) == 0 {
    tree.Root = &BVertex{IsLeaf: 1}
  } else {
    tree.Root = level[0]
  }
  return &tree, nil
}

func (tree *BTree) Write(w io.WriteSeeker) error {
  start, err := currentOffset(w)
  if err != nil {
    return err
  }
  header := struct {
    Magic     uint32
    BlockSize uint32
    KeySize   uint32
    ValueSize uint32
    ItemCount uint64
    Reserved  uint64
  }{CIRTREE_MAGIC, tree.BlockSize, tree.KeySize, tree.ValueSize, tree.ItemCount, 0}
  if err := binary.Write(w, binary.LittleEndian, header); err != nil {
    return err
  }
  // assign file offsets in breadth-first order
  queue  := []*BVertex{tree.Root}
  offset := start + 32
  for i := 0; i < len(queue); i++ {
    queue[i].offset = offset
    offset += queue[i].size(int(tree.KeySize))
    queue = append(queue, queue[i].Children...)
  }
  for _, v := range queue {
    node := struct {
      IsLeaf   uint8
      Reserved uint8
      Count    uint16
    }{v.IsLeaf, 0, uint16(len(v.Keys))}
    if err := binary.Write(w, binary.LittleEndian, node); err != nil {
      return err
    }
    for i := range v.Keys {
      if _, err := w.Write(v.Keys[i]); err != nil {
        return err
      }
      if v.IsLeaf != 0 {
        if _, err := w.Write(v.Values[i]); err != nil {
          return err
        }
      } else {
        if err := binary.Write(w, binary.LittleEndian, uint64(v.Children[i].offset)); err != nil {
          return err
        }
      }
    }
  }
  return nil
}

/* data index
 * -------------------------------------------------------------------------- */

// Leaf vertices reference data blocks, DataOffset and Sizes locate the
// blocks in the file. Internal vertices reference child vertices.
type RVertex struct {
  IsLeaf        uint8
  ChrIdxStart []uint32
  BaseStart   []uint32
  ChrIdxEnd   []uint32
  BaseEnd     []uint32
  DataOffset  []uint64
  Sizes       []uint64
  Children    []*RVertex
  offset        int64
}

func (vertex *RVertex) NChildren() int {
  return len(vertex.ChrIdxStart)
}

func (vertex *RVertex) size() int64 {
  if vertex.IsLeaf != 0 {
    return int64(4 + vertex.NChildren()*32)
  } else {
    return int64(4 + vertex.NChildren()*24)
  }
}

func (vertex *RVertex) addItem(chrIdxStart, baseStart, chrIdxEnd, baseEnd uint32) {
  vertex.ChrIdxStart = append(vertex.ChrIdxStart, chrIdxStart)
  vertex.BaseStart   = append(vertex.BaseStart,   baseStart)
  vertex.ChrIdxEnd   = append(vertex.ChrIdxEnd,   chrIdxEnd)
  vertex.BaseEnd     = append(vertex.BaseEnd,     baseEnd)
}

// Location of a compressed data block.
type RTreeItem struct {
  ChromId    int
  From       int
  To         int
  DataOffset uint64
  Size       uint64
}

type RTree struct {
  BlockSize     uint32
  NItems        uint64
  ChrIdxStart   uint32
  BaseStart     uint32
  ChrIdxEnd     uint32
  BaseEnd       uint32
  EndFileOffset uint64
  NItemsPerSlot uint32
  Root          *RVertex
}

func NewRTree(blockSize, itemsPerSlot int) *RTree {
  tree := RTree{}
  tree.BlockSize     = uint32(blockSize)
  tree.NItemsPerSlot = uint32(itemsPerSlot)
  return &tree
}

// Construct the index from a list of data blocks, which must be sorted by
// chromosome id and position.
func (tree *RTree) BuildTree(items []RTreeItem) {
  tree.NItems = uint64(len(items))
  level := []*RVertex{}
  for i := 0; i < len(items); i += int(tree.BlockSize) {
    v := &RVertex{IsLeaf: 1}
    for j := i; j < len(items) && j < i+int(tree.BlockSize); j++ {
      v.addItem(uint32(items[j].ChromId), uint32(items[j].From), uint32(items[j].ChromId), uint32(items[j].To))
      v.DataOffset = append(v.DataOffset, items[j].DataOffset)
      v.Sizes      = append(v.Sizes,      items[j].Size)
    }
    level = append(level, v)
  }
  for len(level) > 1 {
    parents := []*RVertex{}
    for i := 0; i < len(level); i += int(tree.BlockSize) {
      v := &RVertex{}
      for j := i; j < len(level) && j < i+int(tree.BlockSize); j++ {
        c := level[j]
        n := c.NChildren()
        v.addItem(c.ChrIdxStart[0], c.BaseStart[0], c.ChrIdxEnd[n-1], c.BaseEnd[n-1])
        v.Children = append(v.Children, c)
      }
      parents = append(parents, v)
    }
    level = parents
  }
  if len(level) == 0 {
    tree.Root = &RVertex{IsLeaf: 1}
    return
  }
  tree.Root = level[0]
  n := tree.Root.NChildren()
  tree.ChrIdxStart = tree.Root.ChrIdxStart[0]
  tree.BaseStart   = tree.Root.BaseStart[0]
  tree.ChrIdxEnd   = tree.Root.ChrIdxEnd[n-1]
  tree.BaseEnd     = tree.Root.BaseEnd[n-1]
}

func (tree *RTree) Write(w io.WriteSeeker) error {
  start, err := currentOffset(w)
  if err != nil {
    return err
  }
  header := struct {
    Magic         uint32
    BlockSize     uint32
    NItems        uint64
    ChrIdxStart   uint32
    BaseStart     uint32
    ChrIdxEnd     uint32
    BaseEnd       uint32
    EndFileOffset uint64
    NItemsPerSlot uint32
    Reserved      uint32
  }{IDX_MAGIC, tree.BlockSize, tree.NItems, tree.ChrIdxStart, tree.BaseStart,
    tree.ChrIdxEnd, tree.BaseEnd, tree.EndFileOffset, tree.NItemsPerSlot, 0}
  if err := binary.Write(w, binary.LittleEndian, header); err != nil {
    return err
  }
  // assign file offsets in breadth-first order
  queue  := []*RVertex{tree.Root}
  offset := start + 48
  for i := 0; i < len(queue); i++ {
    queue[i].offset = offset
    offset += queue[i].size()
    queue = append(queue, queue[i].Children...)
  }
  for _, v := range queue {
    node := struct {
      IsLeaf   uint8
      Reserved uint8
      Count    uint16
    }{v.IsLeaf, 0, uint16(v.NChildren())}
    if err := binary.Write(w, binary.LittleEndian, node); err != nil {
      return err
    }
    for i := 0; i < v.NChildren(); i++ {
      bounds := [4]uint32{v.ChrIdxStart[i], v.BaseStart[i], v.ChrIdxEnd[i], v.BaseEnd[i]}
      if err := binary.Write(w, binary.LittleEndian, bounds); err != nil {
        return err
      }
      if v.IsLeaf != 0 {
        if err := binary.Write(w, binary.LittleEndian, [2]uint64{v.DataOffset[i], v.Sizes[i]}); err != nil {
          return err
        }
      } else {
        if err := binary.Write(w, binary.LittleEndian, uint64(v.Children[i].offset)); err != nil {
          return err
        }
      }
    }
  }
  return nil
}

/* file header
 * -------------------------------------------------------------------------- */

type BbiHeaderZoom struct {
  ReductionLevel uint32
  Reserved       uint32
  DataOffset     uint64
  IndexOffset    uint64
}

type BbiHeader struct {
  Magic             uint32
  Version           uint16
  ZoomLevels        uint16
  CtOffset          uint64
  DataOffset        uint64
  IndexOffset       uint64
  FieldCount        uint16
  DefinedFieldCount uint16
  SqlOffset         uint64
  SummaryOffset     uint64
  UncompressBufSize uint32
  ExtensionOffset   uint64
}

// Size of the fixed part of the header in bytes.
const bbiHeaderSize = 64

// Write header followed by zoom headers.
func (header BbiHeader) Write(w io.Writer, zoomHeaders []BbiHeaderZoom) error {
  if err := binary.Write(w, binary.LittleEndian, header); err != nil {
    return err
  }
  for _, z := range zoomHeaders {
    if err := binary.Write(w, binary.LittleEndian, z); err != nil {
      return err
    }
  }
  return nil
}
