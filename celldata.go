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
import "strings"

import "github.com/pkg/errors"

/* -------------------------------------------------------------------------- */

// Cell annotation table. Rows are indexed by cell identifiers, all columns
// are stored as strings. Data[j][i] is the value of column j in row i.
type CellData struct {
  IndexName   string
  Index     []string
  Columns   []string
  Data    [][]string
}

/* -------------------------------------------------------------------------- */

// Number of rows.
func (cellData CellData) Length() int {
  return len(cellData.Index)
}

func (cellData CellData) NColumns() int {
  return len(cellData.Columns)
}

func (cellData CellData) ColumnIdx(name string) int {
  for j, column := range cellData.Columns {
    if column == name {
      return j
    }
  }
  return -1
}

func (cellData CellData) GetColumn(name string) ([]string, error) {
  if j := cellData.ColumnIdx(name); j == -1 {
    return nil, newValidationError([]string{name}, "missing columns")
  } else {
    return cellData.Data[j], nil
  }
}

// Check that all given columns exist. The returned *ValidationError lists
// exactly the missing columns.
func (cellData CellData) Require(columns ...string) error {
  missing := []string{}
  for _, name := range columns {
    if cellData.ColumnIdx(name) == -1 {
      missing = append(missing, name)
    }
  }
  if len(missing) > 0 {
    return newValidationError(missing, "missing columns")
  }
  return nil
}

// Distinct values of a column in order of first appearance.
func (cellData CellData) Unique(name string) ([]string, error) {
  column, err := cellData.GetColumn(name)
  if err != nil {
    return nil, err
  }
  return removeDuplicatesString(column), nil
}

/* i/o
 * -------------------------------------------------------------------------- */

func splitTableLine(line string) []string {
  fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
  for i := range fields {
    fields[i] = removeQuotes(fields[i])
  }
  return fields
}

// Read a tab-separated table with header where the first column contains
// the row names. The header may or may not contain a name for the first
// column.
func (cellData *CellData) Read(reader io.Reader) error {
  scanner := bufio.NewScanner(reader)
  scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

  header := []string(nil)
  rows   := [][]string{}
  for scanner.Scan() {
    if strings.TrimSpace(scanner.Text()) == "" {
      continue
    }
    if header == nil {
      header = splitTableLine(scanner.Text())
    } else {
      rows = append(rows, splitTableLine(scanner.Text()))
    }
  }
  if err := scanner.Err(); err != nil {
    return err
  }
  if header == nil {
    return fmt.Errorf("table has no header")
  }
  result := CellData{}
  // determine if the header names the index column
  switch {
  case len(rows) == 0 || len(rows[0]) == len(header):
    result.IndexName = header[0]
    result.Columns   = header[1:]
  case len(rows[0]) == len(header)+1:
    result.Columns   = header
  default:
    return fmt.Errorf("header has %d columns but first row has %d", len(header), len(rows[0]))
  }
  result.Index = make([]string, len(rows))
  result.Data  = make([][]string, len(result.Columns))
  for j := range result.Data {
    result.Data[j] = make([]string, len(rows))
  }
  for i, row := range rows {
    if len(row) != len(result.Columns)+1 {
      return fmt.Errorf("row %d has %d columns, expected %d", i+1, len(row), len(result.Columns)+1)
    }
    result.Index[i] = row[0]
    for j := range result.Columns {
      result.Data[j][i] = row[j+1]
    }
  }
  *cellData = result
  return nil
}

func (cellData *CellData) Import(filename string) error {
  f, err := os.Open(filename)
  if err != nil {
    return err
  }
  defer f.Close()

  r, closer, err := openMaybeGzip(f)
  if err != nil {
    return errors.Wrapf(err, "reading `%s' failed", filename)
  }
  defer closer()

  if err := cellData.Read(r); err != nil {
    return errors.Wrapf(err, "reading `%s' failed", filename)
  }
  return nil
}

/* -------------------------------------------------------------------------- */

// Load the cell annotation table and check that the required columns are
// present.
func LoadCellData(filename string, logger *Logger, required ...string) (CellData, error) {
  cellData := CellData{}
  if err := cellData.Import(filename); err != nil {
    return cellData, err
  }
  logger.Info("cell data loaded: (%d, %d)", cellData.Length(), cellData.NColumns())
  if err := cellData.Require(required...); err != nil {
    return cellData, err
  }
  return cellData, nil
}
