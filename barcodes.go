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

import "regexp"
import "strings"

/* -------------------------------------------------------------------------- */

var (
  regexpTagSample = regexp.MustCompile(`^[ACGT]*-[0-9]+-`)
  regexpTagSuffix = regexp.MustCompile(`^\w*-[0-9]*`)
  regexpNonAlnum  = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

/* -------------------------------------------------------------------------- */

// Strip the sample part from a cell identifier so that it matches the barcode
// column of the fragment file. With split pattern `-' identifiers such as
// `ACGT-1-sample' are reduced to `ACGT-1', otherwise everything starting at
// the first occurrence of the pattern is removed.
func CellBarcode(cellName, splitPattern string) string {
  if splitPattern == "-" {
    if m := regexpTagSample.FindString(cellName); m != "" {
      return strings.TrimRight(m, "-")
    }
    if m := regexpTagSuffix.FindString(cellName); m != "" {
      return strings.TrimRight(m, "-")
    }
    return cellName
  }
  if splitPattern == "" {
    return cellName
  }
  return strings.SplitN(cellName, splitPattern, 2)[0]
}

func CellBarcodes(cellNames []string, splitPattern string) []string {
  r := make([]string, len(cellNames))
  for i, name := range cellNames {
    r[i] = CellBarcode(name, splitPattern)
  }
  return r
}

/* -------------------------------------------------------------------------- */

// Group labels are used as file names. Spaces are removed and any other
// sequence of non-alphanumeric characters is replaced by an underscore.
func SanitizeGroupLabel(label string) string {
  label = strings.Replace(label, " ", "", -1)
  return regexpNonAlnum.ReplaceAllString(label, "_")
}
