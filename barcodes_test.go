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

import   "testing"

/* -------------------------------------------------------------------------- */

func TestCellBarcode(t *testing.T) {
  tests := []struct {
    name    string
    pattern string
    result  string
  }{
    {"AAACGAAAGCGCAATG-1-sample1", "-",   "AAACGAAAGCGCAATG-1"},
    {"AAACGAAAGCGCAATG-1",         "-",   "AAACGAAAGCGCAATG-1"},
    {"cell_12-3",                  "-",   "cell_12-3"},
    {"cell",                       "-",   "cell"},
    {"AAAC___sample1",             "___", "AAAC"},
    {"AAAC___sample1___x",         "___", "AAAC"},
    {"AAAC-1",                     "___", "AAAC-1"},
    {"AAAC-1-sample1",             "",    "AAAC-1-sample1"},
  }
  for _, test := range tests {
    if r := CellBarcode(test.name, test.pattern); r != test.result {
      t.Errorf("test failed for `%s': got `%s', expected `%s'", test.name, r, test.result)
    }
  }
}

func TestSanitizeGroupLabel(t *testing.T) {
  tests := [][2]string{
    {"T cell",          "Tcell"},
    {"CD4+ T-cell",     "CD4_T_cell"},
    {"B/plasma (IgG)",  "B_plasma_IgG_"},
    {"Bcell",           "Bcell"},
  }
  for _, test := range tests {
    if r := SanitizeGroupLabel(test[0]); r != test[1] {
      t.Errorf("test failed for `%s': got `%s', expected `%s'", test[0], r, test[1])
    }
  }
}
