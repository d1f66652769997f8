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

import "sort"

/* -------------------------------------------------------------------------- */

// Map from sample identifier to the path of its fragment file.
type FragmentSources map[string]string

// Sample identifiers in sorted order.
func (sources FragmentSources) Samples() []string {
  samples := make([]string, 0, len(sources))
  for sample := range sources {
    samples = append(samples, sample)
  }
  sort.Strings(samples)
  return samples
}

/* -------------------------------------------------------------------------- */

// Determine the single sample referenced by the cell data and associate it
// with the given fragment file. A *ValidationError listing all distinct
// samples is returned if there is not exactly one.
func ResolveSample(cellData CellData, sampleColumn, fragmentsFile string) (string, FragmentSources, error) {
  samples, err := cellData.Unique(sampleColumn)
  if err != nil {
    return "", nil, err
  }
  if len(samples) != 1 {
    return "", nil, newValidationError(samples, "expected exactly one sample, found %d", len(samples))
  }
  return samples[0], FragmentSources{samples[0]: fragmentsFile}, nil
}
