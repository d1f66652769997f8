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

import "fmt"
import "strings"

/* -------------------------------------------------------------------------- */

// ValidationError is returned if the cell metadata does not satisfy the
// requirements of the pipeline. Items holds the offending values, i.e. the
// missing column names or the distinct samples that were found.
type ValidationError struct {
  Msg     string
  Items []string
}

func newValidationError(items []string, format string, args ...interface{}) *ValidationError {
  return &ValidationError{Msg: fmt.Sprintf(format, args...), Items: items}
}

func (e *ValidationError) Error() string {
  quoted := make([]string, len(e.Items))
  for i, item := range e.Items {
    quoted[i] = fmt.Sprintf("`%s'", item)
  }
  return fmt.Sprintf("%s: [%s]", e.Msg, strings.Join(quoted, ", "))
}

/* -------------------------------------------------------------------------- */

// FetchError is returned if the reference data could not be retrieved.
type FetchError struct {
  URL string
  Err error
}

func (e *FetchError) Error() string {
  return fmt.Sprintf("fetching reference data from `%s' failed: %v", e.URL, e.Err)
}

func (e *FetchError) Cause() error {
  return e.Err
}

func (e *FetchError) Unwrap() error {
  return e.Err
}

/* -------------------------------------------------------------------------- */

// AggregationError wraps any failure of the pseudobulk aggregator. Group is
// empty if the failure is not specific to a single group.
type AggregationError struct {
  Group string
  Err   error
}

func (e *AggregationError) Error() string {
  if e.Group == "" {
    return fmt.Sprintf("pseudobulk aggregation failed: %v", e.Err)
  }
  return fmt.Sprintf("pseudobulk aggregation failed for group `%s': %v", e.Group, e.Err)
}

func (e *AggregationError) Cause() error {
  return e.Err
}

func (e *AggregationError) Unwrap() error {
  return e.Err
}

/* -------------------------------------------------------------------------- */

// IOError is returned if an output path is not writable.
type IOError struct {
  Path string
  Err  error
}

func newIOError(path string, err error) *IOError {
  return &IOError{Path: path, Err: err}
}

func (e *IOError) Error() string {
  return fmt.Sprintf("writing `%s' failed: %v", e.Path, e.Err)
}

func (e *IOError) Cause() error {
  return e.Err
}

func (e *IOError) Unwrap() error {
  return e.Err
}
