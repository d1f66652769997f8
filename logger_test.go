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
import   "strings"
import   "testing"

/* -------------------------------------------------------------------------- */

func TestLogger(t *testing.T) {
  var buffer bytes.Buffer
  logger := NewLogger(&buffer, 1)
  logger.Info("cell data loaded: (%d, %d)", 2, 3)
  logger.Debug("hidden")

  if s := buffer.String(); !strings.Contains(s, "INFO cell data loaded: (2, 3)") || strings.Contains(s, "hidden") {
    t.Errorf("test failed: %s", s)
  }
  if logger.progressWriter() == nil {
    t.Error("test failed")
  }
  // nil loggers discard everything
  var null *Logger
  null.Warning("nothing")
  if null.progressWriter() != nil {
    t.Error("test failed")
  }
}
