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
import "encoding/gob"
import "os"

/* -------------------------------------------------------------------------- */

// Save the map to filename. The file is always closed and any failure is
// returned as *IOError.
func SaveOutputPathMap(filename string, m OutputPathMap) (err error) {
  f, err := os.Create(filename)
  if err != nil {
    return newIOError(filename, err)
  }
  defer func() {
    if e := f.Close(); e != nil && err == nil {
      err = newIOError(filename, e)
    }
  }()
  w := bufio.NewWriter(f)
  if err := gob.NewEncoder(w).Encode(map[string]string(m)); err != nil {
    return newIOError(filename, err)
  }
  if err := w.Flush(); err != nil {
    return newIOError(filename, err)
  }
  return nil
}

func LoadOutputPathMap(filename string) (OutputPathMap, error) {
  f, err := os.Open(filename)
  if err != nil {
    return nil, newIOError(filename, err)
  }
  defer f.Close()

  m := map[string]string{}
  if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&m); err != nil {
    return nil, newIOError(filename, err)
  }
  return OutputPathMap(m), nil
}
