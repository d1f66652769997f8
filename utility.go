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
import "bytes"
import "io"
import "os"
import "path/filepath"
import "strings"

import "github.com/klauspost/compress/gzip"
import "github.com/klauspost/compress/zlib"
import "github.com/pkg/errors"

/* -------------------------------------------------------------------------- */

func iMin(a, b int) int {
  if a < b {
    return a
  } else {
    return b
  }
}

func iMax(a, b int) int {
  if a > b {
    return a
  } else {
    return b
  }
}

// Divide a by b, the result is rounded up.
func divIntUp(a, b int) int {
  return (a+b-1)/b
}

/* -------------------------------------------------------------------------- */

func removeQuotes(str string) string {
  if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
    return str[1:len(str)-1]
  }
  return str
}

func removeDuplicatesString(s []string) []string {
  m := map[string]bool{}
  r := []string{}

  for _, v := range s {
    if m[v] != true {
      m[v] = true
      r    = append(r, v)
    }
  }
  return r
}

/* -------------------------------------------------------------------------- */

// Wrap reader with a gzip decoder if the stream starts with the gzip magic
// number. Multi-member streams (bgzf) are read to the end.
func openMaybeGzip(r io.Reader) (io.Reader, func() error, error) {
  b := bufio.NewReader(r)
  if magic, err := b.Peek(2); err == nil && magic[0] == 31 && magic[1] == 139 {
    g, err := gzip.NewReader(b)
    if err != nil {
      return nil, nil, err
    }
    return g, g.Close, nil
  }
  return b, func() error { return nil }, nil
}

func isGzipFilename(filename string) bool {
  return strings.HasSuffix(filename, ".gz")
}

/* -------------------------------------------------------------------------- */

func compressSlice(data []byte) ([]byte, error) {
  var b bytes.Buffer
  z, err := zlib.NewWriterLevel(&b, zlib.BestCompression)
  if err != nil {
    return nil, err
  }
  if _, err := z.Write(data); err != nil {
    return nil, err
  }
  if err := z.Close(); err != nil {
    return nil, err
  }
  return b.Bytes(), nil
}

/* -------------------------------------------------------------------------- */

// Create all given directories if they are absent.
func makeDirs(dirs ...string) error {
  for _, dir := range dirs {
    if err := os.MkdirAll(dir, 0755); err != nil {
      return newIOError(dir, err)
    }
  }
  return nil
}

// Move a finished file from the scratch directory to its destination. A copy
// is made if both paths are on different file systems.
func moveFile(src, dst string) error {
  if err := os.Rename(src, dst); err == nil {
    return nil
  }
  in, err := os.Open(src)
  if err != nil {
    return err
  }
  defer in.Close()

  tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".part")
  out, err := os.Create(tmp)
  if err != nil {
    return err
  }
  if _, err := io.Copy(out, in); err != nil {
    out.Close()
    os.Remove(tmp)
    return errors.Wrapf(err, "copying `%s' to `%s' failed", src, dst)
  }
  if err := out.Close(); err != nil {
    os.Remove(tmp)
    return err
  }
  if err := os.Rename(tmp, dst); err != nil {
    return err
  }
  return os.Remove(src)
}
