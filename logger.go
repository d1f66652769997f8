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
import "io"
import "log"

/* -------------------------------------------------------------------------- */

// Logger prints timestamped messages with a level tag. Messages at debug level
// are only printed if Verbose is at least two. A nil *Logger discards
// everything.
type Logger struct {
  Verbose int
  logger *log.Logger
}

func NewLogger(w io.Writer, verbose int) *Logger {
  return &Logger{Verbose: verbose, logger: log.New(w, "", log.LstdFlags)}
}

/* -------------------------------------------------------------------------- */

func (l *Logger) print(level, format string, args ...interface{}) {
  if l == nil {
    return
  }
  l.logger.Printf("%s %s", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
  l.print("INFO", format, args...)
}

func (l *Logger) Warning(format string, args ...interface{}) {
  l.print("WARNING", format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
  l.print("ERROR", format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
  if l == nil || l.Verbose < 2 {
    return
  }
  l.print("DEBUG", format, args...)
}

// Writer used for progress bars, nil if progress should not be shown.
func (l *Logger) progressWriter() io.Writer {
  if l == nil || l.Verbose < 1 {
    return nil
  }
  return l.logger.Writer()
}
