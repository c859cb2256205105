// clog.go -- This file is part of goueg.
//
//	goueg is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
// ------------------------------------------------

// Package clog bundles the four loggers used throughout the solvers.
// Output carries result-style lines, Info and Warning carry progress and
// non-fatal conditions, Error carries failures. Solvers receive the
// bundle by injection and never write to process-global destinations.
package clog

import (
	"io"
	"log"
	"os"
)

type Logger struct {
	Info    *log.Logger
	Warning *log.Logger
	Error   *log.Logger
	Output  *log.Logger
}

// New builds a logger bundle writing to w.
func New(w io.Writer) *Logger {
	return &Logger{
		Info:    log.New(w, "INFO: ", log.Ldate|log.Ltime),
		Warning: log.New(w, "WARNING: ", log.Ldate|log.Ltime),
		Error:   log.New(w, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
		Output:  log.New(w, "", 0),
	}
}

// NewFile appends to the named file, creating it if needed.
func NewFile(fname string) (*Logger, *os.File, error) {
	f, err := os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return New(f), f, nil
}

// Discard builds a silent bundle for tests.
func Discard() *Logger {
	return New(io.Discard)
}
