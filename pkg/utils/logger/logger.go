// The package logger defines a simple logger with INFO, WARN and ERROR prints.
package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

type Aggregate struct {
	InfoLogger  *log.Logger
	WarnLogger  *log.Logger
	ErrorLogger *log.Logger
}

// New() returns an initialized Logger
func New(out io.Writer) *Aggregate {
	return &Aggregate{
		InfoLogger:  log.New(out, "INFO: ", log.LstdFlags),
		WarnLogger:  log.New(out, "WARN: ", log.LstdFlags),
		ErrorLogger: log.New(out, "ERROR: ", log.LstdFlags|log.Lmicroseconds),
	}
}

// Discard() returns a Logger that drops everything.
func Discard() *Aggregate {
	return New(io.Discard)
}

// With() returns a Logger whose lines are tagged with the component name.
func (l *Aggregate) With(component string) *Aggregate {
	tag := "[" + component + "] "
	return &Aggregate{
		InfoLogger:  log.New(l.InfoLogger.Writer(), l.InfoLogger.Prefix()+tag, l.InfoLogger.Flags()),
		WarnLogger:  log.New(l.WarnLogger.Writer(), l.WarnLogger.Prefix()+tag, l.WarnLogger.Flags()),
		ErrorLogger: log.New(l.ErrorLogger.Writer(), l.ErrorLogger.Prefix()+tag, l.ErrorLogger.Flags()),
	}
}

// Info() prints an INFO log
func (l *Aggregate) Info(s string, v ...interface{}) {
	l.InfoLogger.Printf(s, v...)
}

// Warn() prints an WARN log
func (l *Aggregate) Warn(s string, v ...interface{}) {
	l.WarnLogger.Printf(s, v...)
}

// Error() prints an ERROR log
func (l *Aggregate) Error(s string, v ...interface{}) {
	l.ErrorLogger.Printf(s, v...)
}

// Open() returns a logger that prints to path when it ends in ".log", and to
// stdout otherwise. The returned closer must be called on shutdown.
func Open(path string) (*Aggregate, io.Closer, error) {
	if !strings.HasSuffix(path, ".log") {
		return New(os.Stdout), nopCloser{}, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, nil, err
	}
	return New(file), file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
