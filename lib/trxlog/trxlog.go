// Package trxlog appends the transactions seen each cycle to a pipe
// delimited file.
package trxlog

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jayjanssen/myq-mon/lib/dbconn"
	"github.com/jayjanssen/myq-mon/lib/views"
)

// Sep separates the fields of a line
const Sep = "|"

var fieldCleaner = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Writer appends rows to the log file
type Writer struct {
	f *os.File
	w *bufio.Writer
}

// Open opens path for appending and writes view's header line
func Open(path string, view *views.View) (*Writer, error) {
	if len(view.Log) == 0 {
		return nil, fmt.Errorf("view %q has no log fields", view.Title)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot write to logfile: %w", err)
	}
	w := &Writer{f: f, w: bufio.NewWriter(f)}
	if _, err := w.w.WriteString(view.LogHeader(Sep) + "\n"); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.w.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// Line formats one row with view's log fields
func Line(view *views.View, row dbconn.Row) string {
	fields := make([]string, len(view.Log))
	for i, col := range view.Log {
		fields[i] = fieldCleaner.Replace(col.Value(row))
	}
	return strings.Join(fields, Sep)
}

// WriteRows appends one line per row and flushes, so a killed process loses
// at most the current cycle.
func (w *Writer) WriteRows(view *views.View, rows []dbconn.Row) error {
	for _, row := range rows {
		if _, err := w.w.WriteString(Line(view, row) + "\n"); err != nil {
			return err
		}
	}
	return w.w.Flush()
}

// Close flushes and closes the file
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
