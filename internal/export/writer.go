package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Writer streams records to w as one JSON array without holding the whole
// dump in memory. Call Close to terminate the array.
type Writer struct {
	w io.Writer
	n int
}

// NewWriter returns a Writer streaming to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write appends one record to the array.
func (w *Writer) Write(rec Record) error {
	sep := "[\n"
	if w.n > 0 {
		sep = ",\n"
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal frame %d: %w", rec.FrameNumber, err)
	}
	if _, err := io.WriteString(w.w, sep); err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	w.n++
	return nil
}

// Close terminates the JSON array. The Writer must not be used afterwards.
func (w *Writer) Close() error {
	if w.n == 0 {
		_, err := io.WriteString(w.w, "[]\n")
		return err
	}
	_, err := io.WriteString(w.w, "\n]\n")
	return err
}

// FileWriter streams a dump to <path>.part and renames it into place on
// Close, so readers never observe a half-written file.
type FileWriter struct {
	path string
	tmp  string
	f    *os.File
	w    *Writer
}

// CreateFile opens a file writer for the given destination path.
func CreateFile(path string) (*FileWriter, error) {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", tmp, err)
	}
	return &FileWriter{path: path, tmp: tmp, f: f, w: NewWriter(f)}, nil
}

// Write appends one record.
func (fw *FileWriter) Write(rec Record) error {
	return fw.w.Write(rec)
}

// Close terminates the array, closes the temp file, and publishes it under
// the final name.
func (fw *FileWriter) Close() error {
	if err := fw.w.Close(); err != nil {
		fw.f.Close()
		return err
	}
	if err := fw.f.Close(); err != nil {
		return err
	}
	return os.Rename(fw.tmp, fw.path)
}

// Discard abandons the dump and removes the temp file.
func (fw *FileWriter) Discard() {
	fw.f.Close()
	os.Remove(fw.tmp)
}
