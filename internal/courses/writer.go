package courses

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"harvest/internal/httputil"
)

const (
	departmentsFile = "departments.json"
	allCoursesFile  = "all_courses.json"
)

// Writer stores crawl output as indented UTF-8 JSON under a directory.
type Writer struct {
	dir string
}

// NewWriter creates dir if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// WriteDepartments writes the department list.
func (w *Writer) WriteDepartments(depts []Department) error {
	return w.write(departmentsFile, depts)
}

// WriteDepartment writes one department's courses to <code>_<name>.json.
func (w *Writer) WriteDepartment(d Department, courses []Course) error {
	if courses == nil {
		courses = []Course{}
	}
	return w.write(d.Code+"_"+d.Name+".json", courses)
}

// WriteAll writes every department's courses keyed by code.
func (w *Writer) WriteAll(all map[string][]Course) error {
	return w.write(allCoursesFile, all)
}

func (w *Writer) write(name string, v any) error {
	path, err := httputil.SafeDownloadPath(w.dir, name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(w.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
