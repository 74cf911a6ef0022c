// Package store persists contacts, generated emails and dispatch results as
// CSV and JSON files under the data directory.
package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TimestampLayout formats file name timestamps.
const TimestampLayout = "20060102_150405"

// ValidationError reports a CSV file that lacks required columns.
type ValidationError struct {
	Path    string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
}

// table is a parsed CSV file with a header index.
type table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

func (t *table) get(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (t *table) missing(required ...string) []string {
	var out []string
	for _, c := range required {
		if _, ok := t.index[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return &table{index: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	t := &table{header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func writeTable(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
