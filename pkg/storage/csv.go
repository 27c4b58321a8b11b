package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sguter90/windlog/pkg/models"
)

// CSVAppender appends weather rows to a CSV file. The header is written
// only when the file is created; later rows are appended under whatever
// header the file already has. There is no locking.
type CSVAppender struct {
	path string
}

// NewCSVAppender creates an appender for the file at path
func NewCSVAppender(path string) *CSVAppender {
	return &CSVAppender{path: path}
}

// Path returns the target file
func (a *CSVAppender) Path() string {
	return a.path
}

// Append writes row to the file, creating parent directories and the
// header if the file does not exist yet.
func (a *CSVAppender) Append(_ context.Context, row models.WeatherRow) error {
	if dir := filepath.Dir(a.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	_, err := os.Stat(a.path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", a.path, err)
	}

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", a.path, err)
	}

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(row.Columns()); err != nil {
			f.Close()
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(row.Record()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", a.path, err)
	}

	return f.Close()
}
