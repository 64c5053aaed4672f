// Package storage persists scrape output as JSON. The full accumulated
// result list is rewritten after every completed domain, so a crash loses
// at most the in-progress domain's work.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/civic-meetings/internal/meeting"
)

// Writer writes run output to a single destination file.
type Writer struct {
	path string
}

// NewWriter creates a Writer for path, expanding a leading ~/ and creating
// parent directories. An unwritable destination is a configuration error
// and surfaces here, before any scraping starts.
func NewWriter(path string) (*Writer, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	return &Writer{path: path}, nil
}

// Path returns the resolved destination path.
func (w *Writer) Path() string {
	return w.path
}

// WriteResults overwrites the destination with the full result list.
func (w *Writer) WriteResults(results []meeting.DomainResult) error {
	return w.write(results)
}

// WriteURLs overwrites the destination with resolved URLs, one per input
// entry in input order.
func (w *Writer) WriteURLs(urls []string) error {
	return w.write(urls)
}

func (w *Writer) write(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", w.path, err)
	}
	return nil
}
