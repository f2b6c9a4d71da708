package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bckpockets/droppy-scraper/app/drops"
)

const (
	IndexFile = "index.json"
	AllFile   = "all.json"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeFilename derives the canonical identifier for a source name:
// lower-cased, runs of other characters collapsed to "_", trimmed.
func NormalizeFilename(name string) string {
	safe := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(safe, "_")
}

// Index lists every resolved source identifier and maps human-facing names
// to one or more identifiers.
type Index struct {
	Sources []string            `json:"sources"`
	Aliases map[string][]string `json:"aliases"`
}

type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) Dir() string {
	return w.dir
}

// WriteSource writes <id>.json for source and returns the identifier used.
func (w *Writer) WriteSource(source drops.Source) (string, error) {
	id := NormalizeFilename(source.Name)
	if id == "" {
		return "", fmt.Errorf("source name %q has no usable identifier", source.Name)
	}

	if err := w.writeJSON(id+".json", source, true); err != nil {
		return "", err
	}

	slog.Debug("Source file written", "source", source.Name, "id", id, "drops", len(source.Drops))

	return id, nil
}

// RemoveSource deletes <id>.json. A missing file is not an error.
func (w *Writer) RemoveSource(id string) error {
	if id == "" {
		return fmt.Errorf("empty source identifier")
	}
	err := os.Remove(filepath.Join(w.dir, id+".json"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s.json: %w", id, err)
	}
	return nil
}

func (w *Writer) WriteIndex(index Index) error {
	if index.Sources == nil {
		index.Sources = []string{}
	}
	if index.Aliases == nil {
		index.Aliases = map[string][]string{}
	}
	return w.writeJSON(IndexFile, index, true)
}

// WriteAll writes every source, keyed by identifier, into a single compact file.
func (w *Writer) WriteAll(sources map[string]drops.Source) error {
	if sources == nil {
		sources = map[string]drops.Source{}
	}
	return w.writeJSON(AllFile, sources, false)
}

// writeJSON writes through a temporary file so readers never see a partial file.
func (w *Writer) writeJSON(name string, v any, indent bool) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	tmp, err := os.CreateTemp(w.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}
