// Package exports writes rule documents and metrics exports to disk.
package exports

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// ChartsDir is the subdirectory holding metrics exports.
const ChartsDir = "charts"

// Writer writes export files under a root directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir, creating dir and its charts
// subdirectory.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, ChartsDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the export root.
func (w *Writer) Dir() string { return w.dir }

// WriteDocument writes doc to its format's file name and returns the path.
func (w *Writer) WriteDocument(doc domain.RuleDocument) (string, error) {
	if !doc.Format.IsValid() {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownFormat, doc.Format)
	}
	path := filepath.Join(w.dir, doc.Format.FileName())
	if err := writeAtomic(path, []byte(doc.Content), doc.Format == domain.FormatIPTables); err != nil {
		return "", err
	}
	return path, nil
}

// WriteDocuments writes every document in format order and returns the
// written paths in the same order.
func (w *Writer) WriteDocuments(docs map[domain.Format]domain.RuleDocument) ([]string, error) {
	formats := make([]domain.Format, 0, len(docs))
	for f := range docs {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		p, err := w.WriteDocument(docs[f])
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// WriteChart writes a metrics export under the charts directory.
func (w *Writer) WriteChart(name, content string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid chart file name %q", name)
	}
	path := filepath.Join(w.dir, ChartsDir, name)
	if err := writeAtomic(path, []byte(content), false); err != nil {
		return "", err
	}
	return path, nil
}

// writeAtomic writes data to a temp file beside path and renames it into
// place. Shell scripts are made executable.
func writeAtomic(path string, data []byte, executable bool) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	mode := os.FileMode(0o644)
	if executable {
		mode = 0o755
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store %s: %w", path, err)
	}
	return nil
}
