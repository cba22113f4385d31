package deck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vytor/quizdeck/internal/models"
)

// Source yields one deck. Ref identifies the deck in the catalog.
type Source interface {
	Ref() string
	Load(ctx context.Context) (*models.Deck, error)
}

// FileSource reads a JSON deck from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Ref() string { return refFromPath(s.Path) }

func (s FileSource) Load(ctx context.Context) (*models.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read deck %s: %w", s.Path, err)
	}
	d, err := Load(raw)
	if err != nil {
		return nil, fmt.Errorf("load deck %s: %w", s.Path, err)
	}
	return d, nil
}

// BytesSource serves an in-memory JSON document, such as a deck uploaded
// through the API.
type BytesSource struct {
	Name string
	Data []byte
}

func (s BytesSource) Ref() string { return s.Name }

func (s BytesSource) Load(ctx context.Context) (*models.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(s.Data)
}

// SourcesFromDir lists deck files in dir: "*_cards.json" files and Excel
// workbooks. The result is sorted by path.
func SourcesFromDir(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list decks in %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, "_cards.json") || strings.HasSuffix(name, ".xlsx") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ".xlsx") {
			sources = append(sources, XLSXSource{Path: p})
		} else {
			sources = append(sources, FileSource{Path: p})
		}
	}
	return sources, nil
}

func refFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, "_cards")
}
