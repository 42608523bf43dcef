package treesitter

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xonecas/tplsel/internal/filesearch"
	"github.com/xonecas/tplsel/internal/highlight"
)

// Index maps the HTML documents under a directory to their widgets.
type Index struct {
	mu    sync.RWMutex
	docs  map[string][]Symbol // slash-separated relative path -> widgets
	root  string
}

// NewIndex creates an empty index rooted at dir.
func NewIndex(root string) *Index {
	return &Index{
		docs: make(map[string][]Symbol),
		root:  root,
	}
}

// Supported reports whether path looks like an HTML document.
func Supported(path string) bool {
	return highlight.DetectLanguage(path) == "html"
}

// Build walks the tree, parsing every HTML document. Hidden directories,
// paths ignored by the root's .gitignore and files over 1MB are skipped.
func (idx *Index) Build() error {
	return idx.BuildContext(context.Background())
}

// BuildContext is Build with cancellation.
func (idx *Index) BuildContext(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	return filesearch.Walk(ctx, filesearch.Options{Root: idx.root, Match: Supported}, func(rel, path string) error {
		syms, err := ParseFile(path)
		if err != nil {
			log.Debug().Err(err).Str("path", rel).Msg("skip unparsable document")
			return nil
		}
		idx.docs[rel] = syms
		return nil
	})
}

// UpdateFile re-parses a single file. Unreadable files are dropped.
func (idx *Index) UpdateFile(absPath string) {
	rel, err := filepath.Rel(idx.root, absPath)
	if err != nil || !Supported(absPath) {
		return
	}
	rel = filepath.ToSlash(rel)
	syms, err := ParseFile(absPath)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err != nil {
		delete(idx.docs, rel)
		return
	}
	idx.docs[rel] = syms
}

// Files returns the indexed paths, sorted.
func (idx *Index) Files() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return slices.Sorted(maps.Keys(idx.docs))
}

// Symbols returns the widgets of one file.
func (idx *Index) Symbols(relPath string) []Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.docs[relPath]
}

// Snapshot returns a copy of the index. With flaggedOnly set it keeps only
// the documents holding at least one flagged widget.
func (idx *Index) Snapshot(flaggedOnly bool) map[string][]Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[string][]Symbol, len(idx.docs))
	for path, syms := range idx.docs {
		if !flaggedOnly || slices.ContainsFunc(syms, func(s Symbol) bool { return s.Flagged }) {
			out[path] = syms
		}
	}
	return out
}
