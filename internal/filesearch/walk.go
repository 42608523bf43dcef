// Package filesearch walks a directory tree for documents, honouring the
// root's .gitignore and skipping hidden directories.
package filesearch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultMaxSize is the size above which files are skipped.
const DefaultMaxSize = 1 << 20

// Options controls Walk.
type Options struct {
	Root string
	// Match selects files by path. Nil accepts every file.
	Match func(path string) bool
	// MaxSize skips larger files. Zero means DefaultMaxSize; negative disables.
	MaxSize int64
	// NoIgnore disables .gitignore handling.
	NoIgnore bool
}

// Walk calls fn with the relative (slash-separated) and absolute path of every
// matching file under opts.Root, in lexical order. Unreadable entries are
// skipped. A non-nil error from fn, or ctx being done, stops the walk.
func Walk(ctx context.Context, opts Options, fn func(rel, path string) error) error {
	var ig *Ignore
	if !opts.NoIgnore {
		var err error
		ig, err = LoadIgnore(filepath.Join(opts.Root, ".gitignore"))
		if err != nil {
			log.Warn().Err(err).Str("root", opts.Root).Msg("read .gitignore")
		}
	}
	maxSize := opts.MaxSize
	if maxSize == 0 {
		maxSize = DefaultMaxSize
	}

	return filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("walk")
			return nil
		}
		if path == opts.Root {
			return nil
		}
		rel, err := filepath.Rel(opts.Root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || ig.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if ig.Match(rel, false) || (opts.Match != nil && !opts.Match(path)) {
			return nil
		}
		if maxSize > 0 {
			info, err := d.Info()
			if err != nil || info.Size() > maxSize {
				return nil
			}
		}
		return fn(rel, path)
	})
}
