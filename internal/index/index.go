// Package index builds the category navigation index from the content root
// and watches it for changes.
package index

import (
	"context"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// Builder scans the content root one level deep.
type Builder struct {
	store  storage.Provider
	filter *Filter
	logger *slog.Logger
}

// NewBuilder creates a Builder over store.
func NewBuilder(store storage.Provider, filter *Filter, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{store: store, filter: filter, logger: logger}
}

// Build lists every category directory under the root with its Markdown
// entries. A missing or unreadable root yields an empty index. Categories
// without documents are kept with an empty entry list.
func (b *Builder) Build(ctx context.Context) models.Index {
	ix := models.Index{Sections: []models.Section{}}

	children, err := b.store.ReadDir("")
	if err != nil {
		b.logger.Warn("index: content root unavailable",
			slog.String("root", b.store.Root()),
			slog.String("error", err.Error()))
		return ix
	}

	for _, child := range children {
		if ctx.Err() != nil {
			return ix
		}
		name := child.Name()
		if !isDir(b.store, name, child) || b.filter.Excluded(name) {
			continue
		}
		ix.Sections = append(ix.Sections, models.Section{
			Category: name,
			Entries:  b.entries(name),
		})
	}
	return ix
}

func (b *Builder) entries(category string) []models.Entry {
	out := []models.Entry{}
	files, err := b.store.ReadDir(category)
	if err != nil {
		b.logger.Warn("index: list category failed",
			slog.String("category", category),
			slog.String("error", err.Error()))
		return out
	}
	for _, f := range files {
		name := f.Name()
		if !IsDocument(name) || !isRegular(b.store, path.Join(category, name), f) {
			continue
		}
		out = append(out, models.Entry{
			Filename: name,
			Slug:     strings.TrimSuffix(name, models.MarkdownExt),
			Category: category,
		})
	}
	return out
}

// isDir follows symlinks so linked category folders are listed. Links that
// resolve outside the root fail Stat and are skipped.
func isDir(store storage.Provider, rel string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.IsDir()
	}
	info, err := store.Stat(rel)
	return err == nil && info.IsDir()
}

// isRegular is the file counterpart of isDir.
func isRegular(store storage.Provider, rel string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular()
	}
	info, err := store.Stat(rel)
	return err == nil && info.Mode().IsRegular()
}

// IsDocument reports whether a file name denotes a Markdown document.
func IsDocument(name string) bool {
	return len(name) > len(models.MarkdownExt) && strings.HasSuffix(name, models.MarkdownExt)
}
