// Package docservice resolves category/slug pairs to rendered documents and
// exposes the navigation index.
package docservice

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/markdown"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// Service coordinates storage, index building and Markdown rendering.
// It holds no mutable state; every call reads the file system afresh.
type Service struct {
	store   storage.Provider
	filter  *index.Filter
	builder *index.Builder
	md      *markdown.Renderer
	logger  *slog.Logger
}

// NewService creates a new document service.
func NewService(store storage.Provider, filter *index.Filter, md *markdown.Renderer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		filter:  filter,
		builder: index.NewBuilder(store, filter, logger),
		md:      md,
		logger:  logger,
	}
}

// Index builds the navigation index.
func (s *Service) Index(ctx context.Context) models.Index {
	return s.builder.Build(ctx)
}

// AssetsDir returns the name of the static asset folder.
func (s *Service) AssetsDir() string {
	return s.filter.AssetsDir()
}

// Resolve reads and renders the document for category/slug. Any failure to
// locate or read the file is reported as apperr.ErrNotFound.
func (s *Service) Resolve(ctx context.Context, category, slug string) (*models.Document, error) {
	src, info, err := s.read(ctx, category, slug)
	if err != nil {
		return nil, err
	}
	body, err := s.md.Render(src)
	if err != nil {
		return nil, fmt.Errorf("docservice: render %s/%s: %w", category, slug, err)
	}
	return &models.Document{
		Category: category,
		Slug:     slug,
		Title:    models.DisplayTitle(slug),
		HTML:     string(body),
		Checksum: checksum.Sum(src),
		ModTime:  info.ModTime(),
	}, nil
}

// Source returns the raw Markdown for category/slug under the same rules as Resolve.
func (s *Service) Source(ctx context.Context, category, slug string) ([]byte, error) {
	src, _, err := s.read(ctx, category, slug)
	return src, err
}

// Asset returns a file stored directly in the asset folder.
func (s *Service) Asset(ctx context.Context, name string) ([]byte, fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if s.filter.AssetsDir() == "" {
		return nil, nil, apperr.ErrNotFound
	}
	if err := validSegment(name); err != nil {
		return nil, nil, err
	}
	rel := path.Join(s.filter.AssetsDir(), name)
	return s.load(rel)
}

func (s *Service) read(ctx context.Context, category, slug string) ([]byte, fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := validSegment(category); err != nil {
		return nil, nil, err
	}
	if err := validSegment(slug); err != nil {
		return nil, nil, err
	}
	if s.filter.Excluded(category) {
		return nil, nil, fmt.Errorf("%w: excluded category %s", apperr.ErrNotFound, category)
	}
	return s.load(path.Join(category, slug+models.MarkdownExt))
}

func (s *Service) load(rel string) ([]byte, fs.FileInfo, error) {
	info, err := s.store.Stat(rel)
	if err != nil {
		s.logger.Debug("docservice: stat failed", slog.String("path", rel), slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, rel)
	}
	data, err := s.store.Read(rel)
	if err != nil {
		s.logger.Debug("docservice: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, rel)
	}
	return data, info, nil
}

// validSegment rejects anything that is not a single plain path element.
func validSegment(seg string) error {
	if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, "/\\\x00") {
		return fmt.Errorf("%w: %w: %q", apperr.ErrNotFound, apperr.ErrInvalidPath, seg)
	}
	return nil
}
