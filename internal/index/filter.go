package index

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which root-level directories are not categories.
type Filter struct {
	assetsDir string
	patterns  []string
}

// NewFilter returns a Filter that always excludes assetsDir and any directory
// whose name matches one of the doublestar patterns.
func NewFilter(assetsDir string, patterns []string) (*Filter, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("index: invalid exclude pattern: %s", p)
		}
	}
	return &Filter{assetsDir: assetsDir, patterns: patterns}, nil
}

// AssetsDir returns the name of the static asset folder.
func (f *Filter) AssetsDir() string {
	return f.assetsDir
}

// IsAssetsDir reports whether name is the static asset folder.
func (f *Filter) IsAssetsDir(name string) bool {
	return f.assetsDir != "" && name == f.assetsDir
}

// Excluded reports whether the directory name must not be treated as a category.
func (f *Filter) Excluded(name string) bool {
	if f.IsAssetsDir(name) {
		return true
	}
	for _, p := range f.patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
