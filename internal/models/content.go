// Package models defines the domain types for folio.
package models

import (
	"net/url"
	"strings"
	"time"
)

// MarkdownExt is the file extension that marks a document inside a category.
const MarkdownExt = ".md"

// Entry describes one Markdown document within a category.
type Entry struct {
	Filename string `json:"filename" yaml:"filename"`
	Slug     string `json:"slug" yaml:"slug"`
	Category string `json:"category" yaml:"category"`
}

// Title returns the display title derived from the slug.
func (e Entry) Title() string {
	return DisplayTitle(e.Slug)
}

// Href returns the detail page link for the entry.
func (e Entry) Href() string {
	return DocumentHref(e.Category, e.Slug)
}

// Section groups the entries of a single category.
type Section struct {
	Category string  `json:"category" yaml:"category"`
	Entries  []Entry `json:"entries" yaml:"entries"`
}

// Index is the navigation index, one section per category in directory order.
type Index struct {
	Sections []Section `json:"sections" yaml:"sections"`
}

// Categories returns the category names in index order.
func (ix Index) Categories() []string {
	out := make([]string, 0, len(ix.Sections))
	for _, s := range ix.Sections {
		out = append(out, s.Category)
	}
	return out
}

// Map returns the index as a category -> entries mapping.
func (ix Index) Map() map[string][]Entry {
	out := make(map[string][]Entry, len(ix.Sections))
	for _, s := range ix.Sections {
		out[s.Category] = s.Entries
	}
	return out
}

// Empty reports whether the index has no categories.
func (ix Index) Empty() bool {
	return len(ix.Sections) == 0
}

// Document is a rendered Markdown file.
type Document struct {
	Category string    `json:"category"`
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	HTML     string    `json:"html"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"updated_at"`
}

// DisplayTitle replaces every underscore in slug with a space.
func DisplayTitle(slug string) string {
	return strings.ReplaceAll(slug, "_", " ")
}

// DocumentHref builds the /content/{category}/{slug} link.
func DocumentHref(category, slug string) string {
	return "/content/" + url.PathEscape(category) + "/" + url.PathEscape(slug)
}
