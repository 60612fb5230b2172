package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/starford/folio/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Site holds the presentational settings shared by every page.
type Site struct {
	Title       string
	Description string
	Heading     string
	Footer      string
	FooterURL   string
	LiveReload  bool
}

// reloadScope tells the live-reload script which events concern the page.
type reloadScope struct {
	Category string `json:"category"`
	Slug     string `json:"slug"`
}

type pageData struct {
	Site   Site
	Title  string
	Index  models.Index
	Doc    *models.Document
	Body   template.HTML
	Reload reloadScope
}

type pages struct {
	site     Site
	index    *template.Template
	document *template.Template
	notFound *template.Template
}

func newPages(site Site) (*pages, error) {
	parse := func(name string) (*template.Template, error) {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		return t, nil
	}
	p := &pages{site: site}
	var err error
	if p.index, err = parse("index.html"); err != nil {
		return nil, err
	}
	if p.document, err = parse("document.html"); err != nil {
		return nil, err
	}
	if p.notFound, err = parse("notfound.html"); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pages) renderIndex(w io.Writer, ix models.Index) error {
	return execute(w, p.index, pageData{Site: p.site, Title: p.site.Title, Index: ix})
}

func (p *pages) renderDocument(w io.Writer, doc *models.Document) error {
	return execute(w, p.document, pageData{
		Site:   p.site,
		Title:  doc.Title,
		Doc:    doc,
		Body:   template.HTML(doc.HTML), //nolint:gosec // content comes from the operator's own tree
		Reload: reloadScope{Category: doc.Category, Slug: doc.Slug},
	})
}

func (p *pages) renderNotFound(w io.Writer) error {
	return execute(w, p.notFound, pageData{Site: p.site, Title: "Not found"})
}

// execute renders into a buffer first so a template error never leaves a
// half-written page behind.
func execute(w io.Writer, t *template.Template, data pageData) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("web: execute %s: %w", t.Name(), err)
	}
	_, err := buf.WriteTo(w)
	return err
}
