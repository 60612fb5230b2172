// Package web serves the listing and document pages, their JSON mirrors and
// static assets using chi.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/folio/internal/docservice"
)

// NewRouter creates a chi router with all page and API routes mounted.
// events, if non-nil, is mounted at GET /events and enables the live-reload
// script on every page.
func NewRouter(svc *docservice.Service, site Site, events http.Handler) (chi.Router, error) {
	site.LiveReload = events != nil
	pages, err := newPages(site)
	if err != nil {
		return nil, err
	}
	h := newHandler(svc, pages)

	r := chi.NewRouter()
	r.NotFound(h.NotFound)

	// Pages.
	r.Get("/", h.Home)
	r.Get("/content/{category}/{slug}", h.Document)

	// JSON mirrors.
	r.Route("/api", func(r chi.Router) {
		r.Get("/index", h.APIIndex)
		r.Get("/content/{category}/{slug}", h.APIDocument)
	})

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r, nil
}
