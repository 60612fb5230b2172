package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/docservice"
)

// Handler holds page and API route handlers.
type Handler struct {
	svc   *docservice.Service
	pages *pages
}

// newHandler creates a new Handler.
func newHandler(svc *docservice.Service, p *pages) *Handler {
	return &Handler{svc: svc, pages: p}
}

// routeParam returns a decoded URL parameter. chi matches on RawPath when
// the request carries one (an escaped separator, for instance), and only
// then do parameters arrive escaped.
func routeParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Home handles GET / with the category listing.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ix := h.svc.Index(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.renderIndex(w, ix); err != nil {
		slog.Error("render index failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Document handles GET /content/{category}/{slug}. Requests into the asset
// folder are served as static files.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	category := routeParam(r, "category")
	slug := routeParam(r, "slug")

	if category == h.svc.AssetsDir() {
		h.serveAsset(w, r, slug)
		return
	}

	doc, err := h.svc.Resolve(r.Context(), category, slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		slog.Error("resolve document failed",
			slog.String("category", category),
			slog.String("slug", slug),
			slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	etag := `"` + doc.Checksum + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", doc.ModTime.UTC().Format(http.TimeFormat))
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.renderDocument(w, doc); err != nil {
		slog.Error("render document failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// NotFound writes the standard 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := h.pages.renderNotFound(w); err != nil {
		slog.Error("render not found failed", slog.String("error", err.Error()))
	}
}

// APIIndex handles GET /api/index.
func (h *Handler) APIIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Index(r.Context()))
}

// APIDocument handles GET /api/content/{category}/{slug}.
func (h *Handler) APIDocument(w http.ResponseWriter, r *http.Request) {
	category := routeParam(r, "category")
	slug := routeParam(r, "slug")

	doc, err := h.svc.Resolve(r.Context(), category, slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeAPIError(w, http.StatusNotFound)
			return
		}
		slog.Error("resolve document failed",
			slog.String("category", category),
			slog.String("slug", slug),
			slog.String("error", err.Error()))
		writeAPIError(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// apiError is the body of every failed /api response.
type apiError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeAPIError(w http.ResponseWriter, status int) {
	writeJSON(w, status, apiError{Error: strings.ToLower(http.StatusText(status)), Status: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.Int("status", status), slog.String("error", err.Error()))
	}
}

// etagMatch reports whether an If-None-Match header lists etag.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
