package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
)

// serveAsset handles GET /content/{assets_dir}/{filename}. Markdown pages
// reference their images through this path.
func (h *Handler) serveAsset(w http.ResponseWriter, r *http.Request, name string) {
	data, info, err := h.svc.Asset(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("serve asset failed", slog.String("name", name), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("ETag", checksum.ETag(data))
	http.ServeContent(w, r, info.Name(), info.ModTime(), bytes.NewReader(data))
}
