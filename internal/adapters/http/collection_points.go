package httpadapter

import (
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func (rt *Router) listCollectionPoints(w http.ResponseWriter, r *http.Request) {
	// Anything but "map" gets the list view.
	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("view")), "map") {
		pointsMap, err := rt.services.Points.Map(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"view": "map", "map": pointsMap})
		return
	}

	cards, err := rt.services.Points.Cards(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": "list", "collection_points": cards})
}

// serveDonationImage serves uploaded photos under their public URL.
func (rt *Router) serveDonationImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	object, err := rt.services.Objects.Open(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	defer object.Close()

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if seeker, ok := object.(io.ReadSeeker); ok {
		http.ServeContent(w, r, path.Base(key), time.Time{}, seeker)
		return
	}
	_, _ = io.Copy(w, object)
}
