package handlers

import (
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// HandleStatic serves the capture form and its assets from staticDir
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/static/")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		name = "index.html"
	}

	if strings.Contains(name, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeFile(w, r, filepath.Join(h.staticDir, filepath.FromSlash(name)))
}
