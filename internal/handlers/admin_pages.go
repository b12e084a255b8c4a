package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// AdminPages serves the built admin frontend from dir, mounted at prefix.
// Paths without a matching file fall back to index.html so client-side routes
// such as /admin/portfolio/123/edit load the app.
func AdminPages(prefix, dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.StripPrefix(prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		if strings.Contains(path.Base(name), ".") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}))
}
