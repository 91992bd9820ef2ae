package httpapi

import (
	"net/http"
	"path/filepath"
)

// staticRoutes serves the bundled web UI: the index at /, assets under
// /static/, and the service worker at the root scope (it must be served from
// / to control the whole origin).
func (s *Server) staticRoutes() {
	s.rt.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
	})
	s.rt.Get("/service-worker.js", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(s.staticDir, "service-worker.js"))
	})
	fs := http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir)))
	s.rt.Get("/static/*", fs.ServeHTTP)
}
