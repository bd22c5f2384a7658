// Package spa serves the compiled single-page frontend.
//
// Files that exist under the static directory are served as is (with
// pre-compressed variants when present). Any other non-API GET falls back to
// index.html so client-side routes such as /admin or /posts/... load the app.
package spa

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dalemusser/stratablog/internal/app/system/jsonutil"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"go.uber.org/zap"
)

// Handler serves the frontend build in dir.
type Handler struct {
	dir    string
	files  http.Handler
	logger *zap.Logger
}

// NewHandler creates a Handler for the build output in dir. A missing
// directory is logged; requests then get JSON 404s until it exists.
func NewHandler(dir string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		logger.Warn("frontend build not found; only the API will be served",
			zap.String("static_dir", dir),
			zap.Error(err))
	}
	return &Handler{
		dir:    dir,
		files:  fileserver.Handler("", dir),
		logger: logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		jsonutil.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	if clean == "/api" || strings.HasPrefix(clean, "/api/") {
		jsonutil.NotFound(w, "Not found")
		return
	}

	if clean != "/" && h.isFile(clean) {
		h.files.ServeHTTP(w, r)
		return
	}
	h.serveIndex(w, r)
}

func (h *Handler) isFile(urlPath string) bool {
	fi, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(urlPath)))
	return err == nil && fi.Mode().IsRegular()
}

// serveIndex writes index.html uncached so a new build is picked up on the
// next navigation.
func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(h.dir, "index.html")
	f, err := os.Open(index)
	if err != nil {
		jsonutil.NotFound(w, "Not found")
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		jsonutil.NotFound(w, "Not found")
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, "index.html", fi.ModTime(), f)
}
