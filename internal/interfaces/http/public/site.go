package public

import (
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/crewjam/csp"
)

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".ico":  "image/x-icon",
}

// Site serves files below a public directory.
type Site struct {
	root   string
	policy string
	logger *log.Logger
}

// NewSite returns a static file handler rooted at dir. siteURL, when set,
// adds its host to the Content-Security-Policy default-src.
func NewSite(dir, siteURL string, logger *log.Logger) *Site {
	root, err := filepath.Abs(dir)
	if err != nil {
		root = filepath.Clean(dir)
	}
	return &Site{
		root:   root,
		policy: contentSecurityPolicy(siteURL, logger),
		logger: logger,
	}
}

func contentSecurityPolicy(siteURL string, logger *log.Logger) string {
	sources := []string{"'self'"}
	if siteURL = strings.TrimSpace(siteURL); siteURL != "" {
		u, err := url.Parse(siteURL)
		switch {
		case err != nil:
			if logger != nil {
				logger.Printf("SITE_URL を CSP に反映できません: %v", err)
			}
		case u.Hostname() != "":
			sources = append(sources, u.Hostname())
		}
	}
	return csp.Header{DefaultSrc: sources}.String()
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := r.URL.Path
	if name == "/" || name == "" {
		name = "/index.html"
	}

	fullPath := filepath.Join(s.root, filepath.FromSlash(name))
	if fullPath != s.root && !strings.HasPrefix(fullPath, s.root+string(filepath.Separator)) {
		writeText(w, http.StatusForbidden, "Access denied")
		return
	}

	f, err := os.Open(fullPath)
	if err != nil {
		writeText(w, http.StatusNotFound, "Not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		writeText(w, http.StatusNotFound, "Not found")
		return
	}

	ext := strings.ToLower(filepath.Ext(fullPath))
	contentType, ok := contentTypes[ext]
	if !ok {
		contentType = "application/octet-stream"
	}
	cache := "public, max-age=31536000, immutable"
	if ext == ".html" {
		cache = "no-cache"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cache)
	w.Header().Set("Content-Security-Policy", s.policy)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
