package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/sidenav/internal/dom/htmldom"
	"github.com/ziadkadry99/sidenav/internal/session"
	"github.com/ziadkadry99/sidenav/internal/site"
)

// ScrollPath receives the sidebar offset when a link is followed.
const ScrollPath = "/_sidenav/scroll"

type scrollRequest struct {
	Offset *float64 `json:"offset"`
}

// handleScroll stores the posted offset in the session's one-shot slot.
func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	id, _ := session.FromContext(r.Context())

	var req scrollRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Offset == nil || math.IsNaN(*req.Offset) || math.IsInf(*req.Offset, 0) {
		http.Error(w, "offset is required", http.StatusBadRequest)
		return
	}

	value := strconv.Itoa(int(math.Round(*req.Offset)))
	if err := s.sessions.Set(r.Context(), id, s.cfg.StorageKey, value); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSite serves files from the site directory. Matching HTML pages get
// the sidebar rendered in, consuming the session's scroll slot.
func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
	if rel == "" || strings.HasSuffix(r.URL.Path, "/") {
		rel = path.Join(rel, s.cfg.DefaultDocument)
	}

	full := filepath.Join(s.cfg.SiteDir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() || !site.Match(rel, s.cfg.Include, s.cfg.Exclude) {
		http.FileServer(http.Dir(s.cfg.SiteDir)).ServeHTTP(w, r)
		return
	}

	body, err := s.renderPage(r, full, rel)
	if errors.Is(err, htmldom.ErrNoMount) {
		http.ServeFile(w, r, full)
		return
	}
	if err != nil {
		log.Printf("rendering %s: %v", rel, err)
		http.Error(w, "rendering page failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) renderPage(r *http.Request, full, rel string) ([]byte, error) {
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	id, _ := session.FromContext(r.Context())
	page, err := s.renderer.RenderPage(f, rel, s.sessions.Scope(r.Context(), id))
	if err != nil {
		return nil, err
	}
	if err := page.InjectScript(s.renderer.Script(ScrollPath)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
