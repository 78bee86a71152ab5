package site

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"strconv"

	"github.com/ziadkadry99/sidenav/internal/config"
	"github.com/ziadkadry99/sidenav/internal/dom/htmldom"
	"github.com/ziadkadry99/sidenav/internal/nav"
	"github.com/ziadkadry99/sidenav/internal/sidebar"
)

// Attributes set on the mount to tell the browser how to scroll.
const (
	AttrScrollTop    = "data-scroll-top"
	AttrScrollCenter = "data-scroll-center"
)

// Renderer attaches the sidebar to the pages of one site.
type Renderer struct {
	cfg    *config.Config
	markup string
	base   *url.URL
	logger *log.Logger
}

// NewRenderer returns a Renderer for pages served under base, which must
// end in a slash (e.g. "file:///srv/book/" or "http://localhost:3000/").
func NewRenderer(cfg *config.Config, markup string, base *url.URL, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{cfg: cfg, markup: markup, base: base, logger: logger}
}

// Page is one HTML document with the sidebar attached.
type Page struct {
	RelPath  string
	Location *url.URL
	Doc      *htmldom.Document
	Mount    *htmldom.Mount
	Handle   *sidebar.Handle
}

// Location returns the address of relPath under the site base.
func (r *Renderer) Location(relPath string) *url.URL {
	return r.base.ResolveReference(&url.URL{Path: relPath})
}

// RenderPage parses the page read from rd and attaches the sidebar to its
// mount point. The scroll slot is read from store. The returned error wraps
// htmldom.ErrNoMount when the page has no mount point.
func (r *Renderer) RenderPage(rd io.Reader, relPath string, store sidebar.Storage) (*Page, error) {
	doc, err := htmldom.Parse(rd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", relPath, err)
	}
	mount, err := doc.Mount(r.cfg.MountSelector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", relPath, err)
	}
	mount.RowHeight = r.cfg.Layout.RowHeight
	mount.ViewportHeight = r.cfg.Layout.ViewportHeight

	loc := r.Location(relPath)
	sc := r.cfg.Sidebar(r.markup, nav.RootPrefix(relPath), loc, store)
	sc.Logger = r.logger
	mount.ItemClass, mount.ExpandedClass = sc.ItemClass, sc.ExpandedClass
	h, err := sidebar.Attach(mount, sc)
	if err != nil {
		return nil, fmt.Errorf("%s: attaching sidebar: %w", relPath, err)
	}
	// Listeners only matter to an interactive document.
	h.Detach()

	p := &Page{RelPath: relPath, Location: loc, Doc: doc, Mount: mount, Handle: h}
	p.annotate()
	return p, nil
}

// annotate records the scroll outcome on the mount: a restored offset as
// data-scroll-top, otherwise data-scroll-center holding the offset that
// centers the active entry (0 when the layout is unknown).
func (p *Page) annotate() {
	p.Mount.RemoveAttr(AttrScrollTop)
	p.Mount.RemoveAttr(AttrScrollCenter)
	if top, ok := p.Mount.Restored(); ok {
		p.Mount.SetAttr(AttrScrollTop, strconv.Itoa(top))
		return
	}
	if p.Mount.Centered() != nil {
		p.Mount.SetAttr(AttrScrollCenter, strconv.Itoa(p.Mount.ScrollTop()))
	}
}

// Render writes the page.
func (p *Page) Render(w io.Writer) error {
	return p.Doc.Render(w)
}
