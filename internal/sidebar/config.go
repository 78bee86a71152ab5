// Package sidebar attaches the table-of-contents sidebar to a mount point:
// it materializes the TOC markup, marks the current page, rewrites relative
// links, restores the scroll offset and wires the section toggles.
package sidebar

import (
	"errors"
	"log"
	"net/url"

	"github.com/ziadkadry99/sidenav/internal/dom"
	"github.com/ziadkadry99/sidenav/internal/nav"
)

// Defaults for Config fields left empty.
const (
	DefaultStorageKey     = "sidebar-scroll"
	DefaultActiveClass    = "active"
	DefaultExpandedClass  = "expanded"
	DefaultItemClass      = "chapter-item"
	DefaultToggleSelector = "a.toggle"
)

// rewrittenAttr marks anchors whose href already carries the root prefix.
const rewrittenAttr = "data-rewritten"

var (
	// ErrNoMount is returned by Attach when the mount point is nil.
	ErrNoMount = errors.New("sidebar: nil mount point")
	// ErrNoLocation is returned by Attach when Config.Location is nil.
	ErrNoLocation = errors.New("sidebar: current location is required")
)

// Mount is the element the sidebar is rendered into. It owns the scroll
// position of the sidebar.
type Mount interface {
	dom.Element
	// SetInnerHTML replaces all children with the parsed markup.
	SetInnerHTML(markup string) error
	ScrollTop() int
	SetScrollTop(v int)
	// CenterOn scrolls so that el is vertically centered in the mount.
	CenterOn(el dom.Element)
}

// Config is supplied by the page that hosts the sidebar and stays fixed for
// the lifetime of a Handle.
type Config struct {
	// Markup is the pre-built TOC markup.
	Markup string
	// RootPrefix leads from the current page back to the site root, e.g.
	// "../../". Empty on root-level pages.
	RootPrefix string
	// Location is the address of the displayed document.
	Location *url.URL
	// Storage holds the one-shot scroll offset. Nil disables scroll
	// persistence; the active node is still centered.
	Storage Storage

	StorageKey      string
	DefaultDocument string
	ActiveClass     string
	ExpandedClass   string
	ItemClass       string
	ToggleSelector  string

	// Logger receives storage failures. Defaults to log.Default().
	Logger *log.Logger
}

func (c Config) withDefaults() Config {
	if c.StorageKey == "" {
		c.StorageKey = DefaultStorageKey
	}
	if c.DefaultDocument == "" {
		c.DefaultDocument = nav.DefaultDocument
	}
	if c.ActiveClass == "" {
		c.ActiveClass = DefaultActiveClass
	}
	if c.ExpandedClass == "" {
		c.ExpandedClass = DefaultExpandedClass
	}
	if c.ItemClass == "" {
		c.ItemClass = DefaultItemClass
	}
	if c.ToggleSelector == "" {
		c.ToggleSelector = DefaultToggleSelector
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}
