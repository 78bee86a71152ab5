package htmldom

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/sidenav/internal/dom"
)

// ErrNoMount is returned when the mount selector matches nothing.
var ErrNoMount = errors.New("mount point not found")

// Mount is a scrollable container element.
//
// Scroll geometry is a row layout: every visible li holding a direct link
// is one row of RowHeight pixels, stacked in document order. A list item is
// hidden when an enclosing li is a collapsed item, or when an enclosing
// holder li (one that is neither an item nor holds a link) directly follows
// a collapsed item. With ViewportHeight zero the geometry is unknown:
// offsets are stored as given and CenterOn only records its target.
type Mount struct {
	*Element

	RowHeight      int
	ViewportHeight int
	// ItemClass and ExpandedClass name the classes that mark an entry and
	// its open state. Empty means "chapter-item" and "expanded".
	ItemClass     string
	ExpandedClass string

	scrollTop int
	scrollSet bool
	centered  *html.Node
}

// SetInnerHTML replaces the children of the mount with the parsed markup.
func (m *Mount) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), m.n)
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	for c := m.n.FirstChild; c != nil; {
		next := c.NextSibling
		m.doc.forget(c)
		m.n.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		m.n.AppendChild(n)
	}
	m.centered = nil
	return nil
}

func (m *Mount) ScrollTop() int { return m.scrollTop }

func (m *Mount) SetScrollTop(v int) {
	m.scrollTop = m.clamp(v)
	m.scrollSet = true
}

// CenterOn scrolls so the row holding el sits in the vertical middle of the
// viewport.
func (m *Mount) CenterOn(el dom.Element) {
	n := nodeOf(el)
	if n == nil {
		return
	}
	m.centered = n
	if m.ViewportHeight <= 0 || m.RowHeight <= 0 {
		return
	}
	top := max(m.rowIndex(n), 0) * m.RowHeight
	m.scrollTop = m.clamp(top + m.RowHeight/2 - m.ViewportHeight/2)
}

// Restored reports whether SetScrollTop was called, and the offset.
func (m *Mount) Restored() (int, bool) { return m.scrollTop, m.scrollSet }

// Centered returns the element last passed to CenterOn, or nil.
func (m *Mount) Centered() dom.Element { return m.doc.wrap(m.centered) }

// ContentHeight is the height of all visible rows.
func (m *Mount) ContentHeight() int {
	return len(m.rows()) * m.RowHeight
}

// RowTop returns the offset of the row holding el, or -1 when el is not in
// a visible row.
func (m *Mount) RowTop(el dom.Element) int {
	n := nodeOf(el)
	if n == nil {
		return -1
	}
	idx := m.rowIndex(n)
	if idx < 0 {
		return -1
	}
	return idx * m.RowHeight
}

func (m *Mount) clamp(v int) int {
	if v < 0 {
		return 0
	}
	if m.ViewportHeight > 0 && m.RowHeight > 0 {
		if limit := m.ContentHeight() - m.ViewportHeight; v > limit {
			if limit < 0 {
				return 0
			}
			return limit
		}
	}
	return v
}

func (m *Mount) rowIndex(n *html.Node) int {
	li := n
	for li != nil && !(li.Type == html.ElementNode && li.Data == "li") {
		li = li.Parent
	}
	for i, r := range m.rows() {
		if r == li {
			return i
		}
	}
	return -1
}

func (m *Mount) rows() []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data == "li" {
				if m.hidden(c) {
					continue
				}
				if hasDirectLink(c) {
					rows = append(rows, c)
				}
			}
			walk(c)
		}
	}
	walk(m.n)
	return rows
}

func (m *Mount) hidden(li *html.Node) bool {
	for p := li; p != nil && p != m.n; p = p.Parent {
		if p.Type != html.ElementNode || p.Data != "li" {
			continue
		}
		if p != li && m.collapsed(p) {
			return true
		}
		if m.holder(p) {
			prev := (&Element{doc: m.doc, n: p}).PreviousElementSibling()
			if e, ok := prev.(*Element); ok && e != nil && m.collapsed(e.n) {
				return true
			}
		}
	}
	return false
}

// collapsed reports whether li is an item without the expanded class.
func (m *Mount) collapsed(li *html.Node) bool {
	e := &Element{doc: m.doc, n: li}
	return e.HasClass(m.itemClass()) && !e.HasClass(m.expandedClass())
}

// holder reports whether li only carries the child list of the item
// before it.
func (m *Mount) holder(li *html.Node) bool {
	e := &Element{doc: m.doc, n: li}
	return !e.HasClass(m.itemClass()) && !hasDirectLink(li)
}

func (m *Mount) itemClass() string {
	if m.ItemClass == "" {
		return "chapter-item"
	}
	return m.ItemClass
}

func (m *Mount) expandedClass() string {
	if m.ExpandedClass == "" {
		return "expanded"
	}
	return m.ExpandedClass
}

func hasDirectLink(li *html.Node) bool {
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "a" {
			return true
		}
	}
	return false
}
