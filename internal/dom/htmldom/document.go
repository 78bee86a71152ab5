// Package htmldom is an in-memory dom backend over golang.org/x/net/html.
// Selectors are evaluated with goquery; events bubble from target to root
// the way a browser dispatches them.
package htmldom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/sidenav/internal/dom"
)

// Document owns a parsed node tree and the listeners registered on it.
type Document struct {
	root      *html.Node
	listeners map[*html.Node][]*registration
}

type registration struct {
	eventType string
	fn        dom.Listener
}

// Parse reads a complete HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return newDocument(root), nil
}

// ParseString is Parse for an in-memory page.
func ParseString(page string) (*Document, error) {
	return Parse(strings.NewReader(page))
}

func newDocument(root *html.Node) *Document {
	return &Document{
		root:      root,
		listeners: make(map[*html.Node][]*registration),
	}
}

// Find returns the first element matching selector, or nil.
func (d *Document) Find(selector string) dom.Element {
	sel := goquery.NewDocumentFromNode(d.root).Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return d.wrap(sel.Get(0))
}

// QueryAll returns every element matching selector in document order.
func (d *Document) QueryAll(selector string) []dom.Element {
	return d.queryAll(d.root, selector)
}

// Mount wraps the first element matching selector as a sidebar mount point.
// Geometry is unknown until RowHeight and ViewportHeight are set.
func (d *Document) Mount(selector string) (*Mount, error) {
	sel := goquery.NewDocumentFromNode(d.root).Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMount, selector)
	}
	return &Mount{Element: &Element{doc: d, n: sel.Get(0)}}, nil
}

// AppendHTML parses markup in the context of the first element matching
// selector and appends the result to its children.
func (d *Document) AppendHTML(selector, markup string) error {
	sel := goquery.NewDocumentFromNode(d.root).Find(selector)
	if sel.Length() == 0 {
		return fmt.Errorf("append to %s: no such element", selector)
	}
	parent := sel.Get(0)
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nil
}

// RemoveAll detaches every element matching selector, with its listeners,
// and returns how many were removed.
func (d *Document) RemoveAll(selector string) int {
	nodes := goquery.NewDocumentFromNode(d.root).Find(selector).Nodes
	for _, n := range nodes {
		if n.Parent == nil {
			continue
		}
		d.forget(n)
		n.Parent.RemoveChild(n)
	}
	return len(nodes)
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning "" on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Dispatch sends an event of the given type to target and bubbles it up
// through every ancestor. Listeners added or removed during dispatch take
// effect from the next node on.
func (d *Document) Dispatch(target dom.Element, eventType string) {
	start := nodeOf(target)
	if start == nil {
		return
	}
	ev := dom.Event{Type: eventType, Target: d.wrap(start)}
	for n := start; n != nil; n = n.Parent {
		regs := append([]*registration(nil), d.listeners[n]...)
		for _, reg := range regs {
			if reg.eventType != eventType || !d.registered(n, reg) {
				continue
			}
			ev.CurrentTarget = &Element{doc: d, n: n}
			reg.fn(ev)
		}
	}
}

// Click dispatches a click on target.
func (d *Document) Click(target dom.Element) {
	d.Dispatch(target, "click")
}

// ListenerCount reports how many listeners are registered anywhere in the
// document.
func (d *Document) ListenerCount() int {
	total := 0
	for _, regs := range d.listeners {
		total += len(regs)
	}
	return total
}

func (d *Document) registered(n *html.Node, reg *registration) bool {
	for _, r := range d.listeners[n] {
		if r == reg {
			return true
		}
	}
	return false
}

func (d *Document) addListener(n *html.Node, eventType string, fn dom.Listener) func() {
	reg := &registration{eventType: eventType, fn: fn}
	d.listeners[n] = append(d.listeners[n], reg)
	return func() {
		regs := d.listeners[n]
		for i, r := range regs {
			if r == reg {
				d.listeners[n] = append(regs[:i:i], regs[i+1:]...)
				break
			}
		}
		if len(d.listeners[n]) == 0 {
			delete(d.listeners, n)
		}
	}
}

// forget drops listeners registered on n and its descendants.
func (d *Document) forget(n *html.Node) {
	delete(d.listeners, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

func (d *Document) queryAll(n *html.Node, selector string) []dom.Element {
	nodes := goquery.NewDocumentFromNode(n).Find(selector).Nodes
	out := make([]dom.Element, 0, len(nodes))
	for _, m := range nodes {
		out = append(out, &Element{doc: d, n: m})
	}
	return out
}

// wrap returns an untyped nil for a nil node so callers can compare the
// interface against nil.
func (d *Document) wrap(n *html.Node) dom.Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, n: n}
}
