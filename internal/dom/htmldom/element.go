package htmldom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/sidenav/internal/dom"
)

// Element is a dom.Element backed by an *html.Node.
type Element struct {
	doc *Document
	n   *html.Node
}

var _ dom.Element = (*Element)(nil)

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node {
	if e == nil {
		return nil
	}
	return e.n
}

// nodeOf unwraps any htmldom-backed element, including a *Mount.
func nodeOf(el dom.Element) *html.Node {
	if el == nil {
		return nil
	}
	if w, ok := el.(interface{ Node() *html.Node }); ok {
		return w.Node()
	}
	return nil
}

func (e *Element) TagName() string { return strings.ToUpper(e.n.Data) }

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) SetAttr(name, value string) {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes the attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			e.n.Attr = append(e.n.Attr[:i], e.n.Attr[i+1:]...)
			return
		}
	}
}

func (e *Element) classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

func (e *Element) HasClass(name string) bool {
	for _, c := range e.classes() {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.classes(), name), " "))
}

func (e *Element) ToggleClass(name string) bool {
	cs := e.classes()
	kept := cs[:0]
	found := false
	for _, c := range cs {
		if c == name {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		kept = append(kept, name)
	}
	e.SetAttr("class", strings.Join(kept, " "))
	return !found
}

func (e *Element) Parent() dom.Element {
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

func (e *Element) PreviousElementSibling() dom.Element {
	for s := e.n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return e.doc.wrap(s)
		}
	}
	return nil
}

func (e *Element) QueryAll(selector string) []dom.Element {
	return e.doc.queryAll(e.n, selector)
}

func (e *Element) AddEventListener(eventType string, fn dom.Listener) func() {
	return e.doc.addListener(e.n, eventType, fn)
}

// SameAs reports whether other wraps the same node.
func (e *Element) SameAs(other dom.Element) bool {
	n := nodeOf(other)
	return n != nil && n == e.n
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.n)
	return b.String()
}

// OuterHTML renders the element and its subtree.
func (e *Element) OuterHTML() string {
	var b strings.Builder
	if err := html.Render(&b, e.n); err != nil {
		return ""
	}
	return b.String()
}

// InnerHTML renders only the children.
func (e *Element) InnerHTML() string {
	var b strings.Builder
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return ""
		}
	}
	return b.String()
}
