// Package toc reads table-of-contents markup into a tree of Nodes.
//
// The markup follows mdBook's sidebar layout: an ol.chapter whose
// li.chapter-item entries hold the links, where a section's children live in
// an ol.section inside the list item that follows the section's own item.
// Items that nest their child list directly are understood as well.
package toc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Kind classifies a Node.
type Kind string

const (
	KindRoot    Kind = "root"
	KindChapter Kind = "chapter"
	KindPart    Kind = "part"
)

// Node is one table-of-contents entry.
type Node struct {
	Kind     Kind    `json:"kind"`
	Label    string  `json:"label"`
	Number   string  `json:"number,omitempty"`
	Href     string  `json:"href,omitempty"`
	Expanded bool    `json:"expanded"`
	Active   bool    `json:"active,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Draft reports whether the entry has no target document yet.
func (n *Node) Draft() bool { return n.Kind == KindChapter && n.Href == "" }

// Parse builds the tree described by markup.
func Parse(markup string) (*Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing toc markup: %w", err)
	}
	root := &Node{Kind: KindRoot, Expanded: true}

	lists := doc.Find("body").ChildrenFiltered("ol, ul")
	if lists.Length() == 0 {
		return nil, fmt.Errorf("parsing toc markup: no top-level list")
	}
	lists.Each(func(_ int, list *goquery.Selection) {
		root.Children = append(root.Children, parseList(list)...)
	})
	return root, nil
}

func parseList(list *goquery.Selection) []*Node {
	var nodes []*Node
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		switch {
		case li.HasClass("spacer"):
			return
		case li.HasClass("part-title"):
			nodes = append(nodes, &Node{Kind: KindPart, Label: clean(li.Text())})
			return
		}

		sub := li.ChildrenFiltered("ol, ul")
		label := li.ChildrenFiltered("a, div, span").Not(".toggle").First()

		if label.Length() == 0 {
			// a holder for the children of the previous entry
			if sub.Length() > 0 && len(nodes) > 0 {
				prev := nodes[len(nodes)-1]
				sub.Each(func(_ int, s *goquery.Selection) {
					prev.Children = append(prev.Children, parseList(s)...)
				})
			}
			return
		}

		n := &Node{
			Kind:     KindChapter,
			Expanded: li.HasClass("expanded"),
			Active:   label.HasClass("active"),
			Number:   strings.TrimSpace(label.Find("strong").First().Text()),
		}
		if goquery.NodeName(label) == "a" {
			n.Href, _ = label.Attr("href")
		}
		text := label.Clone()
		text.Find("strong").Remove()
		n.Label = clean(text.Text())

		sub.Each(func(_ int, s *goquery.Selection) {
			n.Children = append(n.Children, parseList(s)...)
		})
		nodes = append(nodes, n)
	})
	return nodes
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Walk visits every node below n depth-first in document order. depth is 1
// for n's direct children. Returning false from fn skips a node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	var walk func(*Node, int)
	walk = func(parent *Node, depth int) {
		for _, c := range parent.Children {
			if fn(c, depth) {
				walk(c, depth+1)
			}
		}
	}
	walk(n, 1)
}

// Len returns the number of nodes below n.
func (n *Node) Len() int {
	count := 0
	n.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Path returns the nodes from the top level down to the first node whose
// href equals href, or nil when there is none.
func (n *Node) Path(href string) []*Node {
	return n.pathTo(func(c *Node) bool { return c.Href != "" && c.Href == href })
}

// ActivePath is Path for the node marked active.
func (n *Node) ActivePath() []*Node {
	return n.pathTo(func(c *Node) bool { return c.Active })
}

func (n *Node) pathTo(match func(*Node) bool) []*Node {
	for _, c := range n.Children {
		if match(c) {
			return []*Node{c}
		}
		if rest := c.pathTo(match); rest != nil {
			return append([]*Node{c}, rest...)
		}
	}
	return nil
}

// Hrefs lists every target in document order.
func (n *Node) Hrefs() []string {
	var out []string
	n.Walk(func(c *Node, _ int) bool {
		if c.Href != "" {
			out = append(out, c.Href)
		}
		return true
	})
	return out
}
