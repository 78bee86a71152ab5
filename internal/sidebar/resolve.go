package sidebar

import (
	"net/url"

	"github.com/ziadkadry99/sidenav/internal/dom"
	"github.com/ziadkadry99/sidenav/internal/nav"
)

// markActivePath walks every anchor once, in document order. Each anchor
// has its href rewritten against the root prefix; the first anchor whose
// resolved href is the current document becomes active and its ancestor
// sections are expanded.
func (h *Handle) markActivePath() dom.Element {
	current := nav.Normalize(h.cfg.Location, h.cfg.DefaultDocument)

	var active dom.Element
	for i, link := range h.mount.QueryAll("a") {
		href, ok := h.rewriteLink(link)
		if active != nil {
			continue
		}
		if (ok && h.matches(href, current)) || h.firstNodeAliasesIndex(i, current) {
			active = link
			link.AddClass(h.cfg.ActiveClass)
			h.expandAncestors(link)
		}
	}
	return active
}

// rewriteLink prefixes a relative href with the root prefix and returns the
// href the anchor now carries. It reports false for anchors without an href.
func (h *Handle) rewriteLink(link dom.Element) (string, bool) {
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return "", false
	}
	if _, done := link.Attr(rewrittenAttr); done || !nav.IsRewritable(href) {
		return href, true
	}
	href = nav.Rewrite(h.cfg.RootPrefix, href)
	link.SetAttr("href", href)
	link.SetAttr(rewrittenAttr, "")
	return href, true
}

func (h *Handle) matches(href string, current *url.URL) bool {
	resolved, err := nav.Resolve(h.cfg.Location, href)
	if err != nil {
		return false
	}
	return nav.Same(resolved, current)
}

// firstNodeAliasesIndex: on the root index page the first chapter is shown,
// so the first link in the tree is active there even though its href names
// a different document.
func (h *Handle) firstNodeAliasesIndex(i int, current *url.URL) bool {
	return i == 0 && h.cfg.RootPrefix == "" && nav.IsDefaultDocument(current, h.cfg.DefaultDocument)
}

// expandAncestors opens every section on the path to link. A section's
// children sit in the list item right after the section's own item, so for
// each enclosing li the preceding chapter item is the section to expand.
func (h *Handle) expandAncestors(link dom.Element) {
	parent := link.Parent()
	if parent != nil && parent.HasClass(h.cfg.ItemClass) {
		parent.AddClass(h.cfg.ExpandedClass)
	}
	for p := parent; p != nil && !dom.Same(p, h.mount); p = p.Parent() {
		if p.TagName() != "LI" {
			continue
		}
		if prev := p.PreviousElementSibling(); prev != nil && prev.HasClass(h.cfg.ItemClass) {
			prev.AddClass(h.cfg.ExpandedClass)
		}
	}
}
