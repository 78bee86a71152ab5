// Package nav normalizes document locations and rewrites table-of-contents
// links so they resolve from any page depth.
package nav

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultDocument is served for directory addresses.
const DefaultDocument = "index.html"

// qualified matches hrefs that carry a scheme ("https:", "mailto:") or are
// protocol-relative ("//cdn.example.com").
var qualified = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9+.\-]*:|//)`)

// Normalize returns a copy of loc without query or fragment. A directory
// path (empty or ending in "/") gets defaultDoc appended.
func Normalize(loc *url.URL, defaultDoc string) *url.URL {
	if defaultDoc == "" {
		defaultDoc = DefaultDocument
	}
	u := *loc
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	if u.Opaque == "" && (u.Path == "" || strings.HasSuffix(u.Path, "/")) {
		if u.Path == "" {
			u.Path = "/"
		}
		u.Path += defaultDoc
		u.RawPath = ""
	}
	return &u
}

// ParseLocation parses and normalizes a document address.
func ParseLocation(raw, defaultDoc string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing location %q: %w", raw, err)
	}
	return Normalize(u, defaultDoc), nil
}

// IsRewritable reports whether href is a relative link that needs the root
// prefix. Empty, fragment-only, scheme-qualified, protocol-relative and
// unparseable hrefs are left alone.
func IsRewritable(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") || qualified.MatchString(href) {
		return false
	}
	_, err := url.Parse(href)
	return err == nil
}

// Rewrite prepends prefix to href when IsRewritable, and returns href
// unchanged otherwise.
func Rewrite(prefix, href string) string {
	if !IsRewritable(href) {
		return href
	}
	return prefix + href
}

// Resolve resolves href against base the way a browser computes an
// anchor's href property. The fragment of href is kept.
func Resolve(base *url.URL, href string) (*url.URL, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(ref), nil
}

// Same reports whether a and b address the same document, comparing their
// serialized forms.
func Same(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return a.String() == b.String()
}

// IsDefaultDocument reports whether loc names defaultDoc in some directory.
func IsDefaultDocument(loc *url.URL, defaultDoc string) bool {
	if defaultDoc == "" {
		defaultDoc = DefaultDocument
	}
	return strings.HasSuffix(loc.Path, "/"+defaultDoc)
}

// RootPrefix returns the relative prefix that leads from a page at relPath
// (slash separated, relative to the site root) back to the root: "" for
// "index.html", "../" for "guide/index.html", and so on.
func RootPrefix(relPath string) string {
	relPath = strings.TrimPrefix(relPath, "/")
	return strings.Repeat("../", strings.Count(relPath, "/"))
}
