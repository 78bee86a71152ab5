package sidebar

import (
	"bytes"
	"errors"
	"log"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/sidenav/internal/dom"
	"github.com/ziadkadry99/sidenav/internal/dom/htmldom"
)

const page = `<!DOCTYPE html><html><body>
<nav id="sidebar"><mdbook-sidebar-scrollbox class="sidebar-scrollbox"><p>stale</p></mdbook-sidebar-scrollbox></nav>
<main>content</main>
</body></html>`

const smallTOC = `<ol class="chapter">` +
	`<li class="chapter-item"><a href="index.html">Intro</a></li>` +
	`<li class="chapter-item"><a href="guide/index.html">Guide</a><a class="toggle"><div>❱</div></a></li>` +
	`<li><ol class="section">` +
	`<li class="chapter-item"><a href="guide/install.html">Install</a></li>` +
	`</ol></li>` +
	`<li class="chapter-item"><a href="reference.html">Reference</a><a class="toggle"><div>❱</div></a></li>` +
	`<li><ol class="section">` +
	`<li class="chapter-item"><a href="reference/api.html">API</a></li>` +
	`</ol></li>` +
	`<li class="chapter-item"><a href="https://github.com/example/repo">Source</a></li>` +
	`<li class="chapter-item"><a href="//cdn.example.com/changelog.html">Changelog</a></li>` +
	`<li class="chapter-item"><a href="#top">Top</a></li>` +
	`<li class="chapter-item draft"><a>Draft chapter</a></li>` +
	`</ol>`

type fixture struct {
	doc    *htmldom.Document
	mount  *htmldom.Mount
	handle *Handle
	store  *MemStorage
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func loadTOC(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/toc.html")
	require.NoError(t, err)
	return string(data)
}

func attach(t *testing.T, markup, location, prefix string, setup func(*fixture)) *fixture {
	t.Helper()
	doc, err := htmldom.ParseString(page)
	require.NoError(t, err)
	mount, err := doc.Mount("mdbook-sidebar-scrollbox")
	require.NoError(t, err)

	f := &fixture{doc: doc, mount: mount, store: NewMemStorage()}
	if setup != nil {
		setup(f)
	}
	h, err := Attach(mount, Config{
		Markup:     markup,
		RootPrefix: prefix,
		Location:   mustURL(t, location),
		Storage:    f.store,
	})
	require.NoError(t, err)
	f.handle = h
	return f
}

// link finds the anchor whose text ends with label.
func (f *fixture) link(t *testing.T, label string) *htmldom.Element {
	t.Helper()
	for _, el := range f.mount.QueryAll("a") {
		e := el.(*htmldom.Element)
		if strings.HasSuffix(strings.TrimSpace(e.Text()), label) {
			return e
		}
	}
	t.Fatalf("no link labelled %q", label)
	return nil
}

func (f *fixture) item(t *testing.T, label string) dom.Element {
	t.Helper()
	return f.link(t, label).Parent()
}

func TestAttachReplacesMountContent(t *testing.T) {
	f := attach(t, smallTOC, "https://docs.example.com/index.html", "", nil)
	inner := f.mount.InnerHTML()
	assert.NotContains(t, inner, "stale")
	assert.True(t, strings.HasPrefix(inner, `<ol class="chapter">`))
	assert.Contains(t, f.doc.String(), "<main>content</main>")
}

func TestNestedPageScenario(t *testing.T) {
	f := attach(t, smallTOC, "https://docs.example.com/guide/install.html", "../../", nil)

	install := f.link(t, "Install")
	assert.True(t, install.HasClass("active"))
	assert.True(t, f.handle.Active().(*htmldom.Element).SameAs(install))
	assert.True(t, f.item(t, "Guide").HasClass("expanded"), "guide section should be expanded")
	assert.True(t, f.item(t, "Install").HasClass("expanded"))
	assert.False(t, f.item(t, "Reference").HasClass("expanded"), "unrelated section should keep its static state")

	hrefs := map[string]string{
		"Intro":     "../../index.html",
		"Guide":     "../../guide/index.html",
		"Install":   "../../guide/install.html",
		"API":       "../../reference/api.html",
		"Source":    "https://github.com/example/repo",
		"Changelog": "//cdn.example.com/changelog.html",
		"Top":       "#top",
	}
	for label, want := range hrefs {
		got, _ := f.link(t, label).Attr("href")
		assert.Equal(t, want, got, label)
	}
	_, hasHref := f.link(t, "Draft chapter").Attr("href")
	assert.False(t, hasHref)
}

func TestActivePathInDeepTree(t *testing.T) {
	toc := loadTOC(t)
	f := attach(t, toc, "https://example.github.io/book/user-guide/quickstart/install.html", "../../", nil)

	install := f.link(t, "Install")
	assert.True(t, install.HasClass("active"))
	assert.Equal(t, "../../user-guide/quickstart/install.html", mustAttr(t, install, "href"))

	for _, label := range []string{"User Guide", "Quickstart", "Install"} {
		assert.True(t, f.item(t, label).HasClass("expanded"), label)
	}
	for _, label := range []string{"Introduction", "Usage", "Commands", "Development", "Components"} {
		assert.False(t, f.item(t, label).HasClass("expanded"), label)
	}
	assert.Len(t, f.mount.QueryAll("a.active"), 1)
}

func TestEveryNodeResolvesFromItsOwnPage(t *testing.T) {
	toc := loadTOC(t)
	probe := attach(t, toc, "https://example.github.io/book/index.html", "", nil)
	var pages []string
	for _, a := range probe.mount.QueryAll("a") {
		href, _ := a.Attr("href")
		pages = append(pages, href)
	}
	require.NotEmpty(t, pages)

	for _, rel := range pages {
		prefix := strings.Repeat("../", strings.Count(rel, "/"))
		f := attach(t, toc, "https://example.github.io/book/"+rel, prefix, nil)
		active := f.mount.QueryAll("a.active")
		require.Len(t, active, 1, rel)
		assert.Equal(t, prefix+rel, mustAttr(t, active[0], "href"), rel)

		// every enclosing section is open
		for p := active[0].Parent(); p != nil && !dom.Same(p, f.mount); p = p.Parent() {
			if p.TagName() != "LI" {
				continue
			}
			if prev := p.PreviousElementSibling(); prev != nil && prev.HasClass("chapter-item") {
				assert.True(t, prev.HasClass("expanded"), "%s: ancestor of active node collapsed", rel)
			}
		}
	}
}

func TestOnlyFirstMatchIsActive(t *testing.T) {
	markup := `<ol class="chapter">` +
		`<li class="chapter-item"><a href="a.html">A</a></li>` +
		`<li class="chapter-item"><a href="b.html">B one</a></li>` +
		`<li class="chapter-item"><a href="b.html">B two</a></li>` +
		`</ol>`
	f := attach(t, markup, "https://x.test/b.html", "", nil)
	assert.Len(t, f.mount.QueryAll("a.active"), 1)
	assert.True(t, f.link(t, "B one").HasClass("active"))
	assert.False(t, f.link(t, "B two").HasClass("active"))
	assert.Equal(t, "b.html", mustAttr(t, f.link(t, "B two"), "href"), "links after the match are still rewritten")
}

func TestNoMatchLeavesStaticDefaults(t *testing.T) {
	f := attach(t, smallTOC, "https://docs.example.com/elsewhere/missing.html", "../", nil)
	assert.Nil(t, f.handle.Active())
	assert.Empty(t, f.mount.QueryAll(".active"))
	assert.Empty(t, f.mount.QueryAll(".expanded"))
	assert.Nil(t, f.mount.Centered())
	_, restored := f.mount.Restored()
	assert.False(t, restored)
}

func TestQueryAndFragmentIgnoredInLocation(t *testing.T) {
	f := attach(t, smallTOC, "https://docs.example.com/guide/install.html?theme=dark#step-2", "../", nil)
	assert.True(t, f.link(t, "Install").HasClass("active"))
}

func TestDirectoryLocationUsesDefaultDocument(t *testing.T) {
	f := attach(t, smallTOC, "https://docs.example.com/guide/", "../", nil)
	assert.True(t, f.link(t, "Guide").HasClass("active"))
}

func TestFragmentLinkNeverMatches(t *testing.T) {
	markup := `<ol class="chapter"><li class="chapter-item"><a href="x.html">X</a></li>` +
		`<li class="chapter-item"><a href="page.html#part">Part</a></li></ol>`
	f := attach(t, markup, "https://x.test/page.html", "", nil)
	assert.Nil(t, f.handle.Active())
}

func TestFirstNodeAliasesRootIndex(t *testing.T) {
	markup := `<ol class="chapter">` +
		`<li class="chapter-item"><a href="introduction.html">Introduction</a></li>` +
		`<li class="chapter-item"><a href="setup.html">Setup</a></li>` +
		`</ol>`

	f := attach(t, markup, "https://x.test/book/", "", nil)
	assert.True(t, f.link(t, "Introduction").HasClass("active"))

	f = attach(t, markup, "https://x.test/book/index.html", "", nil)
	assert.True(t, f.link(t, "Introduction").HasClass("active"))

	// only at the root: a nested index has a non-empty prefix
	f = attach(t, markup, "https://x.test/book/setup/index.html", "../", nil)
	assert.Nil(t, f.handle.Active())

	// and only for the default document
	f = attach(t, markup, "https://x.test/book/about.html", "", nil)
	assert.Nil(t, f.handle.Active())
}

func TestFirstNodeAliasDoesNotBeatEarlierMatch(t *testing.T) {
	markup := `<ol class="chapter">` +
		`<li class="chapter-item"><a href="index.html">Home</a></li>` +
		`<li class="chapter-item"><a href="other.html">Other</a></li>` +
		`</ol>`
	f := attach(t, markup, "https://x.test/index.html", "", nil)
	assert.Len(t, f.mount.QueryAll("a.active"), 1)
	assert.True(t, f.link(t, "Home").HasClass("active"))
}

func TestRewriteIsIdempotentOnLiveTree(t *testing.T) {
	f := attach(t, smallTOC, "https://docs.example.com/guide/install.html", "../", nil)
	before := f.mount.InnerHTML()

	f.handle.markActivePath()
	assert.Equal(t, before, f.mount.InnerHTML())
}

func TestReattachRematerializes(t *testing.T) {
	f := attach(t, smallTOC, "https://docs.example.com/guide/install.html", "../", nil)
	first := f.mount.InnerHTML()
	f.handle.Detach()

	h, err := Attach(f.mount, Config{
		Markup:     smallTOC,
		RootPrefix: "../",
		Location:   mustURL(t, "https://docs.example.com/guide/install.html"),
	})
	require.NoError(t, err)
	assert.Equal(t, first, f.mount.InnerHTML())
	assert.NotNil(t, h.Active())
}

func TestRestoreAppliesStoredOffsetOnce(t *testing.T) {
	f := attach(t, loadTOC(t), "https://x.test/book/user-guide/environments.html", "../", func(f *fixture) {
		require.NoError(t, f.store.Set(DefaultStorageKey, "240"))
	})

	top, restored := f.mount.Restored()
	assert.True(t, restored)
	assert.Equal(t, 240, top)
	assert.Nil(t, f.mount.Centered(), "a stored offset takes precedence over centering")

	_, ok, err := f.store.Get(DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "slot must be cleared after reading")
}

func TestRestoreRoundsFractionalOffsets(t *testing.T) {
	f := attach(t, smallTOC, "https://x.test/index.html", "", func(f *fixture) {
		_ = f.store.Set(DefaultStorageKey, " 12.6 ")
	})
	top, restored := f.mount.Restored()
	assert.True(t, restored)
	assert.Equal(t, 13, top)
}

func TestRestoreZeroIsAValue(t *testing.T) {
	f := attach(t, smallTOC, "https://x.test/guide/install.html", "../", func(f *fixture) {
		_ = f.store.Set(DefaultStorageKey, "0")
	})
	_, restored := f.mount.Restored()
	assert.True(t, restored)
	assert.Nil(t, f.mount.Centered())
}

func TestEmptyOrInvalidOffsetFallsBackToCentering(t *testing.T) {
	for _, raw := range []string{"", "NaN", "abc"} {
		f := attach(t, smallTOC, "https://x.test/guide/install.html", "../", func(f *fixture) {
			_ = f.store.Set(DefaultStorageKey, raw)
		})
		_, restored := f.mount.Restored()
		assert.False(t, restored, raw)
		assert.True(t, dom.Same(f.mount.Centered(), f.link(t, "Install")), raw)
		assert.Equal(t, 0, f.store.Len(), raw)
	}
}

func TestCentersActiveNodeWithoutStoredOffset(t *testing.T) {
	f := attach(t, loadTOC(t), "https://x.test/book/user-guide/quickstart/install.html", "../../", func(f *fixture) {
		f.mount.RowHeight = 20
		f.mount.ViewportHeight = 60
	})

	install := f.link(t, "Install")
	require.True(t, dom.Same(f.mount.Centered(), install))

	// rows: Introduction, User Guide, Quickstart, Install, Usage, Commands,
	// Environments, Development
	assert.Equal(t, 8*20, f.mount.ContentHeight())
	rowTop := f.mount.RowTop(install)
	assert.Equal(t, 60, rowTop)
	assert.Equal(t, rowTop+20/2-60/2, f.mount.ScrollTop())
}

func TestCenteringClampsAtTop(t *testing.T) {
	f := attach(t, smallTOC, "https://x.test/index.html", "", func(f *fixture) {
		f.mount.RowHeight = 20
		f.mount.ViewportHeight = 100
	})
	assert.True(t, dom.Same(f.mount.Centered(), f.link(t, "Intro")))
	assert.Equal(t, 0, f.mount.ScrollTop())
}

func TestClickOnLinkCapturesOffset(t *testing.T) {
	f := attach(t, smallTOC, "https://x.test/index.html", "", nil)
	f.mount.SetScrollTop(75)

	f.doc.Click(f.link(t, "API"))
	v, ok, err := f.store.Get(DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "75", v)
}

func TestClickInsideLinkCapturesOffset(t *testing.T) {
	f := attach(t, loadTOC(t), "https://x.test/book/index.html", "", nil)
	f.mount.SetScrollTop(31)

	strong := f.link(t, "Docker").QueryAll("strong")
	require.Len(t, strong, 1)
	f.doc.Click(strong[0])
	v, _, _ := f.store.Get(DefaultStorageKey)
	assert.Equal(t, "31", v)
}

func TestClickOutsideLinkDoesNotCapture(t *testing.T) {
	f := attach(t, smallTOC, "https://x.test/index.html", "", nil)
	f.mount.SetScrollTop(75)

	f.doc.Click(f.item(t, "API"))
	f.doc.Click(f.mount)
	assert.Equal(t, 0, f.store.Len())
}

func TestToggleFlipsOnlyItsItem(t *testing.T) {
	f := attach(t, smallTOC, "https://x.test/other.html", "", nil)
	guide := f.item(t, "Guide")
	reference := f.item(t, "Reference")
	require.False(t, guide.HasClass("expanded"))
	require.False(t, reference.HasClass("expanded"))

	toggles := guide.QueryAll("a.toggle")
	require.Len(t, toggles, 1)

	f.doc.Click(toggles[0])
	assert.True(t, guide.HasClass("expanded"))
	assert.False(t, reference.HasClass("expanded"), "sibling must not change")
	assert.False(t, f.item(t, "Install").HasClass("expanded"), "descendants must not change")

	f.doc.Click(toggles[0].QueryAll("div")[0])
	assert.False(t, guide.HasClass("expanded"), "click bubbling from the icon toggles back")
}

func TestToggleHidesRows(t *testing.T) {
	f := attach(t, smallTOC, "https://x.test/guide/install.html", "../", func(f *fixture) {
		f.mount.RowHeight = 10
		f.mount.ViewportHeight = 20
	})
	open := f.mount.ContentHeight()
	f.doc.Click(f.item(t, "Guide").QueryAll("a.toggle")[0])
	assert.Equal(t, open-10, f.mount.ContentHeight(), "collapsing the guide hides Install")
}

func TestDetachRemovesListeners(t *testing.T) {
	f := attach(t, smallTOC, "https://x.test/index.html", "", nil)
	require.Positive(t, f.doc.ListenerCount())

	f.handle.Detach()
	assert.Equal(t, 0, f.doc.ListenerCount())

	guide := f.item(t, "Guide")
	f.doc.Click(guide.QueryAll("a.toggle")[0])
	assert.False(t, guide.HasClass("expanded"))
	assert.Equal(t, 0, f.store.Len())

	f.handle.Detach()
}

func TestNilStorageStillCenters(t *testing.T) {
	doc, err := htmldom.ParseString(page)
	require.NoError(t, err)
	mount, err := doc.Mount("mdbook-sidebar-scrollbox")
	require.NoError(t, err)

	h, err := Attach(mount, Config{Markup: smallTOC, Location: mustURL(t, "https://x.test/guide/install.html"), RootPrefix: "../"})
	require.NoError(t, err)
	assert.True(t, dom.Same(mount.Centered(), h.Active()))

	doc.Click(mount.QueryAll("a")[0])
	assert.Equal(t, 2, doc.ListenerCount(), "only the two toggles listen without storage")
}

type failingStorage struct{}

var errStorage = errors.New("quota exceeded")

func (failingStorage) Get(string) (string, bool, error) { return "", false, errStorage }
func (failingStorage) Set(string, string) error         { return errStorage }
func (failingStorage) Delete(string) error              { return errStorage }

func TestStorageFailuresDegrade(t *testing.T) {
	doc, err := htmldom.ParseString(page)
	require.NoError(t, err)
	mount, err := doc.Mount("mdbook-sidebar-scrollbox")
	require.NoError(t, err)

	var logs bytes.Buffer
	h, err := Attach(mount, Config{
		Markup:     smallTOC,
		Location:   mustURL(t, "https://x.test/guide/install.html"),
		RootPrefix: "../",
		Storage:    failingStorage{},
		Logger:     log.New(&logs, "", 0),
	})
	require.NoError(t, err)
	assert.True(t, dom.Same(mount.Centered(), h.Active()))

	doc.Click(mount.QueryAll("a")[0])
	assert.Contains(t, logs.String(), "quota exceeded")
}

func TestAttachValidation(t *testing.T) {
	_, err := Attach(nil, Config{Location: &url.URL{}})
	assert.ErrorIs(t, err, ErrNoMount)

	doc, err := htmldom.ParseString(page)
	require.NoError(t, err)
	mount, err := doc.Mount("mdbook-sidebar-scrollbox")
	require.NoError(t, err)
	_, err = Attach(mount, Config{Markup: smallTOC})
	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestCustomClassNames(t *testing.T) {
	markup := `<ul><li class="dir"><a href="a/index.html">A</a><span class="dir-toggle">+</span></li>` +
		`<li><ul><li class="dir"><a href="a/b.html">B</a></li></ul></li></ul>`
	doc, err := htmldom.ParseString(page)
	require.NoError(t, err)
	mount, err := doc.Mount("#sidebar")
	require.NoError(t, err)
	mount.RowHeight = 10
	mount.ItemClass = "dir"
	mount.ExpandedClass = "open"

	h, err := Attach(mount, Config{
		Markup:         markup,
		Location:       mustURL(t, "https://x.test/a/b.html"),
		RootPrefix:     "../",
		ActiveClass:    "current",
		ExpandedClass:  "open",
		ItemClass:      "dir",
		ToggleSelector: "span.dir-toggle",
	})
	require.NoError(t, err)
	assert.True(t, h.Active().HasClass("current"))
	first := mount.QueryAll("li.dir")[0]
	assert.True(t, first.HasClass("open"))
	assert.Equal(t, 20, mount.ContentHeight())

	doc.Dispatch(mount.QueryAll("span.dir-toggle")[0], "click")
	assert.False(t, first.HasClass("open"))
	assert.Equal(t, 10, mount.ContentHeight(), "closing A hides B")
}

func mustAttr(t *testing.T, el dom.Element, name string) string {
	t.Helper()
	v, ok := el.Attr(name)
	require.True(t, ok, "missing %s", name)
	return v
}
