package htmldom

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/sidenav/internal/dom"
)

const testPage = `<html><body><nav id="sidebar">
  <ul class="tree">
    <li class="a one">first <a href="1.html"><b>one</b></a></li>
    <li class="b">second</li>
  </ul>
</nav></body></html>`

func parse(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseString(testPage)
	require.NoError(t, err)
	return doc
}

func TestFindAndAttributes(t *testing.T) {
	doc := parse(t)
	a := doc.Find("li.one a")
	require.NotNil(t, a)
	assert.Equal(t, "A", a.TagName())

	href, ok := a.Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "1.html", href)

	a.SetAttr("href", "../1.html")
	a.SetAttr("data-x", "")
	href, _ = a.Attr("href")
	assert.Equal(t, "../1.html", href)
	_, ok = a.Attr("data-x")
	assert.True(t, ok)
	_, ok = a.Attr("missing")
	assert.False(t, ok)

	assert.Nil(t, doc.Find("table"))
}

func TestClasses(t *testing.T) {
	li := parse(t).Find("li.one")
	assert.True(t, li.HasClass("a"))
	assert.False(t, li.HasClass("on"))

	li.AddClass("expanded")
	li.AddClass("expanded")
	v, _ := li.Attr("class")
	assert.Equal(t, "a one expanded", v)

	assert.False(t, li.ToggleClass("expanded"))
	assert.True(t, li.ToggleClass("expanded"))
	assert.True(t, li.HasClass("expanded"))
	assert.True(t, li.HasClass("one"), "other classes survive a toggle")
}

func TestTreeNavigation(t *testing.T) {
	doc := parse(t)
	second := doc.Find("li.b")
	prev := second.PreviousElementSibling()
	require.NotNil(t, prev, "whitespace text nodes are skipped")
	assert.True(t, prev.HasClass("one"))
	assert.Nil(t, prev.PreviousElementSibling())

	ul := second.Parent()
	assert.Equal(t, "UL", ul.TagName())

	html := doc.Find("html")
	assert.Nil(t, html.Parent(), "the document node is not an element")

	assert.True(t, dom.Same(doc.Find("li.b"), second))
	assert.False(t, dom.Same(prev, second))
	assert.True(t, dom.Same(nil, nil))
	assert.False(t, dom.Same(second, nil))
}

func TestQueryAllIsScopedAndOrdered(t *testing.T) {
	doc := parse(t)
	ul := doc.Find("ul.tree")
	lis := ul.QueryAll("li")
	require.Len(t, lis, 2)
	assert.True(t, lis[0].HasClass("a"))
	assert.True(t, lis[1].HasClass("b"))

	assert.Empty(t, doc.Find("li.b").QueryAll("a"))
	assert.Empty(t, ul.QueryAll("[[invalid"), "bad selectors match nothing")
}

func TestDispatchBubbles(t *testing.T) {
	doc := parse(t)
	b := doc.Find("b")
	a := doc.Find("a")
	nav := doc.Find("#sidebar")

	var order []string
	a.AddEventListener("click", func(ev dom.Event) {
		order = append(order, "a:"+ev.CurrentTarget.TagName()+":"+ev.Target.TagName())
	})
	nav.AddEventListener("click", func(ev dom.Event) {
		order = append(order, "nav:"+ev.CurrentTarget.TagName()+":"+ev.Target.TagName())
	})
	nav.AddEventListener("keydown", func(dom.Event) {
		order = append(order, "keydown")
	})

	doc.Click(b)
	assert.Equal(t, []string{"a:A:B", "nav:NAV:B"}, order)
}

func TestRemoveListener(t *testing.T) {
	doc := parse(t)
	a := doc.Find("a")
	calls := 0
	remove := a.AddEventListener("click", func(dom.Event) { calls++ })
	assert.Equal(t, 1, doc.ListenerCount())

	doc.Click(a)
	remove()
	remove()
	doc.Click(a)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, doc.ListenerCount())
}

func TestRemoveDuringDispatch(t *testing.T) {
	doc := parse(t)
	a := doc.Find("a")
	var second func()
	calls := 0
	a.AddEventListener("click", func(dom.Event) {
		calls++
		second()
	})
	second = a.AddEventListener("click", func(dom.Event) { calls += 10 })

	doc.Click(a)
	assert.Equal(t, 1, calls, "a listener removed earlier in the same dispatch does not run")
}

func TestMountNotFound(t *testing.T) {
	_, err := parse(t).Mount("#missing")
	assert.True(t, errors.Is(err, ErrNoMount))
}

func TestSetInnerHTMLDropsOldListeners(t *testing.T) {
	doc := parse(t)
	m, err := doc.Mount("#sidebar")
	require.NoError(t, err)
	doc.Find("a").AddEventListener("click", func(dom.Event) {})
	m.AddEventListener("click", func(dom.Event) {})
	require.Equal(t, 2, doc.ListenerCount())

	require.NoError(t, m.SetInnerHTML(`<ol><li><a href="x.html">x</a></li></ol>`))
	assert.Equal(t, 1, doc.ListenerCount(), "listeners on the mount itself stay")
	assert.Equal(t, `<ol><li><a href="x.html">x</a></li></ol>`, m.InnerHTML())
	assert.Contains(t, m.OuterHTML(), `<nav id="sidebar">`)
}

func TestMountScrollWithoutGeometry(t *testing.T) {
	doc := parse(t)
	m, err := doc.Mount("#sidebar")
	require.NoError(t, err)

	_, set := m.Restored()
	assert.False(t, set)
	m.SetScrollTop(500)
	top, set := m.Restored()
	assert.True(t, set)
	assert.Equal(t, 500, top)

	m.SetScrollTop(-3)
	assert.Equal(t, 0, m.ScrollTop())

	a := doc.Find("a")
	m.CenterOn(a)
	assert.True(t, dom.Same(m.Centered(), a))
	assert.Equal(t, 0, m.ScrollTop(), "unknown geometry only records the target")
}

func TestMountRowLayout(t *testing.T) {
	doc, err := ParseString(`<div id="m"></div>`)
	require.NoError(t, err)
	m, err := doc.Mount("#m")
	require.NoError(t, err)
	m.RowHeight = 10
	m.ViewportHeight = 30

	var markup string
	for i := 0; i < 10; i++ {
		markup += `<li><a href="p.html">p</a></li>`
	}
	require.NoError(t, m.SetInnerHTML(`<ol>`+markup+`</ol>`))
	assert.Equal(t, 100, m.ContentHeight())

	links := m.QueryAll("a")
	assert.Equal(t, 50, m.RowTop(links[5]))

	m.CenterOn(links[5])
	assert.Equal(t, 50+5-15, m.ScrollTop())

	m.CenterOn(links[9])
	assert.Equal(t, 70, m.ScrollTop(), "clamped to content height minus viewport")

	m.SetScrollTop(1000)
	assert.Equal(t, 70, m.ScrollTop())

	assert.Equal(t, -1, m.RowTop(doc.Find("body")))
}

func TestMountFlatListRows(t *testing.T) {
	doc, err := ParseString(`<div id="m"></div>`)
	require.NoError(t, err)
	m, err := doc.Mount("#m")
	require.NoError(t, err)
	m.RowHeight = 10
	m.ViewportHeight = 10

	require.NoError(t, m.SetInnerHTML(`<ol class="chapter">`+
		`<li class="chapter-item"><a href="a.html">A</a></li>`+
		`<li class="chapter-item"><a href="b.html">B</a></li>`+
		`<li class="chapter-item"><a href="c.html">C</a></li></ol>`))
	assert.Equal(t, 30, m.ContentHeight(), "collapsed siblings stay visible")
	links := m.QueryAll("a")
	assert.Equal(t, 10, m.RowTop(links[1]))
	assert.Equal(t, 20, m.RowTop(links[2]))

	m.SetScrollTop(20)
	assert.Equal(t, 20, m.ScrollTop())
}

func TestMountHolderFollowsCollapsedItem(t *testing.T) {
	doc, err := ParseString(`<div id="m"></div>`)
	require.NoError(t, err)
	m, err := doc.Mount("#m")
	require.NoError(t, err)
	m.RowHeight = 10

	const markup = `<ol>` +
		`<li class="%[1]s"><a href="a.html">A</a></li>` +
		`<li><ol><li class="%[1]s"><a href="a/1.html">A1</a></li></ol></li>` +
		`<li class="%[1]s"><a href="b.html">B</a></li></ol>`

	require.NoError(t, m.SetInnerHTML(fmt.Sprintf(markup, "chapter-item")))
	assert.Equal(t, 20, m.ContentHeight(), "A1 sits in the holder after collapsed A")
	m.QueryAll("li")[0].AddClass("expanded")
	assert.Equal(t, 30, m.ContentHeight())

	m.ItemClass, m.ExpandedClass = "dir", "open"
	require.NoError(t, m.SetInnerHTML(fmt.Sprintf(markup, "dir")))
	assert.Equal(t, 20, m.ContentHeight())
	m.QueryAll("li")[0].AddClass("open")
	assert.Equal(t, 30, m.ContentHeight())
}

func TestAppendHTMLAndRemoveAttr(t *testing.T) {
	doc := parse(t)
	require.NoError(t, doc.AppendHTML("body", `<script>var x = 1 < 2;</script>`))
	assert.Contains(t, doc.String(), `<script>var x = 1 < 2;</script></body>`)
	assert.Error(t, doc.AppendHTML("table", `<p></p>`))
	assert.Equal(t, 1, doc.RemoveAll("script"))
	assert.NotContains(t, doc.String(), "<script>")
	assert.Equal(t, 0, doc.RemoveAll("script"))

	nav := doc.Find("#sidebar").(*Element)
	nav.SetAttr("data-scroll-top", "10")
	nav.RemoveAttr("data-scroll-top")
	nav.RemoveAttr("data-missing")
	_, ok := nav.Attr("data-scroll-top")
	assert.False(t, ok)
	_, ok = nav.Attr("id")
	assert.True(t, ok)
}
