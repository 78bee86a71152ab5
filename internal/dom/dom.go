// Package dom is the small slice of the Document Object Model the sidebar
// controller needs. It has two backends: htmldom (in-memory, used for tests,
// prerendering and the preview server) and the syscall/js binding in cmd/wasm.
package dom

// Element is a live element in a document.
//
// Implementations must return an untyped nil from Parent and
// PreviousElementSibling when there is no such element.
type Element interface {
	// TagName returns the upper-case tag name, e.g. "A" or "LI".
	TagName() string
	Attr(name string) (string, bool)
	SetAttr(name, value string)

	HasClass(name string) bool
	AddClass(name string)
	// ToggleClass flips the class and reports whether it is now present.
	ToggleClass(name string) bool

	Parent() Element
	PreviousElementSibling() Element

	// QueryAll returns the descendants matching a CSS selector in
	// document order.
	QueryAll(selector string) []Element

	// AddEventListener registers fn for events of the given type that
	// reach this element. The returned func removes the listener.
	AddEventListener(eventType string, fn Listener) (remove func())
}

// Event is a dispatched DOM event.
type Event struct {
	Type string
	// Target is the element the event was dispatched on.
	Target Element
	// CurrentTarget is the element whose listener is running.
	CurrentTarget Element
}

// Listener handles an event.
type Listener func(Event)

// Same reports whether two elements refer to the same underlying node.
// Backends wrap nodes in fresh values, so == on interfaces is not enough.
func Same(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if s, ok := a.(interface{ SameAs(Element) bool }); ok {
		return s.SameAs(b)
	}
	return a == b
}
