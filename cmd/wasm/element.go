//go:build js && wasm

package main

import (
	"fmt"
	"sync"
	"syscall/js"

	"github.com/ziadkadry99/sidenav/internal/dom"
)

// element is a dom.Element over a live browser element.
type element struct {
	v js.Value
}

func wrap(v js.Value) dom.Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &element{v: v}
}

func valueOf(el dom.Element) (js.Value, bool) {
	if h, ok := el.(interface{ jsValue() js.Value }); ok {
		return h.jsValue(), true
	}
	return js.Undefined(), false
}

func (e *element) jsValue() js.Value { return e.v }

func (e *element) TagName() string { return e.v.Get("tagName").String() }

func (e *element) Attr(name string) (string, bool) {
	if !e.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return e.v.Call("getAttribute", name).String(), true
}

func (e *element) SetAttr(name, value string) { e.v.Call("setAttribute", name, value) }

func (e *element) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

func (e *element) AddClass(name string) { e.v.Get("classList").Call("add", name) }

func (e *element) ToggleClass(name string) bool {
	return e.v.Get("classList").Call("toggle", name).Bool()
}

func (e *element) Parent() dom.Element { return wrap(e.v.Get("parentElement")) }

func (e *element) PreviousElementSibling() dom.Element {
	return wrap(e.v.Get("previousElementSibling"))
}

// QueryAll returns nothing for a selector the browser rejects.
func (e *element) QueryAll(selector string) (out []dom.Element) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
		}
	}()
	list := e.v.Call("querySelectorAll", selector)
	n := list.Length()
	out = make([]dom.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &element{v: list.Index(i)})
	}
	return out
}

func (e *element) AddEventListener(eventType string, fn dom.Listener) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ev := args[0]
		fn(dom.Event{
			Type:          ev.Get("type").String(),
			Target:        wrap(ev.Get("target")),
			CurrentTarget: wrap(ev.Get("currentTarget")),
		})
		return nil
	})
	e.v.Call("addEventListener", eventType, cb)

	var once sync.Once
	return func() {
		once.Do(func() {
			e.v.Call("removeEventListener", eventType, cb)
			cb.Release()
		})
	}
}

func (e *element) SameAs(other dom.Element) bool {
	v, ok := valueOf(other)
	return ok && v.Equal(e.v)
}

// mount is the scroll container the sidebar renders into.
type mount struct {
	*element
}

func (m *mount) SetInnerHTML(markup string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("setting innerHTML: %v", r)
		}
	}()
	m.v.Set("innerHTML", markup)
	return nil
}

func (m *mount) ScrollTop() int { return int(m.v.Get("scrollTop").Float()) }

func (m *mount) SetScrollTop(v int) { m.v.Set("scrollTop", v) }

// CenterOn scrolls the mount, and only the mount, so el sits in the middle
// of its visible height.
func (m *mount) CenterOn(el dom.Element) {
	v, ok := valueOf(el)
	if !ok {
		return
	}
	box := m.v.Call("getBoundingClientRect")
	row := v.Call("getBoundingClientRect")
	offset := row.Get("top").Float() - box.Get("top").Float() + m.v.Get("scrollTop").Float()
	target := offset - (m.v.Get("clientHeight").Float()-row.Get("height").Float())/2
	if target < 0 {
		target = 0
	}
	m.v.Set("scrollTop", target)
}
