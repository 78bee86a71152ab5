//go:build js && wasm

// Command wasm exposes the sidebar controller to the browser as
// window.Sidenav.
package main

import (
	"encoding/json"
	"net/url"
	"syscall/js"

	"github.com/ziadkadry99/sidenav/internal/sidebar"
)

// Version info
const Version = "0.1.0"

const defaultMountSelector = "mdbook-sidebar-scrollbox"

func main() {
	println("[sidenav] WASM Ready v" + Version)

	// Register exports
	js.Global().Set("Sidenav", js.ValueOf(map[string]interface{}{
		"version": js.FuncOf(getVersion),
		"attach":  js.FuncOf(attach),
	}))

	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// attach renders the sidebar and returns a handle object.
// Args: [selector?, markup, pathToRoot?]. A missing selector means
// mdbook-sidebar-scrollbox; a missing pathToRoot falls back to the page's
// global path_to_root.
func attach(this js.Value, args []js.Value) interface{} {
	arg := func(i int) js.Value {
		if i < len(args) {
			return args[i]
		}
		return js.Undefined()
	}

	selector := defaultMountSelector
	if v := arg(0); v.Type() == js.TypeString && v.String() != "" {
		selector = v.String()
	}
	if arg(1).Type() != js.TypeString {
		return errorResult("markup must be a string")
	}
	markup := arg(1).String()
	prefix := ""
	if v := arg(2); v.Type() == js.TypeString {
		prefix = v.String()
	} else if g := js.Global().Get("path_to_root"); g.Type() == js.TypeString {
		prefix = g.String()
	}

	el := js.Global().Get("document").Call("querySelector", selector)
	if el.IsNull() {
		return errorResult("mount point not found: " + selector)
	}
	loc, err := url.Parse(js.Global().Get("location").Get("href").String())
	if err != nil {
		return errorResult("bad location: " + err.Error())
	}

	h, err := sidebar.Attach(&mount{element: &element{v: el}}, sidebar.Config{
		Markup:     markup,
		RootPrefix: prefix,
		Location:   loc,
		Storage:    sessionStorage{},
	})
	if err != nil {
		return errorResult(err.Error())
	}

	active := ""
	if a := h.Active(); a != nil {
		active, _ = a.Attr("href")
	}

	detach := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		h.Detach()
		return nil
	})
	return js.ValueOf(map[string]interface{}{
		"active": active,
		"detach": detach,
	})
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
