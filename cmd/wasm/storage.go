//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"
)

// sessionStorage is sidebar.Storage over window.sessionStorage. Browsers
// throw when storage is disabled; those exceptions come back as errors.
type sessionStorage struct{}

func (sessionStorage) area() js.Value { return js.Global().Get("sessionStorage") }

func (s sessionStorage) Get(key string) (value string, ok bool, err error) {
	defer recoverInto(&err)
	v := s.area().Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return "", false, nil
	}
	return v.String(), true, nil
}

func (s sessionStorage) Set(key, value string) (err error) {
	defer recoverInto(&err)
	s.area().Call("setItem", key, value)
	return nil
}

func (s sessionStorage) Delete(key string) (err error) {
	defer recoverInto(&err)
	s.area().Call("removeItem", key)
	return nil
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("sessionStorage: %v", r)
	}
}
