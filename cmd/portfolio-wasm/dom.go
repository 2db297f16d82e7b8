//go:build js && wasm

package main

import "syscall/js"

func window() js.Value   { return js.Global().Get("window") }
func document() js.Value { return js.Global().Get("document") }
func body() js.Value     { return document().Get("body") }

func byID(id string) js.Value {
	return document().Call("getElementById", id)
}

// listen attaches fn as an event handler. Handlers live for the page's
// lifetime and are never released.
func listen(target js.Value, event string, fn func(ev js.Value)) {
	if target.IsNull() || target.IsUndefined() {
		return
	}
	target.Call("addEventListener", event, js.FuncOf(func(this js.Value, args []js.Value) any {
		fn(args[0])
		return nil
	}))
}

func setClass(el js.Value, class string, on bool) {
	if el.IsNull() || el.IsUndefined() {
		return
	}
	el.Get("classList").Call("toggle", class, on)
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
