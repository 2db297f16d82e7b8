//go:build js && wasm

// Command portfolio-wasm is the browser client of the portfolio. It binds the
// page's DOM events to the section tracker, the terminal runner and the
// contact flow.
package main

import (
	"context"
	"errors"
	"syscall/js"

	"github.com/wxmohd/walaa-dev/internal/contact"
	"github.com/wxmohd/walaa-dev/internal/section"
	"github.com/wxmohd/walaa-dev/internal/terminal"
)

var (
	// Tracker owns the active section and the navbar state for the page.
	Tracker *section.Tracker
	// Terminal types the hero script once the terminal scrolls into view.
	Terminal *terminal.Runner
	// Contact is the form's submission state.
	Contact *contact.Flow
)

func main() {
	ctx := context.Background()

	Tracker = section.NewTracker(renderActive)
	bindNavigation()

	Terminal = terminal.NewRunner(terminal.DefaultScript, terminal.WithRender(renderTerminal))
	go Terminal.Run(ctx)
	observeTerminal()

	endpoint := body().Get("dataset").Get("contactEndpoint").String()
	if endpoint == "" {
		endpoint = contact.Endpoint
	}
	Contact = contact.NewFlow(contact.NewHTTPRelay(endpoint), contact.WithOnChange(renderContact))
	bindContact(ctx)

	// The server rendered an initial section from the URL; scroll to it.
	if initial := section.ID(body().Get("dataset").Get("initialSection").String()); initial != section.Home && section.Valid(initial) {
		scrollTo(initial)
	}
	onScroll()

	select {}
}

// geometries measures the sections in page order.
func geometries() []section.Geometry {
	out := make([]section.Geometry, 0, len(section.Order))
	for _, id := range section.Order {
		el := byID(string(id))
		if el.IsNull() {
			continue
		}
		out = append(out, section.Geometry{
			ID:     id,
			Top:    el.Get("offsetTop").Float(),
			Height: el.Get("offsetHeight").Float(),
		})
	}
	return out
}

func onScroll() {
	Tracker.Observe(window().Get("scrollY").Float(), geometries())
	setClass(byID("site-header"), "scrolled", Tracker.Scrolled())
}

func scrollTo(id section.ID) {
	offset, ok := Tracker.Navigate(id, geometries())
	renderMenu()
	if !ok {
		return
	}
	opts := js.Global().Get("Object").New()
	opts.Set("top", offset)
	opts.Set("behavior", "smooth")
	window().Call("scrollTo", opts)
	window().Get("history").Call("replaceState", js.Null(), "", section.Path(id))
}

func bindNavigation() {
	listen(window(), "scroll", func(js.Value) { onScroll() })
	listen(window(), "resize", func(js.Value) { onScroll() })

	listen(byID("menu-toggle"), "click", func(js.Value) {
		Tracker.ToggleMenu()
		renderMenu()
	})

	links := document().Call("querySelectorAll", "[data-section]")
	for i := 0; i < links.Length(); i++ {
		link := links.Index(i)
		id := section.ID(link.Get("dataset").Get("section").String())
		listen(link, "click", func(ev js.Value) {
			ev.Call("preventDefault")
			scrollTo(id)
		})
	}
}

func renderActive(active section.ID) {
	links := document().Call("querySelectorAll", "a.nav-link[data-section]")
	for i := 0; i < links.Length(); i++ {
		link := links.Index(i)
		setClass(link, "active", section.ID(link.Get("dataset").Get("section").String()) == active)
	}
}

func renderMenu() {
	open := Tracker.MenuOpen()
	setClass(byID("site-nav"), "open", open)
	if toggle := byID("menu-toggle"); !toggle.IsNull() {
		toggle.Call("setAttribute", "aria-expanded", boolAttr(open))
	}
}

func observeTerminal() {
	el := byID("terminal")
	ctor := js.Global().Get("IntersectionObserver")
	if el.IsNull() || ctor.IsUndefined() {
		Terminal.Visible()
		return
	}
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		entries, observer := args[0], args[1]
		for i := 0; i < entries.Length(); i++ {
			if entries.Index(i).Get("isIntersecting").Bool() {
				Terminal.Visible()
				observer.Call("disconnect")
				cb.Release()
				return nil
			}
		}
		return nil
	})
	opts := js.Global().Get("Object").New()
	opts.Set("threshold", 0.1)
	ctor.New(cb, opts).Call("observe", el)
}

func renderTerminal(s terminal.State) {
	byID("terminal-text").Set("textContent", s.Text)
	setClass(byID("terminal-cursor"), "off", !s.CursorVisible)
}

var formFields = []contact.Field{contact.FieldName, contact.FieldEmail, contact.FieldMessage}

func formInput(f contact.Field) js.Value {
	return byID("contact-form").Call("querySelector", `[name="`+string(f)+`"]`)
}

func bindContact(ctx context.Context) {
	form := byID("contact-form")
	if form.IsNull() {
		return
	}
	for _, f := range formFields {
		field := f
		listen(formInput(field), "input", func(ev js.Value) {
			Contact.Set(field, ev.Get("target").Get("value").String())
		})
	}
	listen(form, "submit", func(ev js.Value) {
		ev.Call("preventDefault")
		go func() {
			err := Contact.Submit(ctx)
			if err != nil && !errors.Is(err, contact.ErrInFlight) {
				js.Global().Get("console").Call("error", err.Error())
			}
		}()
	})
}

func renderContact(s contact.Snapshot) {
	values := map[contact.Field]string{
		contact.FieldName:    s.Fields.Name,
		contact.FieldEmail:   s.Fields.Email,
		contact.FieldMessage: s.Fields.Message,
	}
	for f, v := range values {
		input := formInput(f)
		if !input.IsNull() && input.Get("value").String() != v {
			input.Set("value", v)
		}
	}

	button := byID("contact-submit")
	status := byID("contact-status")
	button.Set("disabled", s.Status == contact.InFlight || s.Status == contact.Succeeded)
	setClass(status, "succeeded", s.Status == contact.Succeeded)
	setClass(status, "failed", s.Status == contact.Failed)

	switch s.Status {
	case contact.InFlight:
		button.Set("textContent", "Sending...")
		status.Set("textContent", "")
	case contact.Succeeded:
		button.Set("textContent", "Message Sent!")
		status.Set("textContent", "Thank you for reaching out. I'll get back to you soon.")
	case contact.Failed:
		button.Set("textContent", "Send Message")
		status.Set("textContent", "Failed to send message. Please try again.")
	default:
		button.Set("textContent", "Send Message")
		status.Set("textContent", "")
	}
}
