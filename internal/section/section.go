// Package section maps the page scroll position to the section the navbar
// highlights, and holds the rest of the navbar state.
package section

import "strings"

// ID names one of the page sections.
type ID string

const (
	Home     ID = "home"
	About    ID = "about"
	Projects ID = "projects"
	Contact  ID = "contact"
)

// Order is the document order of the sections.
var Order = []ID{Home, About, Projects, Contact}

const (
	// ActivationOffset shifts every section range up so a section becomes
	// active slightly before its top reaches the viewport top.
	ActivationOffset = 100.0
	// HeaderHeight is subtracted from the anchor offset when scrolling to a
	// section so the fixed header does not cover its heading.
	HeaderHeight = 80.0
	// ScrolledThreshold is the offset past which the header renders compact.
	ScrolledThreshold = 10.0
)

// Geometry is the vertical extent of a section anchor in document pixels.
type Geometry struct {
	ID     ID
	Top    float64
	Height float64
}

// Contains reports whether scrollY falls inside the activation range of g.
func (g Geometry) Contains(scrollY float64) bool {
	return scrollY >= g.Top-ActivationOffset && scrollY < g.Top+g.Height-ActivationOffset
}

// Active returns the last section in sections whose activation range holds
// scrollY, or Home when none does.
func Active(scrollY float64, sections []Geometry) ID {
	current := Home
	for _, g := range sections {
		if g.Contains(scrollY) {
			current = g.ID
		}
	}
	return current
}

// Valid reports whether id is one of the known sections.
func Valid(id ID) bool {
	for _, known := range Order {
		if id == known {
			return true
		}
	}
	return false
}

// Path returns the navigation href of id.
func Path(id ID) string {
	if id == Home || id == "" {
		return "/"
	}
	return "/" + string(id)
}

// FromPath is the inverse of Path. Unknown paths map to Home.
func FromPath(path string) ID {
	id := ID(strings.Trim(path, "/"))
	if id == "" || !Valid(id) {
		return Home
	}
	return id
}
