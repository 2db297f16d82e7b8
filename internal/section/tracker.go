package section

// Tracker holds the navbar state: the highlighted section, whether the page
// has scrolled past the top, and whether the mobile menu overlay is open.
//
// A Tracker is owned by a single view and is not safe for concurrent use; UI
// event handlers run one at a time.
type Tracker struct {
	active   ID
	scrolled bool
	menuOpen bool
	onChange func(ID)
}

// NewTracker returns a Tracker with Home active. onChange, when non-nil, is
// called every time the active section changes.
func NewTracker(onChange func(ID)) *Tracker {
	return &Tracker{active: Home, onChange: onChange}
}

// Observe recomputes the navbar state for a scroll offset. It is called on
// every scroll event and once on mount.
func (t *Tracker) Observe(scrollY float64, sections []Geometry) ID {
	t.scrolled = scrollY > ScrolledThreshold
	next := Active(scrollY, sections)
	if next != t.active {
		t.active = next
		if t.onChange != nil {
			t.onChange(next)
		}
	}
	return t.active
}

// Active returns the highlighted section.
func (t *Tracker) Active() ID { return t.active }

// Scrolled reports whether the header should render in its compact form.
func (t *Tracker) Scrolled() bool { return t.scrolled }

// MenuOpen reports whether the mobile navigation overlay is open.
func (t *Tracker) MenuOpen() bool { return t.menuOpen }

// ToggleMenu opens or closes the mobile navigation overlay.
func (t *Tracker) ToggleMenu() { t.menuOpen = !t.menuOpen }

// Navigate handles a click on a navigation entry. It closes the mobile menu
// and returns the offset to smooth-scroll to. ok is false when target has no
// anchor on the page.
//
// The active section is not changed here; the scroll events produced by the
// smooth scroll update it through Observe.
func (t *Tracker) Navigate(target ID, sections []Geometry) (offset float64, ok bool) {
	t.menuOpen = false
	for _, g := range sections {
		if g.ID == target {
			return g.Top - HeaderHeight, true
		}
	}
	return 0, false
}
