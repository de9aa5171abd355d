package timeline

// View tracks the timeline's interactive state: which single year is
// expanded and any scroll-to-year request whose anchor has not been
// laid out yet.
type View struct {
	headerOffset float64
	expandedYear int
	expanded     bool
	anchors      map[int]float64
	pendingYear  int
	pending      bool
}

func NewView(headerOffset float64) *View {
	return &View{
		headerOffset: headerOffset,
		anchors:      map[int]float64{},
	}
}

// Toggle expands the year, collapsing whichever year was expanded
// before. Toggling the expanded year collapses it.
func (v *View) Toggle(year int) {
	if v.expanded && v.expandedYear == year {
		v.expanded = false
		return
	}
	v.expandedYear = year
	v.expanded = true
}

func (v *View) Expanded() (int, bool) {
	return v.expandedYear, v.expanded
}

// RegisterAnchor records where a year's section sits on the page.
func (v *View) RegisterAnchor(year int, offset float64) {
	v.anchors[year] = offset
}

// ScrollToYear marks the year expanded and returns the scroll position
// compensated for the fixed header. If the anchor is not registered yet
// the request is deferred; Tick retries it once.
func (v *View) ScrollToYear(year int) (float64, bool) {
	v.expandedYear = year
	v.expanded = true

	offset, ok := v.anchors[year]
	if !ok {
		v.pendingYear = year
		v.pending = true
		return 0, false
	}

	v.pending = false
	return offset - v.headerOffset, true
}

// Tick resolves a deferred scroll request if its anchor has appeared.
// The request is dropped either way; deferral lasts one tick only.
func (v *View) Tick() (float64, bool) {
	if !v.pending {
		return 0, false
	}
	v.pending = false

	offset, ok := v.anchors[v.pendingYear]
	if !ok {
		return 0, false
	}
	return offset - v.headerOffset, true
}
