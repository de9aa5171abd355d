// Package blocking aggregates the admin UI's long-running mutations
// into one exclusive busy indicator. Each in-flight operation holds a
// named token; the UI is blocked while any token is held, and the label
// shown is that of the highest-priority active operation.
package blocking

import "time"

type Op string

const (
	OpSave       Op = "save"
	OpUpload     Op = "upload"
	OpDelete     Op = "delete"
	OpMediaLoad  Op = "media-load"
	OpAccount    Op = "account"
	OpLogin      Op = "login"
	OpCaption    Op = "caption"
	OpListReload Op = "list-reload"
)

// priority-ordered labels; first active op wins.
var labels = []struct {
	op    Op
	label string
}{
	{OpSave, "Saving event..."},
	{OpUpload, "Uploading image..."},
	{OpDelete, "Deleting..."},
	{OpCaption, "Saving caption..."},
	{OpAccount, "Updating account..."},
	{OpLogin, "Signing in..."},
	{OpMediaLoad, "Loading media..."},
	{OpListReload, "Refreshing..."},
}

// Set counts in-flight operations by name. Not safe for concurrent use;
// the admin UI is single-threaded by design.
type Set struct {
	active map[Op]int
}

func NewSet() *Set {
	return &Set{active: map[Op]int{}}
}

// Acquire marks an operation in flight and returns its release func.
// Release is idempotent.
func (s *Set) Acquire(op Op) func() {
	s.active[op]++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		s.active[op]--
		if s.active[op] <= 0 {
			delete(s.active, op)
		}
	}
}

// Blocked reports whether any operation is in flight.
func (s *Set) Blocked() bool {
	return len(s.active) > 0
}

// Label returns the busy text for the highest-priority active
// operation, empty when nothing is in flight.
func (s *Set) Label() string {
	for _, entry := range labels {
		if s.active[entry.op] > 0 {
			return entry.label
		}
	}
	return ""
}

// NoticeTTL is how long an informational note stays visible.
const NoticeTTL = 6 * time.Second

type Notice struct {
	Text    string
	Expires time.Time
}

// Notices holds auto-dismissing informational notes (e.g. the
// nearest-year substitution message). The clock is injected for tests.
type Notices struct {
	now     func() time.Time
	entries []Notice
}

func NewNotices(now func() time.Time) *Notices {
	if now == nil {
		now = time.Now
	}
	return &Notices{now: now}
}

func (n *Notices) Push(text string) {
	n.entries = append(n.entries, Notice{
		Text:    text,
		Expires: n.now().Add(NoticeTTL),
	})
}

// Active drops expired notices and returns the rest.
func (n *Notices) Active() []Notice {
	now := n.now()
	kept := n.entries[:0]
	for _, entry := range n.entries {
		if entry.Expires.After(now) {
			kept = append(kept, entry)
		}
	}
	n.entries = kept

	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}
