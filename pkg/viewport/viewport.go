// Package viewport classifies the display surface into a coarse layout mode.
package viewport

// Mode is a layout variant.
type Mode string

const (
	Mobile  Mode = "mobile"
	Desktop Mode = "desktop"
)

// Width breakpoints. A width strictly below the breakpoint is mobile.
const (
	// WebBreakpoint is measured in CSS pixels.
	WebBreakpoint = 768

	// TerminalBreakpoint is measured in terminal columns.
	TerminalBreakpoint = 100
)

// Classifier maps a width to a Mode using a single fixed breakpoint.
type Classifier struct {
	Breakpoint int
}

// Web returns a classifier for browser viewport widths.
func Web() Classifier { return Classifier{Breakpoint: WebBreakpoint} }

// Terminal returns a classifier for terminal widths.
func Terminal() Classifier { return Classifier{Breakpoint: TerminalBreakpoint} }

// Classify returns Mobile when 0 < width < Breakpoint and Desktop otherwise.
// Unknown widths (<= 0) classify as Desktop.
func (c Classifier) Classify(width int) Mode {
	if width > 0 && width < c.Breakpoint {
		return Mobile
	}
	return Desktop
}

// Tracker holds the current Mode for a view and reports real transitions.
// It is not safe for concurrent use; feed it from the view's event loop.
type Tracker struct {
	classifier Classifier
	width      int
	mode       Mode
}

// NewTracker returns a tracker seeded with an initial width.
func NewTracker(c Classifier, width int) *Tracker {
	return &Tracker{classifier: c, width: width, mode: c.Classify(width)}
}

// Mode returns the current classification.
func (t *Tracker) Mode() Mode { return t.mode }

// Width returns the last observed width.
func (t *Tracker) Width() int { return t.width }

// Observe records a new width and reports whether the mode changed.
func (t *Tracker) Observe(width int) (Mode, bool) {
	t.width = width
	next := t.classifier.Classify(width)
	changed := next != t.mode
	t.mode = next
	return next, changed
}
