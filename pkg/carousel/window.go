// Package carousel implements the looping windowed pagination used by the
// homepage carousels.
//
// A [Window] tracks the index of the last visible item of an ordered list.
// Navigation moves that index by a fixed skip size and wraps around both ends,
// so browsing never hits a boundary and there is no out-of-range error to
// report. A [Carousel] pairs a Window with the items it paginates.
//
// # Example
//
//	c := carousel.New(products, carousel.WithSkip(2), carousel.WithSlots(5))
//	c.Next()
//	for _, p := range c.Visible() {
//	    render(p)
//	}
package carousel

// Window is the navigation state of a carousel: the index of the last visible
// item in a list of fixed length. The zero value is an empty window at index 0.
//
// Window is not safe for concurrent use; it is owned by a single view.
type Window struct {
	last   int
	length int
}

// NewWindow returns a window over a list of length items, positioned at index 0.
// Negative lengths are treated as empty.
func NewWindow(length int) Window {
	return Window{length: max(length, 0)}
}

// Index returns the index of the last visible item.
func (w Window) Index() int { return w.last }

// Len returns the length of the list the window paginates.
func (w Window) Len() int { return w.length }

// Empty reports whether there is nothing to navigate.
func (w Window) Empty() bool { return w.length == 0 }

// Advance moves the window forward by skip items, wrapping past the end.
// It reports whether navigation happened; an empty window is left unchanged.
func (w *Window) Advance(skip int) bool {
	if w.Empty() {
		return false
	}
	w.last = wrap(w.last+skip, w.length)
	return true
}

// Retreat moves the window backward by skip items, wrapping past the start.
// The result is always in [0, Len()-1], including when skip exceeds Len().
// It reports whether navigation happened; an empty window is left unchanged.
func (w *Window) Retreat(skip int) bool {
	if w.Empty() {
		return false
	}
	w.last = wrap(w.last-skip, w.length)
	return true
}

// Seek positions the window at index i, wrapped into range. Used to restore
// state carried outside the process (for example in a URL).
func (w *Window) Seek(i int) bool {
	if w.Empty() {
		return false
	}
	w.last = wrap(i, w.length)
	return true
}

// Visible returns the indices of the window of up to size items ending at
// Index(), in display order. Indices wrap, so the window is always full when
// size <= Len().
func (w Window) Visible(size int) []int {
	n := min(size, w.length)
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	first := w.last - n + 1
	for i := range out {
		out[i] = wrap(first+i, w.length)
	}
	return out
}

// NextIndex returns the index Advance(skip) would move to, without moving.
func (w Window) NextIndex(skip int) int {
	w.Advance(skip)
	return w.last
}

// PrevIndex returns the index Retreat(skip) would move to, without moving.
func (w Window) PrevIndex(skip int) int {
	w.Retreat(skip)
	return w.last
}

// wrap normalizes i into [0, n). n must be positive.
func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
