package carousel

// DefaultSkip is the number of items moved per navigation step.
const DefaultSkip = 2

// DefaultSlots is the number of items shown at once when no layout has been
// applied yet.
const DefaultSlots = 1

// Carousel paginates an immutable list of items with a looping [Window].
type Carousel[T any] struct {
	items  []T
	window Window
	skip   int
	slots  int
}

// Option configures a Carousel.
type Option func(*config)

type config struct {
	skip  int
	slots int
	start int
}

// WithSkip sets the skip size. Non-positive values are ignored.
func WithSkip(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.skip = n
		}
	}
}

// WithSlots sets how many items are visible at once. Non-positive values are
// ignored.
func WithSlots(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.slots = n
		}
	}
}

// WithStart positions the window at index i (wrapped) instead of 0.
func WithStart(i int) Option {
	return func(c *config) { c.start = i }
}

// New creates a carousel over items. The slice is copied; later changes to the
// caller's slice do not affect the carousel.
func New[T any](items []T, opts ...Option) *Carousel[T] {
	cfg := config{skip: DefaultSkip, slots: DefaultSlots}
	for _, opt := range opts {
		opt(&cfg)
	}
	owned := make([]T, len(items))
	copy(owned, items)

	c := &Carousel[T]{
		items:  owned,
		window: NewWindow(len(owned)),
		skip:   cfg.skip,
		slots:  cfg.slots,
	}
	c.window.Seek(cfg.start)
	return c
}

// Len returns the number of items.
func (c *Carousel[T]) Len() int { return len(c.items) }

// Skip returns the configured skip size.
func (c *Carousel[T]) Skip() int { return c.skip }

// Slots returns the number of visible items requested by the layout.
func (c *Carousel[T]) Slots() int { return c.slots }

// Index returns the index of the last visible item.
func (c *Carousel[T]) Index() int { return c.window.Index() }

// Window returns a copy of the navigation state.
func (c *Carousel[T]) Window() Window { return c.window }

// SetSlots changes how many items are visible. Non-positive values are ignored.
func (c *Carousel[T]) SetSlots(n int) {
	if n > 0 {
		c.slots = n
	}
}

// Next advances by the skip size. It is a no-op on an empty carousel.
func (c *Carousel[T]) Next() bool { return c.window.Advance(c.skip) }

// Prev retreats by the skip size. It is a no-op on an empty carousel.
func (c *Carousel[T]) Prev() bool { return c.window.Retreat(c.skip) }

// Seek positions the window at index i, wrapped into range.
func (c *Carousel[T]) Seek(i int) bool { return c.window.Seek(i) }

// Visible returns the items of the current window in display order.
func (c *Carousel[T]) Visible() []T {
	idx := c.window.Visible(c.slots)
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = c.items[j]
	}
	return out
}

// Items returns a copy of all items.
func (c *Carousel[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}
