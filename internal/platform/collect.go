package platform

// Collector accumulates records handed out by a window-system enumeration
// callback. The callback only ever sees Add, so no native pointer to the
// backing slice escapes.
type Collector[T any] struct {
	items []T
	keep  func(T) bool
}

// NewCollector returns a Collector that keeps records accepted by keep. A nil
// keep accepts everything.
func NewCollector[T any](keep func(T) bool) *Collector[T] {
	return &Collector[T]{keep: keep}
}

// Add offers a record. It always returns true so it can be used directly as
// an enumeration callback's "continue" result.
func (c *Collector[T]) Add(item T) bool {
	if c.keep == nil || c.keep(item) {
		c.items = append(c.items, item)
	}
	return true
}

// Items returns the collected records in enumeration order.
func (c *Collector[T]) Items() []T {
	return c.items
}
