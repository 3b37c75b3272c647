package engine

// Clock hands out check-point indices.
//
// Indices start at 1 and grow by one per check-point. A Clock belongs to a
// single interpreter run and is not safe for concurrent use.
type Clock struct {
	last int
}

// NewClock creates a clock whose first index is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next index is start+1.
// Used to resume numbering after an earlier run on the same output base.
func NewClockAt(start int) *Clock {
	return &Clock{last: start}
}

// Next returns the next check-point index.
func (c *Clock) Next() int {
	c.last++
	return c.last
}

// Current returns the last index handed out, or the start value.
func (c *Clock) Current() int {
	return c.last
}
