package systems

import "gonum.org/v1/gonum/spatial/r2"

// Kill records a sheep whose health reached zero.
type Kill struct {
	Sheep int // creation index
	At    r2.Vec
}

// TickEvents collects what happened during one tick.
type TickEvents struct {
	Panicking int
	Bites     int
	Kills     []Kill
	Pushes    int
}

// Reset clears the events, keeping allocated storage.
func (e *TickEvents) Reset() {
	e.Panicking = 0
	e.Bites = 0
	e.Kills = e.Kills[:0]
	e.Pushes = 0
}
