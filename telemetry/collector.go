// Package telemetry provides flock health tracking, event detection and CSV output.
package telemetry

// Collector accumulates events within fixed tick windows and produces WindowStats.
type Collector struct {
	windowTicks uint64

	// Current window tracking
	windowStartTick uint64

	// Event counters for current window
	bites      int
	kills      int
	panicTicks int
	pushes     int

	// Per-tick samples averaged at flush
	predDistSum     float64
	predDistSamples int
	formErrSum      float64
	formErrSamples  int
}

// NewCollector creates a new stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: uint64(windowTicks)}
}

// RecordBites records predator contacts.
func (c *Collector) RecordBites(n int) {
	c.bites += n
}

// RecordKills records sheep deaths.
func (c *Collector) RecordKills(n int) {
	c.kills += n
}

// RecordPanicking records the number of sheep panicking this tick.
func (c *Collector) RecordPanicking(n int) {
	c.panicTicks += n
}

// RecordPushes records robot pushes.
func (c *Collector) RecordPushes(n int) {
	c.pushes += n
}

// SamplePredatorDistance records the distance between the first predator and
// the flock centroid for one tick.
func (c *Collector) SamplePredatorDistance(d float64) {
	c.predDistSum += d
	c.predDistSamples++
}

// SampleFormationError records the mean robot distance to target for one tick.
func (c *Collector) SampleFormationError(e float64) {
	c.formErrSum += e
	c.formErrSamples++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick uint64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// healths holds the health of every live sheep at window end.
func (c *Collector) Flush(currentTick uint64, liveSheep, totalSheep int, healths []float64) WindowStats {
	mean, p10, p50, p90 := ComputeHealthStats(healths)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		LiveSheep:  liveSheep,
		TotalSheep: totalSheep,

		Bites:      c.bites,
		Kills:      c.kills,
		PanicTicks: c.panicTicks,
		Pushes:     c.pushes,

		HealthMean: mean,
		HealthP10:  p10,
		HealthP50:  p50,
		HealthP90:  p90,
	}
	if totalSheep > 0 {
		stats.SurvivalRate = float64(liveSheep) / float64(totalSheep)
	}
	if c.predDistSamples > 0 {
		stats.PredatorDistance = c.predDistSum / float64(c.predDistSamples)
	}
	if c.formErrSamples > 0 {
		stats.FormationError = c.formErrSum / float64(c.formErrSamples)
	}

	c.Reset(currentTick)
	return stats
}

// Reset clears the counters and starts a new window at tick.
func (c *Collector) Reset(tick uint64) {
	*c = Collector{windowTicks: c.windowTicks, windowStartTick: tick}
}
