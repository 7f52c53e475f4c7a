package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of a simulation tick.
type Phase int

// Phases in tick order.
const (
	PhaseFormation Phase = iota
	PhaseFlocking
	PhasePursuit
	PhaseDefense
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"formation", "flocking", "pursuit", "defense", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

type tickTiming struct {
	total     time.Duration
	phases    [numPhases]time.Duration
	liveSheep int
}

// PerfCollector keeps the timing of the last N ticks. Flocking cost is also
// reported per live sheep, since it dominates and grows with the flock.
type PerfCollector struct {
	now func() time.Time

	ring []tickTiming
	next int
	n    int

	cur        tickTiming
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks (default 60).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{now: time.Now, ring: make([]tickTiming, windowSize)}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.cur = tickTiming{}
	p.tickStart = p.now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	t := p.now()
	p.closePhase(t)
	p.phase, p.phaseStart, p.inPhase = phase, t, true
}

func (p *PerfCollector) closePhase(t time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += t.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// EndTick records the tick with the number of sheep alive during it.
func (p *PerfCollector) EndTick(liveSheep int) {
	t := p.now()
	p.closePhase(t)
	p.cur.total = t.Sub(p.tickStart)
	p.cur.liveSheep = liveSheep

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.n = min(p.n+1, len(p.ring))
}

// RecordFrame records the interval since the previous frame in graphics mode.
func (p *PerfCollector) RecordFrame() {
	t := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = t.Sub(p.lastFrame)
	}
	p.lastFrame = t
}

// PerfStats summarizes the collector's window.
type PerfStats struct {
	Ticks            int
	AvgTick          time.Duration
	MaxTick          time.Duration
	PhaseAvg         [numPhases]time.Duration
	PhasePct         [numPhases]float64
	FlockingPerSheep time.Duration // mean flocking time / mean live sheep
	TicksPerSecond   float64
	FPS              float64
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.n == 0 {
		return s
	}

	var total time.Duration
	var sheep int
	for _, tt := range p.ring[:p.n] {
		total += tt.total
		s.MaxTick = max(s.MaxTick, tt.total)
		for ph, d := range tt.phases {
			s.PhaseAvg[ph] += d
		}
		sheep += tt.liveSheep
	}

	count := time.Duration(p.n)
	s.Ticks = p.n
	s.AvgTick = total / count
	for ph := range s.PhaseAvg {
		s.PhaseAvg[ph] /= count
		if s.AvgTick > 0 {
			s.PhasePct[ph] = 100 * float64(s.PhaseAvg[ph]) / float64(s.AvgTick)
		}
	}
	if sheep > 0 {
		s.FlockingPerSheep = s.PhaseAvg[PhaseFlocking] * count / time.Duration(sheep)
	}
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Int64("flocking_ns_per_sheep", s.FlockingPerSheep.Nanoseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph := Phase(0); ph < numPhases; ph++ {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(s.PhasePct[ph]*10))/10))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the summary at Info.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd          uint64  `csv:"window_end"`
	Ticks              int     `csv:"ticks"`
	AvgTickUS          int64   `csv:"avg_tick_us"`
	MaxTickUS          int64   `csv:"max_tick_us"`
	FlockingNSPerSheep int64   `csv:"flocking_ns_per_sheep"`
	TicksPerSec        float64 `csv:"ticks_per_sec"`
	FPS                float64 `csv:"fps"`
	FormationPct       float64 `csv:"formation_pct"`
	FlockingPct        float64 `csv:"flocking_pct"`
	PursuitPct         float64 `csv:"pursuit_pct"`
	DefensePct         float64 `csv:"defense_pct"`
	TelemetryPct       float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the summary for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:          windowEnd,
		Ticks:              s.Ticks,
		AvgTickUS:          s.AvgTick.Microseconds(),
		MaxTickUS:          s.MaxTick.Microseconds(),
		FlockingNSPerSheep: s.FlockingPerSheep.Nanoseconds(),
		TicksPerSec:        s.TicksPerSecond,
		FPS:                s.FPS,
		FormationPct:       s.PhasePct[PhaseFormation],
		FlockingPct:        s.PhasePct[PhaseFlocking],
		PursuitPct:         s.PhasePct[PhasePursuit],
		DefensePct:         s.PhasePct[PhaseDefense],
		TelemetryPct:       s.PhasePct[PhaseTelemetry],
	}
}
