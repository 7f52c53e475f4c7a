package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick uint64 `csv:"-"`
	WindowEndTick   uint64 `csv:"window_end"`

	// Flock at window end
	LiveSheep    int     `csv:"live_sheep"`
	TotalSheep   int     `csv:"total_sheep"`
	SurvivalRate float64 `csv:"survival_rate"`

	// Events during window
	Bites      int `csv:"bites"`
	Kills      int `csv:"kills"`
	PanicTicks int `csv:"panic_ticks"` // sheep-ticks spent panicking
	Pushes     int `csv:"pushes"`

	// Health distribution of live sheep (sampled at window end)
	HealthMean float64 `csv:"health_mean"`
	HealthP10  float64 `csv:"health_p10"`
	HealthP50  float64 `csv:"health_p50"`
	HealthP90  float64 `csv:"health_p90"`

	// Window averages
	PredatorDistance float64 `csv:"predator_distance"` // first predator to flock centroid
	FormationError   float64 `csv:"formation_error"`   // robot distance to assigned slot
}

// Percentile returns the p-th empirical quantile of a sorted slice.
// p is clamped to [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeHealthStats calculates mean and percentiles from health values.
func ComputeHealthStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	// Sort for percentiles
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Int("live_sheep", s.LiveSheep),
		slog.Int("total_sheep", s.TotalSheep),
		slog.Float64("survival_rate", s.SurvivalRate),
		slog.Int("bites", s.Bites),
		slog.Int("kills", s.Kills),
		slog.Int("panic_ticks", s.PanicTicks),
		slog.Int("pushes", s.Pushes),
		slog.Float64("health_mean", s.HealthMean),
		slog.Float64("health_p10", s.HealthP10),
		slog.Float64("health_p50", s.HealthP50),
		slog.Float64("health_p90", s.HealthP90),
		slog.Float64("predator_distance", s.PredatorDistance),
		slog.Float64("formation_error", s.FormationError),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"live_sheep", s.LiveSheep,
		"kills", s.Kills,
		"bites", s.Bites,
		"pushes", s.Pushes,
		"panic_ticks", s.PanicTicks,
		"health_p50", s.HealthP50,
		"predator_distance", s.PredatorDistance,
		"formation_error", s.FormationError,
	)
}
