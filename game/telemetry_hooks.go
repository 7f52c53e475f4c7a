package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/telemetry"
)

// TelemetryOptions controls stats windows and where they go.
type TelemetryOptions struct {
	StatsWindow int  // ticks per window (0 = config value)
	LogStats    bool // log windows, perf and bookmarks via slog
	Output      *telemetry.OutputManager
	OnStats     func(telemetry.WindowStats)
	OnBookmark  func(telemetry.Bookmark)
}

// SetTelemetry installs telemetry sinks and restarts the current window.
func (w *World) SetTelemetry(opts TelemetryOptions) {
	if opts.StatsWindow <= 0 {
		opts.StatsWindow = w.cfg.Telemetry.StatsWindow
	}
	w.telemetryOpts = opts
	w.collector = telemetry.NewCollector(opts.StatsWindow)
	w.collector.Reset(w.tick)
}

// Perf returns the rolling performance statistics.
func (w *World) Perf() telemetry.PerfStats {
	return w.perfCollector.Stats()
}

// RecordFrame records frame timing in graphics mode.
func (w *World) RecordFrame() {
	w.perfCollector.RecordFrame()
}

// recordTick feeds this tick's events into the collector and logs kills.
func (w *World) recordTick() {
	ev := &w.events
	w.collector.RecordBites(ev.Bites)
	w.collector.RecordKills(len(ev.Kills))
	w.collector.RecordPanicking(ev.Panicking)
	w.collector.RecordPushes(ev.Pushes)

	for _, k := range ev.Kills {
		w.liveSheep--
		slog.Debug("sheep killed",
			"tick", w.tick,
			"sheep", k.Sheep,
			"x", k.At.X,
			"y", k.At.Y,
			"remaining", w.liveSheep,
		)
	}
	if len(ev.Kills) > 0 && w.liveSheep == 0 {
		slog.Info("flock wiped out", "tick", w.tick, "sheep", w.totalSheep)
	}

	if centroid, ok := w.Centroid(); ok {
		if preds := w.Predators(); len(preds) > 0 {
			w.collector.SamplePredatorDistance(r2.Norm(r2.Sub(preds[0], centroid)))
		}
	}

	var errSum float64
	n := 0
	query := w.robotFilter.Query()
	for query.Next() {
		pos, role := query.Get()
		errSum += r2.Norm(r2.Sub(role.Target, pos.Vec))
		n++
	}
	if n > 0 {
		w.collector.SampleFormationError(errSum / float64(n))
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (w *World) flushTelemetry() {
	if !w.collector.ShouldFlush(w.tick) {
		return
	}

	stats := w.collector.Flush(w.tick, w.liveSheep, w.totalSheep, w.sampleHealth())
	perfStats := w.perfCollector.Stats()
	opts := &w.telemetryOpts

	if opts.OnStats != nil {
		opts.OnStats(stats)
	}

	if opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if opts.Output != nil {
		if err := opts.Output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := opts.Output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range w.bookmarkDetector.Check(stats) {
		if opts.LogStats {
			bm.LogBookmark()
		}
		if opts.OnBookmark != nil {
			opts.OnBookmark(bm)
		}
		if opts.Output != nil {
			if err := opts.Output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sampleHealth collects the health of live sheep.
func (w *World) sampleHealth() []float64 {
	healths := make([]float64, 0, w.liveSheep)
	query := w.sheepFilter.Query()
	for query.Next() {
		_, _, health := query.Get()
		if health.Alive {
			healths = append(healths, health.Value)
		}
	}
	return healths
}
