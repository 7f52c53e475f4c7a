package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/game"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	lastResult  RunSummary // mean over seeds from the most recent Evaluate call
}

// RunSummary is the outcome of one run, or a mean over runs.
type RunSummary struct {
	Survival    float64 // live / total sheep at the end
	HealthRatio float64 // mean health ratio of live sheep
	Ticks       uint64  // ticks simulated
}

// Score is the quantity being maximized.
func (r RunSummary) Score() float64 {
	return r.Survival * r.HealthRatio
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastResult returns the mean summary from the most recent evaluation.
func (fe *FitnessEvaluator) LastResult() RunSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResult
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated mean over seeds of survival times health ratio.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]RunSummary, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	scores := make([]float64, len(results))
	survival := make([]float64, len(results))
	health := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score()
		survival[i] = r.Survival
		health[i] = r.HealthRatio
	}

	fitness := 0.0
	if len(scores) > 0 {
		fitness = -stat.Mean(scores, nil)
	}

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
	}
	if len(results) > 0 {
		fe.lastResult = RunSummary{
			Survival:    stat.Mean(survival, nil),
			HealthRatio: stat.Mean(health, nil),
			Ticks:       results[0].Ticks,
		}
	}
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless run until the flock is wiped out
// or maxTicks is reached. An invalid parameter set scores zero.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) RunSummary {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	w, err := game.New(cfg, seed)
	if err != nil {
		return RunSummary{}
	}

	for i := 0; i < fe.maxTicks && w.LiveSheep() > 0; i++ {
		w.Step()
	}
	return Summarize(w)
}

// Summarize reports the survival and health of w's flock.
func Summarize(w *game.World) RunSummary {
	r := RunSummary{Ticks: w.Tick()}
	if w.TotalSheep() == 0 {
		return r
	}
	r.Survival = float64(w.LiveSheep()) / float64(w.TotalSheep())

	var ratios []float64
	for _, s := range w.Sheep() {
		if s.Alive {
			ratios = append(ratios, s.HealthRatio())
		}
	}
	if len(ratios) > 0 {
		r.HealthRatio = stat.Mean(ratios, nil)
	}
	return r
}
