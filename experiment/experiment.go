// Package experiment drives batches of independent simulation
// replications and aggregates their per-replication totals. Replications
// share no state, so they run concurrently over a small worker pool; a
// failed replication (e.g. backlog divergence) is recorded as a
// first-class result and never aborts the batch.
package experiment

import (
	"fmt"
	"math"
	mrand "math/rand"
	"os"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/stocksim/stocksim/simulator"
)

// Config describes one batch experiment
type Config struct {
	Replications  int                 `yaml:"replications" json:"replications"`
	HorizonDays   float64             `yaml:"horizon_days" json:"horizonDays"`
	Seed          int64               `yaml:"seed" json:"seed"`                    // Base seed; replication i uses Seed+i (0 = time-based)
	Workers       int                 `yaml:"workers" json:"workers"`              // Concurrent replications (0 = NumCPU)
	HistogramBins int                 `yaml:"histogram_bins" json:"histogramBins"` // Bins for the total-cost histogram (0 = default 20)
	Simulation    simulator.SimConfig `yaml:"simulation" json:"simulation"`
}

// DefaultConfig returns a small smoke-test experiment over the default policy
func DefaultConfig() Config {
	return Config{
		Replications:  100,
		HorizonDays:   365,
		Seed:          0,
		Workers:       0,
		HistogramBins: 20,
		Simulation:    simulator.DefaultConfig(),
	}
}

// LoadConfig reads an experiment spec from a YAML file
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading experiment config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing experiment config: %w", err)
	}
	return cfg, nil
}

// Validate checks if experiment parameters are reasonable
func (c *Config) Validate() error {
	if c.Replications < 1 {
		return fmt.Errorf("replications must be >= 1")
	}
	if c.HorizonDays <= 0 {
		return fmt.Errorf("horizon_days must be > 0")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if c.HistogramBins < 0 {
		return fmt.Errorf("histogram_bins must be >= 0")
	}
	return c.Simulation.Validate()
}

// ReplicationResult holds the per-replication totals of one engine run.
// FractionBacklogged and MeanDelayDays are nil when the replication
// fulfilled no orders (the statistics are undefined, not zero).
type ReplicationResult struct {
	Replication        int             `json:"replication"`
	Seed               int64           `json:"seed"`
	Days               int             `json:"days"`
	FinalOnHand        float64         `json:"finalOnHand"`
	OrdersFulfilled    int             `json:"ordersFulfilled"`
	Costs              simulator.Costs `json:"costs"`
	FractionBacklogged *float64        `json:"fractionBacklogged,omitempty"`
	MeanDelayDays      *float64        `json:"meanDelayDays,omitempty"`
	Error              string          `json:"error,omitempty"`
}

// Failed reports whether the replication aborted before reaching the horizon
func (r ReplicationResult) Failed() bool {
	return r.Error != ""
}

// Run executes the configured number of replications and aggregates them
func Run(cfg Config) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseSeed := cfg.Seed
	if baseSeed == 0 {
		baseSeed = mrand.Int63()
		logrus.Infof("using time-based base seed %d", baseSeed)
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.Replications {
		workers = cfg.Replications
	}

	jobs := make(chan int)
	results := make([]ReplicationResult, cfg.Replications)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = runReplication(cfg, i, baseSeed+int64(i))
			}
		}()
	}
	for i := 0; i < cfg.Replications; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return summarize(cfg, results), nil
}

// runReplication runs a single engine to the horizon. Every engine gets
// its own seed and shares nothing with its siblings.
func runReplication(cfg Config, idx int, seed int64) ReplicationResult {
	result := ReplicationResult{Replication: idx, Seed: seed}

	simCfg := cfg.Simulation
	simCfg.RandomSeed = seed
	sim, err := simulator.NewSimulator(simCfg)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if err := sim.AdvanceUntil(cfg.HorizonDays); err != nil {
		// Divergence and friends: record, don't crash the batch
		logrus.Warnf("replication %d failed: %v", idx, err)
		result.Error = err.Error()
	}

	result.Days = len(sim.Snapshots())
	result.FinalOnHand = sim.OnHand()
	result.OrdersFulfilled = len(sim.Fulfilled())
	result.Costs = sim.Costs()

	if frac := sim.FractionBacklogged(); !math.IsNaN(frac) {
		result.FractionBacklogged = &frac
	}
	if delays := sim.FulfillmentDelays(); len(delays) > 0 {
		mean := 0.0
		for _, d := range delays {
			mean += d
		}
		mean /= float64(len(delays))
		result.MeanDelayDays = &mean
	}
	return result
}
