package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksim/stocksim/simulator"
)

// deterministicConfig uses constant distributions so every replication
// produces identical totals regardless of its seed
func deterministicConfig() Config {
	cfg := DefaultConfig()
	cfg.Replications = 8
	cfg.HorizonDays = 9.0
	cfg.Seed = 1
	cfg.Workers = 4
	cfg.Simulation = simulator.SimConfig{
		InitialOnHand:          100.0,
		RequestCostPerBatch:    32.0,
		RequestCostPerUnit:     3.0,
		HoldingCostPerUnitDay:  0.05,
		ShortageCostPerUnitDay: 1.0,
		RequestBatchSize:       100.0,
		ReorderPoint:           30.0,
		RequestLeadTimeDays:    1.0,
		OrderCountDistribution: simulator.DistributionConfig{Type: simulator.DistConstant, Value: 2},
		OrderSizeDistribution:  simulator.DistributionConfig{Type: simulator.DistConstant, Value: 5},
		MaxBacklogCount:        1_000_000,
		RandomSeed:             1,
	}
	return cfg
}

func TestRunDeterministicBatch(t *testing.T) {
	summary, err := Run(deterministicConfig())
	require.NoError(t, err)

	require.Equal(t, 8, summary.Replications)
	require.Equal(t, 8, summary.Completed)
	require.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Results, 8)

	// Constant demand: every replication is identical, so the spread is
	// exactly zero and the mean equals any single total
	first := summary.Results[0]
	require.False(t, first.Failed())
	assert.Greater(t, first.Costs.Total, 0.0)
	for _, r := range summary.Results {
		assert.Equal(t, first.Costs, r.Costs)
		assert.Equal(t, first.Days, r.Days)
		assert.Equal(t, first.FinalOnHand, r.FinalOnHand)
	}
	assert.InDelta(t, first.Costs.Total, summary.MeanTotalCost, 1e-9)
	assert.InDelta(t, 0.0, summary.StdDevTotalCost, 1e-9)
	assert.InDelta(t, first.Costs.InventoryVariable, summary.MeanVariableCost, 1e-9)
	assert.InDelta(t, first.Costs.Total/float64(first.Days), summary.MeanCostPerDay, 1e-9)

	// All values equal: degenerate histogram with everything in bin 0
	require.NotNil(t, summary.TotalCostHistogram)
	assert.Equal(t, 8, summary.TotalCostHistogram.Counts[0])
	assert.Equal(t, 0.0, summary.TotalCostHistogram.BinWidth)
}

func TestRunResultsKeepSubmissionOrder(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Replications = 5
	cfg.Seed = 100

	summary, err := Run(cfg)
	require.NoError(t, err)

	for i, r := range summary.Results {
		assert.Equal(t, i, r.Replication)
		assert.Equal(t, int64(100+i), r.Seed)
	}
}

func TestRunStochasticBatchIsSeedReproducible(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Replications = 6
	cfg.HorizonDays = 30.0
	cfg.Seed = 42
	cfg.Workers = 3

	first, err := Run(cfg)
	require.NoError(t, err)
	second, err := Run(cfg)
	require.NoError(t, err)

	require.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.MeanTotalCost, second.MeanTotalCost)
}

func TestRunRecordsDivergedReplications(t *testing.T) {
	cfg := deterministicConfig()
	cfg.Replications = 4
	// No stock, no tolerance: every replication diverges on day 0
	cfg.Simulation.InitialOnHand = 0
	cfg.Simulation.ReorderPoint = 0
	cfg.Simulation.MaxBacklogCount = 0
	cfg.Simulation.OrderCountDistribution = simulator.DistributionConfig{Type: simulator.DistConstant, Value: 1}
	cfg.Simulation.OrderSizeDistribution = simulator.DistributionConfig{Type: simulator.DistConstant, Value: 10}

	summary, err := Run(cfg)
	require.NoError(t, err, "a failed replication must not abort the batch")

	assert.Equal(t, 4, summary.Failed)
	assert.Equal(t, 0, summary.Completed)
	for _, r := range summary.Results {
		assert.True(t, r.Failed())
		assert.Contains(t, r.Error, "diverged")
		assert.Equal(t, 1, r.Days, "the day that diverged is still logged")
	}

	// No completed replications: no cost statistics, no histogram
	assert.Equal(t, 0.0, summary.MeanTotalCost)
	assert.Nil(t, summary.MeanFractionBacklogged)
	assert.Nil(t, summary.TotalCostHistogram)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Replications = 0
	_, err := Run(cfg)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.HorizonDays = -1
	_, err = Run(cfg)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.Simulation.RequestBatchSize = 0
	_, err = Run(cfg)
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "experiment.yaml")
	spec := `
replications: 50
horizon_days: 180
seed: 7
histogram_bins: 10
simulation:
  initial_on_hand: 80
  reorder_point: 25
  order_size_distribution:
    type: uniform
    min: 2
    max: 12
`
	require.NoError(t, os.WriteFile(path, []byte(spec), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Replications)
	assert.Equal(t, 180.0, cfg.HorizonDays)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 10, cfg.HistogramBins)
	assert.Equal(t, 80.0, cfg.Simulation.InitialOnHand)
	assert.Equal(t, 25.0, cfg.Simulation.ReorderPoint)
	assert.Equal(t, simulator.DistUniform, cfg.Simulation.OrderSizeDistribution.Type)
	// Keys absent from the file keep their defaults
	assert.Equal(t, simulator.DefaultConfig().RequestBatchSize, cfg.Simulation.RequestBatchSize)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
