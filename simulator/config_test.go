package simulator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SimConfig)
	}{
		{"negative initial on hand", func(c *SimConfig) { c.InitialOnHand = -1 }},
		{"negative batch cost", func(c *SimConfig) { c.RequestCostPerBatch = -0.5 }},
		{"negative unit cost", func(c *SimConfig) { c.RequestCostPerUnit = -1 }},
		{"negative holding cost", func(c *SimConfig) { c.HoldingCostPerUnitDay = -0.01 }},
		{"negative shortage cost", func(c *SimConfig) { c.ShortageCostPerUnitDay = -1 }},
		{"zero batch size", func(c *SimConfig) { c.RequestBatchSize = 0 }},
		{"negative reorder point", func(c *SimConfig) { c.ReorderPoint = -5 }},
		{"sub-day lead time", func(c *SimConfig) { c.RequestLeadTimeDays = 0.5 }},
		{"negative backlog bound", func(c *SimConfig) { c.MaxBacklogCount = -1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(&config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestNewSimulatorRejectsInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.RequestBatchSize = -10

	_, err := NewSimulator(config)
	require.Error(t, err)

	// Distribution parameters are checked at sampler construction
	config = DefaultConfig()
	config.OrderSizeDistribution = DistributionConfig{Type: DistGamma, Shape: -1, Scale: 4}
	_, err = NewSimulator(config)
	require.Error(t, err)
}

func TestConfigJSONRoundTrip(t *testing.T) {
	config := DefaultConfig()
	config.RandomSeed = 42

	data, err := json.Marshal(config)
	require.NoError(t, err)

	var decoded SimConfig
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, config, decoded)
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	config := DefaultConfig()
	config.OrderSizeDistribution = DistributionConfig{Type: DistUniform, Min: 2, Max: 12}

	data, err := yaml.Marshal(config)
	require.NoError(t, err)

	var decoded SimConfig
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, config, decoded)
}

func TestConfigPartialJSONOverlay(t *testing.T) {
	// cmd/sim_runner unmarshals user files over DefaultConfig, so absent
	// keys must keep their defaults
	config := DefaultConfig()
	require.NoError(t, json.Unmarshal([]byte(`{"reorderPoint": 75}`), &config))

	assert.Equal(t, 75.0, config.ReorderPoint)
	assert.Equal(t, DefaultConfig().RequestBatchSize, config.RequestBatchSize)
	assert.Equal(t, DefaultConfig().OrderCountDistribution, config.OrderCountDistribution)
}
