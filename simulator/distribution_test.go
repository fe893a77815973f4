package simulator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

func TestDistributionTypeString(t *testing.T) {
	tests := []struct {
		dt       DistributionType
		expected string
	}{
		{DistPoisson, "poisson"},
		{DistGamma, "gamma"},
		{DistUniform, "uniform"},
		{DistConstant, "constant"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, tc.dt.String())

		parsed, err := ParseDistributionType(tc.expected)
		require.NoError(t, err)
		assert.Equal(t, tc.dt, parsed)
	}

	_, err := ParseDistributionType("zipf")
	assert.Error(t, err)
}

func TestDistributionTypeJSONRoundTrip(t *testing.T) {
	cfg := DistributionConfig{Type: DistGamma, Shape: 2.0, Scale: 4.0}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"gamma"`)

	var decoded DistributionConfig
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, cfg, decoded)

	var bad DistributionConfig
	assert.Error(t, json.Unmarshal([]byte(`{"type":"bogus"}`), &bad))
}

func TestDistributionTypeYAMLRoundTrip(t *testing.T) {
	cfg := DistributionConfig{Type: DistPoisson, Mean: 3.0}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var decoded DistributionConfig
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, cfg, decoded)
}

func TestPoissonCountSampler(t *testing.T) {
	sampler, err := NewCountSampler(
		DistributionConfig{Type: DistPoisson, Mean: 3.0},
		rand.NewSource(12345))
	require.NoError(t, err)

	n := 10000
	sum := 0
	for i := 0; i < n; i++ {
		count := sampler.SampleCount()
		require.GreaterOrEqual(t, count, 0)
		sum += count
	}

	mean := float64(sum) / float64(n)
	assert.InDelta(t, 3.0, mean, 0.15, "sample mean should approach lambda")
}

func TestConstantCountSampler(t *testing.T) {
	sampler, err := NewCountSampler(
		DistributionConfig{Type: DistConstant, Value: 4},
		rand.NewSource(1))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		assert.Equal(t, 4, sampler.SampleCount())
	}
}

func TestGammaSizeSampler(t *testing.T) {
	// Gamma(shape=2, scale=4): mean = 8, all samples positive
	sampler, err := NewSizeSampler(
		DistributionConfig{Type: DistGamma, Shape: 2.0, Scale: 4.0},
		rand.NewSource(54321))
	require.NoError(t, err)

	n := 10000
	sum := 0.0
	for i := 0; i < n; i++ {
		v := sampler.SampleSize()
		require.Greater(t, v, 0.0)
		sum += v
	}

	assert.InDelta(t, 8.0, sum/float64(n), 0.5, "sample mean should approach shape*scale")
}

func TestUniformSizeSampler(t *testing.T) {
	sampler, err := NewSizeSampler(
		DistributionConfig{Type: DistUniform, Min: 5.0, Max: 15.0},
		rand.NewSource(99))
	require.NoError(t, err)

	n := 10000
	sum := 0.0
	for i := 0; i < n; i++ {
		v := sampler.SampleSize()
		require.GreaterOrEqual(t, v, 5.0)
		require.Less(t, v, 15.0)
		sum += v
	}

	assert.InDelta(t, 10.0, sum/float64(n), 0.3)
}

func TestConstantSizeSampler(t *testing.T) {
	sampler, err := NewSizeSampler(
		DistributionConfig{Type: DistConstant, Value: 7.5},
		rand.NewSource(1))
	require.NoError(t, err)
	assert.Equal(t, 7.5, sampler.SampleSize())
}

func TestSamplerConfigValidation(t *testing.T) {
	src := rand.NewSource(1)

	countCases := []DistributionConfig{
		{Type: DistPoisson, Mean: 0},             // lambda must be positive
		{Type: DistConstant, Value: -1},          // negative count
		{Type: DistConstant, Value: 2.5},         // fractional count
		{Type: DistGamma, Shape: 2.0, Scale: 4.0}, // counts must be integers
		{Type: DistUniform, Min: 1, Max: 5},
	}
	for _, cfg := range countCases {
		_, err := NewCountSampler(cfg, src)
		assert.Error(t, err, "count config %+v should be rejected", cfg)
	}

	sizeCases := []DistributionConfig{
		{Type: DistGamma, Shape: 0, Scale: 4.0},
		{Type: DistGamma, Shape: 2.0, Scale: 0},
		{Type: DistUniform, Min: 0, Max: 5},
		{Type: DistUniform, Min: 5, Max: 5},
		{Type: DistConstant, Value: 0},
		{Type: DistPoisson, Mean: 3.0}, // sizes are continuous
	}
	for _, cfg := range sizeCases {
		_, err := NewSizeSampler(cfg, src)
		assert.Error(t, err, "size config %+v should be rejected", cfg)
	}
}

func TestIndependentSourcesAreDeterministic(t *testing.T) {
	draw := func() []float64 {
		sampler, err := NewSizeSampler(
			DistributionConfig{Type: DistGamma, Shape: 2.0, Scale: 4.0},
			rand.NewSource(777))
		require.NoError(t, err)
		out := make([]float64, 20)
		for i := range out {
			out[i] = sampler.SampleSize()
		}
		return out
	}

	assert.Equal(t, draw(), draw())
}
