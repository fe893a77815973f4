package simulator

import (
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DistributionType represents the supported demand distribution families
type DistributionType int

const (
	DistPoisson DistributionType = iota
	DistGamma
	DistUniform
	DistConstant
)

// String returns the string representation of DistributionType
func (dt DistributionType) String() string {
	switch dt {
	case DistPoisson:
		return "poisson"
	case DistGamma:
		return "gamma"
	case DistUniform:
		return "uniform"
	case DistConstant:
		return "constant"
	default:
		return fmt.Sprintf("unknown(%d)", int(dt))
	}
}

// ParseDistributionType parses a string into a DistributionType
func ParseDistributionType(s string) (DistributionType, error) {
	switch s {
	case "poisson":
		return DistPoisson, nil
	case "gamma":
		return DistGamma, nil
	case "uniform":
		return DistUniform, nil
	case "constant":
		return DistConstant, nil
	default:
		return DistConstant, fmt.Errorf("invalid DistributionType: %s (must be 'poisson', 'gamma', 'uniform', or 'constant')", s)
	}
}

// MarshalJSON implements json.Marshaler for DistributionType
func (dt DistributionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.String())
}

// UnmarshalJSON implements json.Unmarshaler for DistributionType
func (dt *DistributionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDistributionType(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for DistributionType
func (dt DistributionType) MarshalYAML() (interface{}, error) {
	return dt.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for DistributionType
func (dt *DistributionType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDistributionType(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// DistributionConfig holds the parameters of one demand distribution.
// Only the fields relevant to the chosen family are read:
//
//	poisson:  Mean (lambda)
//	gamma:    Shape, Scale (mean = Shape*Scale)
//	uniform:  Min, Max
//	constant: Value
type DistributionConfig struct {
	Type  DistributionType `json:"type" yaml:"type"`
	Mean  float64          `json:"mean,omitempty" yaml:"mean,omitempty"`
	Shape float64          `json:"shape,omitempty" yaml:"shape,omitempty"`
	Scale float64          `json:"scale,omitempty" yaml:"scale,omitempty"`
	Min   float64          `json:"min,omitempty" yaml:"min,omitempty"`
	Max   float64          `json:"max,omitempty" yaml:"max,omitempty"`
	Value float64          `json:"value,omitempty" yaml:"value,omitempty"`
}

// CountSampler draws "how many orders arrive today" variates.
// Implementations are pure functions of their random source and never
// touch engine state.
type CountSampler interface {
	SampleCount() int
}

// SizeSampler draws "how large is this order" variates
type SizeSampler interface {
	SampleSize() float64
}

// NewCountSampler builds the daily order-count sampler for cfg.
// Counts must be non-negative integers, so only the poisson and constant
// families are accepted.
func NewCountSampler(cfg DistributionConfig, src rand.Source) (CountSampler, error) {
	switch cfg.Type {
	case DistPoisson:
		if cfg.Mean <= 0 {
			return nil, ErrInvalidConfig("poisson count distribution requires mean > 0")
		}
		return &poissonCount{dist: distuv.Poisson{Lambda: cfg.Mean, Src: src}}, nil
	case DistConstant:
		if cfg.Value < 0 || cfg.Value != math.Trunc(cfg.Value) {
			return nil, ErrInvalidConfig("constant count distribution requires a non-negative integer value")
		}
		return &constantCount{n: int(cfg.Value)}, nil
	default:
		return nil, ErrInvalidConfig(fmt.Sprintf("order count distribution must be 'poisson' or 'constant', got %q", cfg.Type))
	}
}

// NewSizeSampler builds the order-size sampler for cfg.
// Sizes must be positive reals, so gamma, uniform and constant are accepted.
func NewSizeSampler(cfg DistributionConfig, src rand.Source) (SizeSampler, error) {
	switch cfg.Type {
	case DistGamma:
		if cfg.Shape <= 0 || cfg.Scale <= 0 {
			return nil, ErrInvalidConfig("gamma size distribution requires shape > 0 and scale > 0")
		}
		// distuv parameterizes Gamma by rate; Beta = 1/scale
		return &gammaSize{dist: distuv.Gamma{Alpha: cfg.Shape, Beta: 1.0 / cfg.Scale, Src: src}}, nil
	case DistUniform:
		if cfg.Min <= 0 || cfg.Max <= cfg.Min {
			return nil, ErrInvalidConfig("uniform size distribution requires 0 < min < max")
		}
		return &uniformSize{dist: distuv.Uniform{Min: cfg.Min, Max: cfg.Max, Src: src}}, nil
	case DistConstant:
		if cfg.Value <= 0 {
			return nil, ErrInvalidConfig("constant size distribution requires value > 0")
		}
		return &constantSize{v: cfg.Value}, nil
	default:
		return nil, ErrInvalidConfig(fmt.Sprintf("order size distribution must be 'gamma', 'uniform', or 'constant', got %q", cfg.Type))
	}
}

type poissonCount struct {
	dist distuv.Poisson
}

func (p *poissonCount) SampleCount() int {
	return int(p.dist.Rand())
}

type constantCount struct {
	n int
}

func (c *constantCount) SampleCount() int { return c.n }

type gammaSize struct {
	dist distuv.Gamma
}

func (g *gammaSize) SampleSize() float64 {
	return g.dist.Rand()
}

type uniformSize struct {
	dist distuv.Uniform
}

func (u *uniformSize) SampleSize() float64 {
	return u.dist.Rand()
}

type constantSize struct {
	v float64
}

func (c *constantSize) SampleSize() float64 { return c.v }
