package simulator

// SimConfig holds all parameters of one replication of the inventory
// process: the fixed (reorder point, batch size) policy being evaluated,
// the cost rates, and the demand distributions.
//
// Tags carry both JSON (cmd/sim_runner config files, cmd/server wire
// format) and YAML (experiment specs).
type SimConfig struct {
	// Initial state
	InitialOnHand float64 `json:"initialOnHand" yaml:"initial_on_hand"` // Stock on hand at t=0

	// Cost rates
	RequestCostPerBatch    float64 `json:"requestCostPerBatch" yaml:"request_cost_per_batch"`         // Fixed cost charged per replenishment request
	RequestCostPerUnit     float64 `json:"requestCostPerUnit" yaml:"request_cost_per_unit"`           // Cost per unit requested
	HoldingCostPerUnitDay  float64 `json:"holdingCostPerUnitDay" yaml:"holding_cost_per_unit_day"`    // Daily cost per unit held on hand
	ShortageCostPerUnitDay float64 `json:"shortageCostPerUnitDay" yaml:"shortage_cost_per_unit_day"`  // Daily cost per unit backlogged

	// Replenishment policy (continuous review)
	RequestBatchSize    float64 `json:"requestBatchSize" yaml:"request_batch_size"`        // Units per replenishment request
	ReorderPoint        float64 `json:"reorderPoint" yaml:"reorder_point"`                 // Trigger a request when on-hand drops to this level or below
	RequestLeadTimeDays float64 `json:"requestLeadTimeDays" yaml:"request_lead_time_days"` // Days between request and shipment arrival

	// Demand model
	OrderCountDistribution DistributionConfig `json:"orderCountDistribution" yaml:"order_count_distribution"` // Orders arriving per day
	OrderSizeDistribution  DistributionConfig `json:"orderSizeDistribution" yaml:"order_size_distribution"`   // Units per order

	// Simulation control
	MaxBacklogCount int   `json:"maxBacklogCount" yaml:"max_backlog_count"` // Divergence bound: abort when end-of-day backlog count exceeds this
	RandomSeed      int64 `json:"randomSeed" yaml:"random_seed"`            // Random seed for reproducibility (0 = use time-based seed)
}

// DefaultConfig returns a policy that keeps up with its demand under the
// default distributions, useful as a starting point for experiments
func DefaultConfig() SimConfig {
	return SimConfig{
		InitialOnHand:          100.0,
		RequestCostPerBatch:    32.0,
		RequestCostPerUnit:     3.0,
		HoldingCostPerUnitDay:  0.05,
		ShortageCostPerUnitDay: 1.0,
		RequestBatchSize:       150.0,
		ReorderPoint:           40.0,
		RequestLeadTimeDays:    2.0,
		OrderCountDistribution: DistributionConfig{Type: DistPoisson, Mean: 3.0},
		OrderSizeDistribution:  DistributionConfig{Type: DistGamma, Shape: 2.0, Scale: 4.0},
		MaxBacklogCount:        1_000_000, // effectively unbounded
		RandomSeed:             0,
	}
}

// Validate checks if configuration values are reasonable
func (c *SimConfig) Validate() error {
	if c.InitialOnHand < 0 {
		return ErrInvalidConfig("initialOnHand must be >= 0")
	}
	if c.RequestCostPerBatch < 0 {
		return ErrInvalidConfig("requestCostPerBatch must be >= 0")
	}
	if c.RequestCostPerUnit < 0 {
		return ErrInvalidConfig("requestCostPerUnit must be >= 0")
	}
	if c.HoldingCostPerUnitDay < 0 {
		return ErrInvalidConfig("holdingCostPerUnitDay must be >= 0")
	}
	if c.ShortageCostPerUnitDay < 0 {
		return ErrInvalidConfig("shortageCostPerUnitDay must be >= 0")
	}
	if c.RequestBatchSize <= 0 {
		return ErrInvalidConfig("requestBatchSize must be > 0")
	}
	if c.ReorderPoint < 0 {
		return ErrInvalidConfig("reorderPoint must be >= 0")
	}
	// The shipment arrival time is floor(now + lead time); a lead time
	// below one day could land the arrival before the clock.
	if c.RequestLeadTimeDays < 1 {
		return ErrInvalidConfig("requestLeadTimeDays must be >= 1")
	}
	if c.MaxBacklogCount < 0 {
		return ErrInvalidConfig("maxBacklogCount must be >= 0")
	}
	return nil
}
