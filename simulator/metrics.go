package simulator

// Costs tracks the running cost accumulators of one replication.
// All fields start at zero and are monotonically non-decreasing.
//
// InventoryVariable is PerBatch + Holding + Shortage: the per-unit cost
// is a function of demand rather than policy, so it is excluded from the
// policy-comparison metric but still counts toward Total.
type Costs struct {
	PerBatch          float64 `json:"perBatch"`          // Fixed request costs
	PerUnit           float64 `json:"perUnit"`           // Per-unit request costs
	Holding           float64 `json:"holding"`           // Daily on-hand holding costs
	Shortage          float64 `json:"shortage"`          // Daily backlog shortage costs
	InventoryVariable float64 `json:"inventoryVariable"` // PerBatch + Holding + Shortage
	Total             float64 `json:"total"`             // Sum of all four cost categories
}

// DailySnapshot is one append-only log row, written at the end of each
// simulated day after that day's holding and shortage costs are applied
type DailySnapshot struct {
	Day           int     `json:"day"`           // 0-based day index
	Timestamp     float64 `json:"timestamp"`     // Virtual time of the EndDay event
	OnHand        float64 `json:"onHand"`        // Stock on hand after the day's orders
	BacklogCount  int     `json:"backlogCount"`  // Orders awaiting stock
	BacklogAmount float64 `json:"backlogAmount"` // Total units awaiting stock
	Costs         Costs   `json:"costs"`         // Accumulators after the day's charges
}

// FulfilledOrder records a filled customer order. OriginalTime is kept so
// that the backlog delay (FulfilledTime - OriginalTime) can be computed
// after the run.
type FulfilledOrder struct {
	Amount        float64 `json:"amount"`
	OriginalTime  float64 `json:"originalTime"`
	FulfilledTime float64 `json:"fulfilledTime"`
}

// Metrics is a point-in-time view of engine state and statistics,
// assembled on demand for drivers and the live dashboard
type Metrics struct {
	Timestamp       float64 `json:"timestamp"`       // Virtual time in days
	OnHand          float64 `json:"onHand"`          // Current stock on hand
	BacklogCount    int     `json:"backlogCount"`    // Orders awaiting stock
	BacklogAmount   float64 `json:"backlogAmount"`   // Units awaiting stock
	RequestPending  bool    `json:"requestPending"`  // Replenishment requested but not yet arrived
	PendingShipment float64 `json:"pendingShipment"` // Units currently in transit
	TotalShipped    float64 `json:"totalShipped"`    // Units received from the supplier so far
	OrdersFulfilled int     `json:"ordersFulfilled"` // Orders filled so far
	OrdersDelayed   int     `json:"ordersDelayed"`   // Fulfilled orders that spent time in the backlog
	DaysSimulated   int     `json:"daysSimulated"`   // Completed days (log rows)
	Costs           Costs   `json:"costs"`
}
