package simulator

import (
	"fmt"
	"math"
	mrand "math/rand"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

// endOfDayOffset places the EndDay event strictly after every order of
// the day (orders land at t + j/(n+1) < t + 0.99) and the day hand-off
// itself is zero-duration: the next BeginDay fires at the same instant.
const endOfDayOffset = 0.99

// Simulator is a PURE discrete event simulator of a single-item,
// continuous-review inventory process with NO concurrency primitives.
// All state is accessed single-threaded via AdvanceUntil / Step.
// The caller (cmd/server) manages pacing, pause/resume, and threading.
type Simulator struct {
	config SimConfig
	queue  *EventQueue
	clock  float64 // Virtual time in days, monotonically non-decreasing

	onHand          float64
	requestPending  bool    // True between a reorder trigger and the matching shipment arrival
	pendingShipment float64 // Units in transit (0 unless requestPending)
	totalShipped    float64 // Units received from the supplier so far

	backlog   []*OrderEvent
	fulfilled []FulfilledOrder
	snapshots []DailySnapshot
	costs     Costs

	countSampler CountSampler
	sizeSampler  SizeSampler
}

// NewSimulator creates a simulator seeded with the initial BeginDay(0)
// event, ready for AdvanceUntil
func NewSimulator(config SimConfig) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	seed := config.RandomSeed
	if seed == 0 {
		seed = mrand.Int63()
	}

	// Two independent variate streams so changing one distribution's
	// consumption pattern does not perturb the other.
	countSrc := rand.NewSource(uint64(seed))
	sizeSrc := rand.NewSource(uint64(seed) ^ 0x9e3779b97f4a7c15)

	countSampler, err := NewCountSampler(config.OrderCountDistribution, countSrc)
	if err != nil {
		return nil, err
	}
	sizeSampler, err := NewSizeSampler(config.OrderSizeDistribution, sizeSrc)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		config:       config,
		queue:        NewEventQueue(),
		clock:        0,
		onHand:       config.InitialOnHand,
		backlog:      make([]*OrderEvent, 0),
		fulfilled:    make([]FulfilledOrder, 0),
		snapshots:    make([]DailySnapshot, 0),
		countSampler: countSampler,
		sizeSampler:  sizeSampler,
	}
	s.queue.Push(NewBeginDayEvent(0))
	return s, nil
}

// SetDemandSamplers replaces the configured demand samplers. Intended for
// deterministic stubs in tests and for callers that need a distribution
// family the config schema does not cover.
func (s *Simulator) SetDemandSamplers(count CountSampler, size SizeSampler) {
	if count != nil {
		s.countSampler = count
	}
	if size != nil {
		s.sizeSampler = size
	}
}

// AdvanceUntil processes events until the clock exceeds horizon (in
// days). It may overshoot the horizon by less than one day. Any error is
// fatal to the replication: the engine state is no longer meaningful and
// no transition is retried.
func (s *Simulator) AdvanceUntil(horizon float64) error {
	for s.clock <= horizon {
		if s.queue.IsEmpty() {
			return &EmptyQueueError{Clock: s.clock}
		}
		event := s.queue.Pop()
		// Defensive: push-time discipline already guarantees this
		if event.Timestamp() < s.clock {
			return &OrderingError{EventTime: event.Timestamp(), Clock: s.clock}
		}
		s.clock = event.Timestamp()
		if err := s.processEvent(event); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the simulation by deltaDays of virtual time. Used by the
// live dashboard to pace the run.
func (s *Simulator) Step(deltaDays float64) error {
	return s.AdvanceUntil(s.clock + deltaDays)
}

// Reset restores the simulator to its initial state with the same config
func (s *Simulator) Reset() error {
	newSim, err := NewSimulator(s.config)
	if err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	*s = *newSim
	return nil
}

// UpdateConfig replaces the configuration and resets the run
func (s *Simulator) UpdateConfig(newConfig SimConfig) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}
	s.config = newConfig
	return s.Reset()
}

func (s *Simulator) processEvent(event Event) error {
	logrus.Debugf("<< %s", event)
	switch e := event.(type) {
	case *BeginDayEvent:
		return s.processBeginDay(e)
	case *EndDayEvent:
		return s.processEndDay(e)
	case *OrderEvent:
		return s.processOrder(e)
	case *ShipmentEvent:
		return s.processShipment(e)
	default:
		panic(fmt.Sprintf("unknown event type: %T", e))
	}
}

// schedule enqueues an event, enforcing that nothing is ever scheduled
// into the past
func (s *Simulator) schedule(event Event) error {
	if event.Timestamp() < s.clock {
		return &OrderingError{EventTime: event.Timestamp(), Clock: s.clock}
	}
	s.queue.Push(event)
	return nil
}

// processBeginDay samples today's order count n and spreads the n orders
// evenly within the day at t + j/(n+1), strictly before the day end at
// t + 0.99. No cost or inventory state changes here.
func (s *Simulator) processBeginDay(event *BeginDayEvent) error {
	t := event.Timestamp()
	n := s.countSampler.SampleCount()
	for j := 1; j <= n; j++ {
		amount := s.sizeSampler.SampleSize()
		at := t + float64(j)/float64(n+1)
		if err := s.schedule(NewOrderEvent(at, amount, at)); err != nil {
			return err
		}
	}
	if err := s.schedule(NewEndDayEvent(t + endOfDayOffset)); err != nil {
		return err
	}
	logrus.Debugf("day begins at t=%.3f: %d orders scheduled", t, n)
	return nil
}

// processOrder fulfills an order all-or-nothing: either the full amount
// is deducted from on-hand stock, or the order joins the backlog
// unchanged. Either way the continuous-review reorder rule runs next.
func (s *Simulator) processOrder(order *OrderEvent) error {
	if s.onHand >= order.Amount() {
		s.onHand -= order.Amount()
		s.fulfilled = append(s.fulfilled, FulfilledOrder{
			Amount:        order.Amount(),
			OriginalTime:  order.OriginalTime(),
			FulfilledTime: s.clock,
		})
	} else {
		s.backlog = append(s.backlog, order)
		logrus.Debugf("order of %.2f backlogged at t=%.3f (on hand %.2f)",
			order.Amount(), s.clock, s.onHand)
	}
	return s.maybeReorder()
}

// maybeReorder implements the continuous-review (s, Q) rule: when no
// request is outstanding and the net inventory position (on hand minus
// backlog) has dropped to the reorder point or below, charge the request
// costs and schedule a shipment of one batch at floor(now + lead time).
// At most one request may be pending; while one is, this is a no-op.
//
// The per-batch cost counts toward the inventory-variable metric; the
// per-unit cost does not (it tracks demand, not policy).
func (s *Simulator) maybeReorder() error {
	position := s.onHand - s.BacklogAmount()
	if s.requestPending || position > s.config.ReorderPoint {
		return nil
	}

	batchCost := s.config.RequestCostPerBatch
	unitCost := s.config.RequestBatchSize * s.config.RequestCostPerUnit
	s.costs.PerBatch += batchCost
	s.costs.InventoryVariable += batchCost
	s.costs.PerUnit += unitCost
	s.costs.Total += batchCost + unitCost

	arrival := math.Floor(s.clock + s.config.RequestLeadTimeDays)
	if err := s.schedule(NewShipmentEvent(arrival, s.config.RequestBatchSize)); err != nil {
		return err
	}
	s.requestPending = true
	s.pendingShipment = s.config.RequestBatchSize
	logrus.Debugf("replenishment of %.2f requested at t=%.3f, arriving t=%.3f",
		s.config.RequestBatchSize, s.clock, arrival)
	return nil
}

// processShipment receives a replenishment batch and requeues every
// backlogged order at the current time, in original backlog order, so
// they are reprocessed as ordinary OrderReceived events immediately.
func (s *Simulator) processShipment(event *ShipmentEvent) error {
	s.onHand += event.Amount()
	s.totalShipped += event.Amount()

	for _, order := range s.backlog {
		order.rescheduleAt(s.clock)
		if err := s.schedule(order); err != nil {
			return err
		}
	}
	requeued := len(s.backlog)
	s.backlog = s.backlog[:0]
	s.requestPending = false
	s.pendingShipment = 0
	logrus.Debugf("shipment of %.2f arrived at t=%.3f, %d backlogged orders requeued",
		event.Amount(), s.clock, requeued)
	return nil
}

// processEndDay accrues the day's holding and shortage costs, appends the
// daily log row, hands off to the next day, and runs the divergence check
func (s *Simulator) processEndDay(event *EndDayEvent) error {
	t := event.Timestamp()

	holding := s.onHand * s.config.HoldingCostPerUnitDay
	shortage := s.BacklogAmount() * s.config.ShortageCostPerUnitDay
	s.costs.Holding += holding
	s.costs.Shortage += shortage
	s.costs.InventoryVariable += holding + shortage
	s.costs.Total += holding + shortage

	s.snapshots = append(s.snapshots, DailySnapshot{
		Day:           len(s.snapshots),
		Timestamp:     t,
		OnHand:        s.onHand,
		BacklogCount:  len(s.backlog),
		BacklogAmount: s.BacklogAmount(),
		Costs:         s.costs,
	})

	// Day boundary is a zero-duration hand-off
	if err := s.schedule(NewBeginDayEvent(t)); err != nil {
		return err
	}

	if len(s.backlog) > s.config.MaxBacklogCount {
		return &DivergenceError{Time: t, BacklogCount: len(s.backlog), Limit: s.config.MaxBacklogCount}
	}
	return nil
}

// Config returns the current simulator configuration
func (s *Simulator) Config() SimConfig {
	return s.config
}

// VirtualTime returns the current virtual time in days
func (s *Simulator) VirtualTime() float64 {
	return s.clock
}

// OnHand returns the stock quantity physically available
func (s *Simulator) OnHand() float64 {
	return s.onHand
}

// RequestPending reports whether a replenishment request is outstanding
func (s *Simulator) RequestPending() bool {
	return s.requestPending
}

// PendingShipment returns the units currently in transit
func (s *Simulator) PendingShipment() float64 {
	return s.pendingShipment
}

// TotalShipped returns the units received from the supplier so far
func (s *Simulator) TotalShipped() float64 {
	return s.totalShipped
}

// BacklogCount returns the number of orders awaiting stock
func (s *Simulator) BacklogCount() int {
	return len(s.backlog)
}

// BacklogAmount returns the total units awaiting stock
func (s *Simulator) BacklogAmount() float64 {
	total := 0.0
	for _, order := range s.backlog {
		total += order.Amount()
	}
	return total
}

// Costs returns the running cost accumulators
func (s *Simulator) Costs() Costs {
	return s.costs
}

// Snapshots returns the append-only daily log, one row per completed day
func (s *Simulator) Snapshots() []DailySnapshot {
	return s.snapshots
}

// Fulfilled returns every filled order in fulfillment order
func (s *Simulator) Fulfilled() []FulfilledOrder {
	return s.fulfilled
}

// FractionBacklogged returns the fraction of fulfilled orders that were
// filled later than their original arrival time. Returns NaN when no
// orders have been fulfilled: the statistic is undefined, and a silent
// zero would be misleading.
func (s *Simulator) FractionBacklogged() float64 {
	if len(s.fulfilled) == 0 {
		return math.NaN()
	}
	delayed := 0
	for _, f := range s.fulfilled {
		if f.FulfilledTime > f.OriginalTime {
			delayed++
		}
	}
	return float64(delayed) / float64(len(s.fulfilled))
}

// FulfillmentDelays returns fulfillment_time - original_time for every
// fulfilled order, in fulfillment order
func (s *Simulator) FulfillmentDelays() []float64 {
	delays := make([]float64, len(s.fulfilled))
	for i, f := range s.fulfilled {
		delays[i] = f.FulfilledTime - f.OriginalTime
	}
	return delays
}

// IsQueueEmpty returns true if no events remain
func (s *Simulator) IsQueueEmpty() bool {
	return s.queue.IsEmpty()
}

// Metrics assembles a point-in-time view of engine state and statistics
func (s *Simulator) Metrics() *Metrics {
	delayed := 0
	for _, f := range s.fulfilled {
		if f.FulfilledTime > f.OriginalTime {
			delayed++
		}
	}
	return &Metrics{
		Timestamp:       s.clock,
		OnHand:          s.onHand,
		BacklogCount:    len(s.backlog),
		BacklogAmount:   s.BacklogAmount(),
		RequestPending:  s.requestPending,
		PendingShipment: s.pendingShipment,
		TotalShipped:    s.totalShipped,
		OrdersFulfilled: len(s.fulfilled),
		OrdersDelayed:   delayed,
		DaysSimulated:   len(s.snapshots),
		Costs:           s.costs,
	}
}
