package simulator

import "fmt"

// EventType represents the type of simulation event
type EventType int

const (
	EventTypeBeginDay EventType = iota
	EventTypeEndDay
	EventTypeOrderReceived
	EventTypeShipmentArrival
)

func (et EventType) String() string {
	switch et {
	case EventTypeBeginDay:
		return "begin_day"
	case EventTypeEndDay:
		return "end_day"
	case EventTypeOrderReceived:
		return "order_received"
	case EventTypeShipmentArrival:
		return "shipment_arrival"
	default:
		return "unknown"
	}
}

// Event is the base interface for all simulation events
type Event interface {
	Timestamp() float64 // Virtual time in days
	Type() EventType
	String() string
}

// BeginDayEvent opens a simulated day: it samples today's customer demand
// and schedules the matching OrderEvents plus the day's EndDayEvent.
type BeginDayEvent struct {
	timestamp float64
}

func NewBeginDayEvent(timestamp float64) *BeginDayEvent {
	return &BeginDayEvent{timestamp: timestamp}
}

func (e *BeginDayEvent) Timestamp() float64 { return e.timestamp }
func (e *BeginDayEvent) Type() EventType    { return EventTypeBeginDay }
func (e *BeginDayEvent) String() string {
	return fmt.Sprintf("BeginDay(t=%.3f)", e.timestamp)
}

// EndDayEvent closes a simulated day: holding and shortage costs are
// accrued, a log row is appended, and the next BeginDayEvent is scheduled.
type EndDayEvent struct {
	timestamp float64
}

func NewEndDayEvent(timestamp float64) *EndDayEvent {
	return &EndDayEvent{timestamp: timestamp}
}

func (e *EndDayEvent) Timestamp() float64 { return e.timestamp }
func (e *EndDayEvent) Type() EventType    { return EventTypeEndDay }
func (e *EndDayEvent) String() string {
	return fmt.Sprintf("EndDay(t=%.3f)", e.timestamp)
}

// OrderEvent represents a customer order arriving against on-hand stock.
//
// originalTime is the time the order would have been received absent any
// delay. When a backlogged order is requeued on shipment arrival its
// timestamp is rewritten to the arrival time, but originalTime is kept so
// the fulfillment delay can be measured afterwards.
type OrderEvent struct {
	timestamp    float64
	amount       float64
	originalTime float64
}

func NewOrderEvent(timestamp, amount, originalTime float64) *OrderEvent {
	return &OrderEvent{
		timestamp:    timestamp,
		amount:       amount,
		originalTime: originalTime,
	}
}

func (e *OrderEvent) Timestamp() float64    { return e.timestamp }
func (e *OrderEvent) Type() EventType       { return EventTypeOrderReceived }
func (e *OrderEvent) Amount() float64       { return e.amount }
func (e *OrderEvent) OriginalTime() float64 { return e.originalTime }
func (e *OrderEvent) String() string {
	return fmt.Sprintf("OrderReceived(t=%.3f, amount=%.2f, original=%.3f)",
		e.timestamp, e.amount, e.originalTime)
}

// rescheduleAt rewrites the event timestamp for requeueing after a
// shipment arrival. originalTime is deliberately left untouched.
func (e *OrderEvent) rescheduleAt(timestamp float64) {
	e.timestamp = timestamp
}

// ShipmentEvent represents a replenishment batch arriving from the supplier
type ShipmentEvent struct {
	timestamp float64
	amount    float64
}

func NewShipmentEvent(timestamp, amount float64) *ShipmentEvent {
	return &ShipmentEvent{timestamp: timestamp, amount: amount}
}

func (e *ShipmentEvent) Timestamp() float64 { return e.timestamp }
func (e *ShipmentEvent) Type() EventType    { return EventTypeShipmentArrival }
func (e *ShipmentEvent) Amount() float64    { return e.amount }
func (e *ShipmentEvent) String() string {
	return fmt.Sprintf("ShipmentArrival(t=%.3f, amount=%.2f)", e.timestamp, e.amount)
}
