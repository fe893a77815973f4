package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stocksim/stocksim/simulator"
)

var (
	// Prometheus metrics (gauges)
	promMetrics = struct {
		onHand          prometheus.Gauge
		backlogOrders   prometheus.Gauge
		backlogUnits    prometheus.Gauge
		requestPending  prometheus.Gauge
		pendingShipment prometheus.Gauge
		ordersFulfilled prometheus.Gauge
		totalCost       prometheus.Gauge
		variableCost    prometheus.Gauge
		holdingCost     prometheus.Gauge
		shortageCost    prometheus.Gauge
	}{
		onHand: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_on_hand_units",
			Help: "Stock quantity physically available",
		}),
		backlogOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_backlog_orders",
			Help: "Number of unfulfilled orders awaiting stock",
		}),
		backlogUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_backlog_units",
			Help: "Total units awaiting stock",
		}),
		requestPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_request_pending",
			Help: "Replenishment request outstanding (0=no, 1=yes)",
		}),
		pendingShipment: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_pending_shipment_units",
			Help: "Units currently in transit from the supplier",
		}),
		ordersFulfilled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_orders_fulfilled_total",
			Help: "Orders fulfilled since simulation start",
		}),
		totalCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_total_cost",
			Help: "Running total operating cost",
		}),
		variableCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_variable_cost",
			Help: "Running inventory-variable cost (batch + holding + shortage)",
		}),
		holdingCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_holding_cost",
			Help: "Running holding cost",
		}),
		shortageCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_shortage_cost",
			Help: "Running shortage cost",
		}),
	}
)

func initPrometheusMetrics() {
	prometheus.MustRegister(
		promMetrics.onHand,
		promMetrics.backlogOrders,
		promMetrics.backlogUnits,
		promMetrics.requestPending,
		promMetrics.pendingShipment,
		promMetrics.ordersFulfilled,
		promMetrics.totalCost,
		promMetrics.variableCost,
		promMetrics.holdingCost,
		promMetrics.shortageCost,
	)
}

func updatePrometheusMetrics(metrics *simulator.Metrics) {
	promMetrics.onHand.Set(metrics.OnHand)
	promMetrics.backlogOrders.Set(float64(metrics.BacklogCount))
	promMetrics.backlogUnits.Set(metrics.BacklogAmount)
	if metrics.RequestPending {
		promMetrics.requestPending.Set(1.0)
	} else {
		promMetrics.requestPending.Set(0.0)
	}
	promMetrics.pendingShipment.Set(metrics.PendingShipment)
	promMetrics.ordersFulfilled.Set(float64(metrics.OrdersFulfilled))
	promMetrics.totalCost.Set(metrics.Costs.Total)
	promMetrics.variableCost.Set(metrics.Costs.InventoryVariable)
	promMetrics.holdingCost.Set(metrics.Costs.Holding)
	promMetrics.shortageCost.Set(metrics.Costs.Shortage)
}
