package experiment

import (
	"encoding/csv"
	"io"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a batch of replication results. Failed replications
// are counted and listed but excluded from the cost statistics.
type Summary struct {
	Replications int                 `json:"replications"`
	Completed    int                 `json:"completed"`
	Failed       int                 `json:"failed"`
	Results      []ReplicationResult `json:"results"`

	MeanTotalCost      float64 `json:"meanTotalCost"`
	StdDevTotalCost    float64 `json:"stdDevTotalCost"`
	MeanVariableCost   float64 `json:"meanVariableCost"`
	StdDevVariableCost float64 `json:"stdDevVariableCost"`
	MeanCostPerDay     float64 `json:"meanCostPerDay"` // Mean of per-replication total cost / days

	MeanFractionBacklogged *float64 `json:"meanFractionBacklogged,omitempty"`

	TotalCostHistogram *Histogram `json:"totalCostHistogram,omitempty"`
}

func summarize(cfg Config, results []ReplicationResult) *Summary {
	summary := &Summary{
		Replications: len(results),
		Results:      results,
	}

	totals := make([]float64, 0, len(results))
	variables := make([]float64, 0, len(results))
	perDay := make([]float64, 0, len(results))
	fractions := make([]float64, 0, len(results))

	for _, r := range results {
		if r.Failed() {
			summary.Failed++
			continue
		}
		summary.Completed++
		totals = append(totals, r.Costs.Total)
		variables = append(variables, r.Costs.InventoryVariable)
		if r.Days > 0 {
			perDay = append(perDay, r.Costs.Total/float64(r.Days))
		}
		if r.FractionBacklogged != nil {
			fractions = append(fractions, *r.FractionBacklogged)
		}
	}

	if len(totals) > 0 {
		summary.MeanTotalCost = stat.Mean(totals, nil)
		summary.MeanVariableCost = stat.Mean(variables, nil)
	}
	if len(totals) > 1 {
		summary.StdDevTotalCost = stat.StdDev(totals, nil)
		summary.StdDevVariableCost = stat.StdDev(variables, nil)
	}
	if len(perDay) > 0 {
		summary.MeanCostPerDay = stat.Mean(perDay, nil)
	}
	if len(fractions) > 0 {
		mean := stat.Mean(fractions, nil)
		summary.MeanFractionBacklogged = &mean
	}

	bins := cfg.HistogramBins
	if bins == 0 {
		bins = 20
	}
	summary.TotalCostHistogram = NewHistogram(totals, bins)

	return summary
}

// Histogram is an equal-width binning of per-replication values
type Histogram struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	BinWidth float64 `json:"binWidth"`
	Counts   []int   `json:"counts"`
}

// NewHistogram bins values into the given number of equal-width bins.
// Returns nil when there is nothing to bin. The maximum value lands in
// the last bin.
func NewHistogram(values []float64, bins int) *Histogram {
	if len(values) == 0 || bins < 1 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	h := &Histogram{
		Min:    min,
		Max:    max,
		Counts: make([]int, bins),
	}
	if min == max {
		h.BinWidth = 0
		h.Counts[0] = len(values)
		return h
	}
	h.BinWidth = (max - min) / float64(bins)
	for _, v := range values {
		idx := int((v - min) / h.BinWidth)
		if idx >= bins {
			idx = bins - 1
		}
		h.Counts[idx]++
	}
	return h
}

// WriteCSV writes one row per replication, failed replications included
// with their error message
func WriteCSV(w io.Writer, results []ReplicationResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"replication", "seed", "days", "final_on_hand", "orders_fulfilled",
		"per_batch_cost", "per_unit_cost", "holding_cost", "shortage_cost",
		"inventory_variable_cost", "total_cost",
		"fraction_backlogged", "mean_delay_days", "error",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		frac, delay := "", ""
		if r.FractionBacklogged != nil {
			frac = formatFloat(*r.FractionBacklogged)
		}
		if r.MeanDelayDays != nil {
			delay = formatFloat(*r.MeanDelayDays)
		}
		row := []string{
			strconv.Itoa(r.Replication),
			strconv.FormatInt(r.Seed, 10),
			strconv.Itoa(r.Days),
			formatFloat(r.FinalOnHand),
			strconv.Itoa(r.OrdersFulfilled),
			formatFloat(r.Costs.PerBatch),
			formatFloat(r.Costs.PerUnit),
			formatFloat(r.Costs.Holding),
			formatFloat(r.Costs.Shortage),
			formatFloat(r.Costs.InventoryVariable),
			formatFloat(r.Costs.Total),
			frac,
			delay,
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
