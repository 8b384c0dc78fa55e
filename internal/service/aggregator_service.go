package service

import "payment-forecast/internal/core/domain"

// ForecastAggregator accumulates validated amounts into a day -> merchant id
// -> total table. Entries are created lazily on first contribution; addition
// is the only mutation path. Owned by one ingestion run and mutated from a
// single goroutine.
type ForecastAggregator struct {
	table domain.ForecastTable
}

// NewForecastAggregator creates an empty aggregator.
func NewForecastAggregator() *ForecastAggregator {
	return &ForecastAggregator{table: make(domain.ForecastTable)}
}

// Add folds one validated payment into the running totals. An absent cell is
// treated as £0.00 and replaced with the exact sum.
func (a *ForecastAggregator) Add(day domain.CalendarDay, merchantID int64, amount domain.Money) {
	totals, ok := a.table[day]
	if !ok {
		totals = make(map[int64]domain.Money)
		a.table[day] = totals
	}
	totals[merchantID] = totals[merchantID].Add(amount)
}

// Snapshot returns a deep copy of the table, so the report layer never
// observes an entry mid-update and later runs of the aggregator cannot
// mutate a handed-out view.
func (a *ForecastAggregator) Snapshot() domain.ForecastTable {
	snapshot := make(domain.ForecastTable, len(a.table))
	for day, totals := range a.table {
		copied := make(map[int64]domain.Money, len(totals))
		for id, amount := range totals {
			copied[id] = amount
		}
		snapshot[day] = copied
	}
	return snapshot
}
