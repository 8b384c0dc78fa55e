package domain

import "sort"

// ValidatedPayment is the output of a fully validated record: the settlement
// day it forecasts into, the merchant it pays, and the exact amount.
type ValidatedPayment struct {
	Day        CalendarDay
	MerchantID int64
	Amount     Money
}

// ForecastTable is a read-only day -> merchant id -> total snapshot taken
// from an aggregator after (or during) a run. Lookups for absent cells
// report £0.00, which is also how the report renders them.
type ForecastTable map[CalendarDay]map[int64]Money

// Days returns every day with at least one contribution, ascending.
func (t ForecastTable) Days() []CalendarDay {
	days := make([]CalendarDay, 0, len(t))
	for day := range t {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// MerchantIDs returns every merchant id that contributed to any day,
// ascending. This is the report's column order.
func (t ForecastTable) MerchantIDs() []int64 {
	seen := make(map[int64]struct{})
	for _, totals := range t {
		for id := range totals {
			seen[id] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Amount returns the aggregated total for a (day, merchant) cell, or £0.00
// when the cell is absent.
func (t ForecastTable) Amount(day CalendarDay, merchantID int64) Money {
	if totals, ok := t[day]; ok {
		if amount, ok := totals[merchantID]; ok {
			return amount
		}
	}
	return ZeroMoney()
}
