package etl

import (
	"strings"

	"github.com/BartekS5/tmmigrate/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	defaultCostRate = decimal.NewFromFloat(models.DefaultCostRate)
	markupFactor    = decimal.NewFromInt(1).Add(decimal.NewFromFloat(models.MaterialMarkupPercent).Div(decimal.NewFromInt(100)))
)

// CrewIndex resolves crew member rates by name. The first crew member with a
// given name wins.
type CrewIndex struct {
	byName        map[string]models.CrewMember
	defaultGCRate decimal.Decimal
}

func NewCrewIndex(defaultGCRate float64) *CrewIndex {
	return &CrewIndex{
		byName:        map[string]models.CrewMember{},
		defaultGCRate: decimal.NewFromFloat(defaultGCRate),
	}
}

// Add registers m unless a member with the same name is already known. It
// reports whether m was added.
func (c *CrewIndex) Add(m models.CrewMember) bool {
	key := strings.TrimSpace(m.Name)
	if _, ok := c.byName[key]; ok {
		return false
	}
	c.byName[key] = m
	return true
}

// Rates returns the cost and bill rate for a worker name, falling back to the
// default cost rate and the configured GC rate when the worker is unknown or
// has no usable rate.
func (c *CrewIndex) Rates(name string) (cost, bill decimal.Decimal) {
	cost, bill = defaultCostRate, c.defaultGCRate
	m, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return cost, bill
	}
	if m.HourlyRate != nil && *m.HourlyRate > 0 {
		cost = decimal.NewFromFloat(*m.HourlyRate)
	}
	if m.GCBillRate > 0 {
		bill = decimal.NewFromFloat(m.GCBillRate)
	}
	return cost, bill
}

// BlendedRates sums the hours of the embedded crew entries and returns the
// hours-weighted cost and bill rates. ok is false when the entries carry no
// hours at all; the caller then uses the flat fallback.
func (c *CrewIndex) BlendedRates(entries []models.LegacyCrewEntry) (hours, costRate, billRate float64, ok bool) {
	totalHours := decimal.Zero
	totalCost := decimal.Zero
	totalBill := decimal.Zero
	for _, e := range entries {
		h := decimal.NewFromFloat(e.TotalHours)
		cost, bill := c.Rates(e.Name)
		totalHours = totalHours.Add(h)
		totalCost = totalCost.Add(h.Mul(cost))
		totalBill = totalBill.Add(h.Mul(bill))
	}
	if totalHours.IsZero() {
		return 0, 0, 0, false
	}
	return totalHours.InexactFloat64(),
		totalCost.Div(totalHours).InexactFloat64(),
		totalBill.Div(totalHours).InexactFloat64(),
		true
}

// TagTotals are the recomputed financial aggregates of a T&M tag.
type TagTotals struct {
	LaborCost    float64
	LaborBill    float64
	MaterialCost float64
	MaterialBill float64
	Expense      float64
	Bill         float64
}

// TagTotals recomputes a tag's aggregates from its entries only.
func (c *CrewIndex) TagTotals(t models.LegacyTmTag) TagTotals {
	laborCost, laborBill := decimal.Zero, decimal.Zero
	for _, e := range t.LaborEntries {
		h := decimal.NewFromFloat(e.TotalHours)
		cost, bill := c.Rates(e.WorkerName)
		laborCost = laborCost.Add(h.Mul(cost))
		laborBill = laborBill.Add(h.Mul(bill))
	}

	materialCost := decimal.Zero
	for _, e := range t.MaterialEntries {
		materialCost = materialCost.Add(decimal.NewFromFloat(e.Total))
	}
	materialBill := materialCost.Mul(markupFactor)

	expense := decimal.Zero
	for _, e := range t.OtherEntries {
		expense = expense.Add(decimal.NewFromFloat(e.Total))
	}

	return TagTotals{
		LaborCost:    laborCost.InexactFloat64(),
		LaborBill:    laborBill.InexactFloat64(),
		MaterialCost: materialCost.InexactFloat64(),
		MaterialBill: materialBill.InexactFloat64(),
		Expense:      expense.InexactFloat64(),
		Bill:         laborBill.Add(materialBill).Add(expense).InexactFloat64(),
	}
}
