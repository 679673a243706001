// Package budget turns budget categories and transactions into utilization
// figures and a qualitative status per category.
//
// Transactions are joined to categories by name: a transaction counts
// against a category when Transaction.Category equals Category.Name exactly
// (case-sensitive). Category IDs are echoed back but never used for the join.
package budget

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// unbudgetedPercentage is reported for categories with no limit and some spend.
const unbudgetedPercentage = 100

// Category is a named spending bucket with a limit for the period.
type Category struct {
	ID    string
	Name  string
	Limit float64
	Icon  string
	Color string
}

// Transaction is a ledger entry. A negative Amount is an expense.
type Transaction struct {
	ID       string
	Category string
	Amount   float64
	Date     time.Time
	Type     string
}

// CategoryStatus is the derived utilization of one category.
type CategoryStatus struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Limit       float64  `json:"limit"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	Spent       float64  `json:"spent"`
	Percentage  float64  `json:"percentage"`
	Status      Status   `json:"status"`
	StatusColor Severity `json:"statusColor"`
}

// Summary aggregates every category of a budget.
type Summary struct {
	TotalBudget    float64          `json:"totalBudget"`
	SpentSoFar     float64          `json:"spentSoFar"`
	Remaining      float64          `json:"remaining"`
	PercentageUsed float64          `json:"percentageUsed"`
	Categories     []CategoryStatus `json:"categories"`
}

// Calculator computes statuses against a fixed set of thresholds.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	thresholds Thresholds
}

// New returns a Calculator using t.
func New(t Thresholds) *Calculator {
	return &Calculator{thresholds: t}
}

// Thresholds returns the bands the calculator classifies with.
func (c *Calculator) Thresholds() Thresholds {
	return c.thresholds
}

var defaultCalculator = New(DefaultThresholds())

// ComputeCategoryStatus is CategoryStatus with DefaultThresholds.
func ComputeCategoryStatus(category Category, transactions []Transaction) CategoryStatus {
	return defaultCalculator.CategoryStatus(category, transactions)
}

// ComputeSummary is Summary with DefaultThresholds.
func ComputeSummary(categories []Category, transactions []Transaction) Summary {
	return defaultCalculator.Summary(categories, transactions)
}

// CategoryStatus computes spend and status for category. Only transactions
// with a negative amount whose Category equals category.Name are counted;
// the Type field is ignored. Transactions are not filtered by date.
func (c *Calculator) CategoryStatus(category Category, transactions []Transaction) CategoryStatus {
	spent := spentFor(category.Name, transactions)
	return c.status(category, spent)
}

// Summary computes the status of every category, in input order, and the
// account-wide totals. Remaining is negative when spending exceeds the total.
func (c *Calculator) Summary(categories []Category, transactions []Transaction) Summary {
	// One pass over the ledger instead of one per category.
	spentByName := make(map[string]*accumulator, len(categories))
	for _, cat := range categories {
		spentByName[cat.Name] = &accumulator{}
	}
	for _, t := range transactions {
		if acc, ok := spentByName[t.Category]; ok {
			acc.addExpense(t.Amount)
		}
	}

	summary := Summary{
		Categories: make([]CategoryStatus, 0, len(categories)),
	}
	var total, spent accumulator
	for _, cat := range categories {
		st := c.status(cat, spentByName[cat.Name].value())
		summary.Categories = append(summary.Categories, st)
		total.add(cat.Limit)
		spent.add(st.Spent)
	}

	summary.TotalBudget = total.value()
	summary.SpentSoFar = spent.value()
	summary.Remaining = total.sub(spent)
	if summary.TotalBudget > 0 {
		summary.PercentageUsed = percentOf(summary.SpentSoFar, summary.TotalBudget)
	}
	return summary
}

func (c *Calculator) status(category Category, spent float64) CategoryStatus {
	st := CategoryStatus{
		ID:    category.ID,
		Name:  category.Name,
		Limit: category.Limit,
		Icon:  category.Icon,
		Color: category.Color,
		Spent: spent,
	}

	if category.Limit == 0 {
		if spent > 0 {
			st.Percentage = unbudgetedPercentage
			st.Status = StatusUnbudgetedSpending
			st.StatusColor = SeverityCritical
			return st
		}
		st.Status, st.StatusColor = c.thresholds.classify(0)
		return st
	}

	st.Percentage = percentOf(spent, category.Limit)
	st.Status, st.StatusColor = c.thresholds.classify(st.Percentage)
	return st
}

// Percentage returns part as a percentage of whole rounded to one decimal,
// or 0 when whole is not positive.
func Percentage(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return percentOf(part, whole)
}

func spentFor(name string, transactions []Transaction) float64 {
	var acc accumulator
	for _, t := range transactions {
		if t.Category == name {
			acc.addExpense(t.Amount)
		}
	}
	return acc.value()
}

// accumulator sums money exactly. Non-finite inputs cannot be represented
// as decimals and are carried separately as floats.
type accumulator struct {
	sum       decimal.Decimal
	nonFinite float64
}

func (a *accumulator) add(v float64) {
	if !finite(v) {
		a.nonFinite += v
		return
	}
	a.sum = a.sum.Add(decimal.NewFromFloat(v))
}

func (a *accumulator) addExpense(amount float64) {
	if amount < 0 {
		a.add(-amount)
	}
}

func (a *accumulator) value() float64 {
	return a.sum.InexactFloat64() + a.nonFinite
}

func (a *accumulator) sub(b accumulator) float64 {
	if a.nonFinite != 0 || b.nonFinite != 0 {
		return a.value() - b.value()
	}
	return a.sum.Sub(b.sum).InexactFloat64()
}

var hundred = decimal.NewFromInt(100)

// percentOf returns part/whole*100 rounded half away from zero to one
// decimal. whole must be non-zero.
func percentOf(part, whole float64) float64 {
	if !finite(part) || !finite(whole) {
		v := part / whole * 100
		if !finite(v) {
			return v
		}
		return decimal.NewFromFloat(v).Round(1).InexactFloat64()
	}
	return decimal.NewFromFloat(part).
		Div(decimal.NewFromFloat(whole)).
		Mul(hundred).
		Round(1).
		InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
