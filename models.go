package main

import (
	"fmt"
	"strconv"
	"time"

	"fintrack-backend/internal/budget"
)

const (
	transactionTypeIncome  = "income"
	transactionTypeExpense = "expense"
)

// Transaction represents a financial transaction. Category holds the name
// of the budget category it is attributed to. Money fields are bounded by
// the DECIMAL(12,2) columns they are stored in.
type Transaction struct {
	ID          int       `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description" binding:"required,max=255"`
	Category    string    `json:"category" binding:"required,max=100"`
	Amount      float64   `json:"amount" binding:"gt=-10000000000,lt=10000000000"`
	Type        string    `json:"type" binding:"omitempty,oneof=income expense"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

// BudgetCategory represents a spending bucket with a monthly limit
type BudgetCategory struct {
	ID        int       `json:"id"`
	Name      string    `json:"name" binding:"required,max=100"`
	Limit     float64   `json:"limit" binding:"gte=0,lt=10000000000"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BudgetCategoryPatch carries the fields of a partial category update
type BudgetCategoryPatch struct {
	Name  *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Limit *float64 `json:"limit" binding:"omitempty,gte=0,lt=10000000000"`
	Icon  *string  `json:"icon"`
	Color *string  `json:"color"`
}

// Goal represents a savings goal
type Goal struct {
	ID            int       `json:"id"`
	Name          string    `json:"name" binding:"required,max=100"`
	TargetAmount  float64   `json:"target_amount" binding:"gt=0,lt=10000000000"`
	CurrentAmount float64   `json:"current_amount" binding:"gte=0,lt=10000000000"`
	Color         string    `json:"color"`
	Icon          string    `json:"icon"`
	Progress      float64   `json:"progress"`
	CreatedAt     time.Time `json:"created_at"`
}

// GoalUpdate sets the saved amount of a goal
type GoalUpdate struct {
	CurrentAmount *float64 `json:"current_amount" binding:"required,gte=0,lt=10000000000"`
}

// DashboardStats contains the all-time balance figures
type DashboardStats struct {
	TotalBalance float64 `json:"totalBalance"`
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
}

// Dashboard contains the stats and most recent transactions
type Dashboard struct {
	Stats        DashboardStats `json:"stats"`
	Transactions []Transaction  `json:"transactions"`
}

// AnalyticsSummary contains summary statistics for analytics
type AnalyticsSummary struct {
	TotalIncome      float64 `json:"total_income"`
	TotalExpenses    float64 `json:"total_expenses"`
	TransactionCount int     `json:"transaction_count"`
}

// CategoryAnalytics contains analytics data for a specific category
type CategoryAnalytics struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Total float64 `json:"total"`
}

// Analytics contains all analytics data
type Analytics struct {
	Summary    AnalyticsSummary    `json:"summary"`
	ByCategory []CategoryAnalytics `json:"byCategory"`
}

// CategoryStatusResponse is a computed category status plus the colour
// classes the web client renders it with.
type CategoryStatusResponse struct {
	budget.CategoryStatus
	IconColor     string `json:"iconColor"`
	IconBg        string `json:"iconBg"`
	ProgressColor string `json:"progressColor"`
}

// BudgetOverviewResponse is the payload of GET /api/budget
type BudgetOverviewResponse struct {
	TotalBudget    float64                  `json:"totalBudget"`
	SpentSoFar     float64                  `json:"spentSoFar"`
	Remaining      float64                  `json:"remaining"`
	PercentageUsed float64                  `json:"percentageUsed"`
	Thresholds     budget.Thresholds        `json:"thresholds"`
	Categories     []CategoryStatusResponse `json:"categories"`
}

func newBudgetOverview(summary budget.Summary, thresholds budget.Thresholds) BudgetOverviewResponse {
	resp := BudgetOverviewResponse{
		TotalBudget:    summary.TotalBudget,
		SpentSoFar:     summary.SpentSoFar,
		Remaining:      summary.Remaining,
		PercentageUsed: summary.PercentageUsed,
		Thresholds:     thresholds,
		Categories:     make([]CategoryStatusResponse, 0, len(summary.Categories)),
	}
	for _, st := range summary.Categories {
		color := st.Color
		if color == "" {
			color = defaultCategoryColor
		}
		resp.Categories = append(resp.Categories, CategoryStatusResponse{
			CategoryStatus: st,
			IconBg:         fmt.Sprintf("bg-%s-100", color),
			IconColor:      fmt.Sprintf("text-%s-600", color),
			ProgressColor:  fmt.Sprintf("bg-%s-500", color),
		})
	}
	return resp
}

func toBudgetCategories(categories []BudgetCategory) []budget.Category {
	out := make([]budget.Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, budget.Category{
			ID:    strconv.Itoa(c.ID),
			Name:  c.Name,
			Limit: c.Limit,
			Icon:  c.Icon,
			Color: c.Color,
		})
	}
	return out
}

func toBudgetTransactions(transactions []Transaction) []budget.Transaction {
	out := make([]budget.Transaction, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, budget.Transaction{
			ID:       strconv.Itoa(t.ID),
			Category: t.Category,
			Amount:   t.Amount,
			Date:     t.Date,
			Type:     t.Type,
		})
	}
	return out
}

// transactionType derives the type tag from the sign of amount.
func transactionType(amount float64) string {
	if amount >= 0 {
		return transactionTypeIncome
	}
	return transactionTypeExpense
}
