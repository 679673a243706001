package main

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu           sync.Mutex
	nextID       int
	transactions []Transaction
	categories   []BudgetCategory
	goals        []Goal
	pingErr      error
	failWith     error
}

func newMemStore() *memStore {
	return &memStore{nextID: 1}
}

func (m *memStore) id() int {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *memStore) sortedTransactions() []Transaction {
	out := append([]Transaction(nil), m.transactions...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func (m *memStore) ListTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	out := m.sortedTransactions()
	if len(out) > limit {
		out = out[:limit]
	}
	return append(make([]Transaction, 0, len(out)), out...), nil
}

func (m *memStore) ListTransactionsBetween(ctx context.Context, start, end time.Time) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	out := make([]Transaction, 0)
	for _, t := range m.sortedTransactions() {
		if !t.Date.Before(start) && t.Date.Before(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) CreateTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t.ID = m.id()
	t.CreatedAt = t.Date
	m.transactions = append(m.transactions, t)
	return t, nil
}

func (m *memStore) DeleteTransaction(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.transactions {
		if t.ID == id {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) DashboardStats(ctx context.Context) (DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats DashboardStats
	for _, t := range m.transactions {
		stats.TotalBalance += t.Amount
		if t.Amount > 0 {
			stats.TotalIncome += t.Amount
		} else {
			stats.TotalExpense += t.Amount
		}
	}
	return stats, nil
}

func (m *memStore) Analytics(ctx context.Context, since time.Time) (Analytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	analytics := Analytics{ByCategory: make([]CategoryAnalytics, 0)}
	totals := map[string]float64{}
	var order []string
	for _, t := range m.transactions {
		if t.Date.Before(since) {
			continue
		}
		analytics.Summary.TransactionCount++
		if t.Amount > 0 {
			analytics.Summary.TotalIncome += t.Amount
			continue
		}
		analytics.Summary.TotalExpenses -= t.Amount
		if _, ok := totals[t.Category]; !ok {
			order = append(order, t.Category)
		}
		totals[t.Category] -= t.Amount
	}
	for _, name := range order {
		analytics.ByCategory = append(analytics.ByCategory, CategoryAnalytics{
			Name:  name,
			Color: defaultCategoryColor,
			Total: totals[name],
		})
	}
	sort.SliceStable(analytics.ByCategory, func(i, j int) bool {
		return analytics.ByCategory[i].Total > analytics.ByCategory[j].Total
	})
	return analytics, nil
}

func (m *memStore) ListBudgetCategories(ctx context.Context) ([]BudgetCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append(make([]BudgetCategory, 0, len(m.categories)), m.categories...), nil
}

var defaultBudgetCategories = []BudgetCategory{
	{Name: "Food", Limit: 800, Icon: "Utensils", Color: "orange"},
	{Name: "Rent & Housing", Limit: 2400, Icon: "Home", Color: "green"},
	{Name: "Transport", Limit: 300, Icon: "Bus", Color: "blue"},
	{Name: "Entertainment", Limit: 400, Icon: "Music", Color: "purple"},
	{Name: "Bills", Limit: 500, Icon: "Zap", Color: "yellow"},
	{Name: "Shopping", Limit: 600, Icon: "ShoppingBag", Color: "pink"},
}

func (m *memStore) SeedBudgetCategories(ctx context.Context) ([]BudgetCategory, error) {
	for _, c := range defaultBudgetCategories {
		if _, err := m.CreateBudgetCategory(ctx, c); err != nil && !errors.Is(err, errConflict) {
			return nil, err
		}
	}
	return m.ListBudgetCategories(ctx)
}

func (m *memStore) CreateBudgetCategory(ctx context.Context, c BudgetCategory) (BudgetCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return BudgetCategory{}, errConflict
		}
	}
	c.ID = m.id()
	m.categories = append(m.categories, c)
	return c, nil
}

func (m *memStore) UpdateBudgetCategory(ctx context.Context, id int, patch BudgetCategoryPatch) (BudgetCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.categories {
		c := &m.categories[i]
		if c.ID != id {
			continue
		}
		if patch.Name != nil {
			for _, other := range m.categories {
				if other.ID != id && other.Name == *patch.Name {
					return BudgetCategory{}, errConflict
				}
			}
			c.Name = *patch.Name
		}
		if patch.Limit != nil {
			c.Limit = *patch.Limit
		}
		if patch.Icon != nil {
			c.Icon = *patch.Icon
		}
		if patch.Color != nil {
			c.Color = *patch.Color
		}
		return *c, nil
	}
	return BudgetCategory{}, errNotFound
}

func (m *memStore) DeleteBudgetCategory(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.categories {
		if c.ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) ListGoals(ctx context.Context) ([]Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(make([]Goal, 0, len(m.goals)), m.goals...), nil
}

func (m *memStore) CreateGoal(ctx context.Context, g Goal) (Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g.ID = m.id()
	m.goals = append(m.goals, g)
	return g, nil
}

func (m *memStore) UpdateGoalAmount(ctx context.Context, id int, currentAmount float64) (Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.goals {
		if m.goals[i].ID == id {
			m.goals[i].CurrentAmount = currentAmount
			return m.goals[i], nil
		}
	}
	return Goal{}, errNotFound
}

func (m *memStore) DeleteGoal(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, g := range m.goals {
		if g.ID == id {
			m.goals = append(m.goals[:i], m.goals[i+1:]...)
			return nil
		}
	}
	return errNotFound
}
