package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("conflict")
)

const uniqueViolation = "23505"

// Store is the persistence layer behind the HTTP handlers
type Store interface {
	Ping(ctx context.Context) error

	ListTransactions(ctx context.Context, limit int) ([]Transaction, error)
	ListTransactionsBetween(ctx context.Context, start, end time.Time) ([]Transaction, error)
	CreateTransaction(ctx context.Context, t Transaction) (Transaction, error)
	DeleteTransaction(ctx context.Context, id int) error
	DashboardStats(ctx context.Context) (DashboardStats, error)
	Analytics(ctx context.Context, since time.Time) (Analytics, error)

	ListBudgetCategories(ctx context.Context) ([]BudgetCategory, error)
	SeedBudgetCategories(ctx context.Context) ([]BudgetCategory, error)
	CreateBudgetCategory(ctx context.Context, c BudgetCategory) (BudgetCategory, error)
	UpdateBudgetCategory(ctx context.Context, id int, patch BudgetCategoryPatch) (BudgetCategory, error)
	DeleteBudgetCategory(ctx context.Context, id int) error

	ListGoals(ctx context.Context) ([]Goal, error)
	CreateGoal(ctx context.Context, g Goal) (Goal, error)
	UpdateGoalAmount(ctx context.Context, id int, currentAmount float64) (Goal, error)
	DeleteGoal(ctx context.Context, id int) error
}

// pgStore implements Store on PostgreSQL through database/sql
type pgStore struct {
	db *sql.DB
}

func newPGStore(db *sql.DB) *pgStore {
	return &pgStore{db: db}
}

// mapError translates driver errors into the store's sentinels.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", errConflict, pgErr.Detail)
	}
	return err
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const transactionColumns = `id, date, description, category, amount::float8, type, icon, created_at`

func scanTransactions(rows *sql.Rows) ([]Transaction, error) {
	defer rows.Close()

	// ensure empty array ([]) instead of null when no rows
	transactions := make([]Transaction, 0)
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Description, &t.Category, &t.Amount, &t.Type, &t.Icon, &t.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *pgStore) ListTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY date DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (s *pgStore) ListTransactionsBetween(ctx context.Context, start, end time.Time) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE date >= $1 AND date < $2
		ORDER BY date DESC, id DESC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying transactions between %s and %s: %w", start.Format(time.DateOnly), end.Format(time.DateOnly), err)
	}
	return scanTransactions(rows)
}

func (s *pgStore) CreateTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	var result Transaction
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO transactions (date, description, category, amount, type, icon)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transactionColumns,
		t.Date, t.Description, t.Category, t.Amount, t.Type, t.Icon,
	).Scan(
		&result.ID, &result.Date, &result.Description, &result.Category,
		&result.Amount, &result.Type, &result.Icon, &result.CreatedAt,
	)
	if err != nil {
		return Transaction{}, fmt.Errorf("inserting transaction: %w", mapError(err))
	}
	return result, nil
}

func (s *pgStore) DeleteTransaction(ctx context.Context, id int) error {
	return s.deleteByID(ctx, "transactions", id)
}

func (s *pgStore) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount), 0)::float8 AS total_balance,
			COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0)::float8 AS total_income,
			COALESCE(SUM(CASE WHEN amount < 0 THEN amount ELSE 0 END), 0)::float8 AS total_expense
		FROM transactions
	`).Scan(&stats.TotalBalance, &stats.TotalIncome, &stats.TotalExpense)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("aggregating dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *pgStore) Analytics(ctx context.Context, since time.Time) (Analytics, error) {
	var summary AnalyticsSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0)::float8 AS total_income,
			COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0)::float8 AS total_expenses,
			COUNT(*) AS transaction_count
		FROM transactions
		WHERE date >= $1
	`, since).Scan(&summary.TotalIncome, &summary.TotalExpenses, &summary.TransactionCount)
	if err != nil {
		return Analytics{}, fmt.Errorf("querying analytics summary: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.category, COALESCE(c.color, $2) AS color, SUM(-t.amount)::float8 AS total
		FROM transactions t
		LEFT JOIN budget_categories c ON c.name = t.category
		WHERE t.date >= $1 AND t.amount < 0
		GROUP BY t.category, c.color
		ORDER BY total DESC
	`, since, defaultCategoryColor)
	if err != nil {
		return Analytics{}, fmt.Errorf("querying analytics by category: %w", err)
	}
	defer rows.Close()

	// ensure empty array ([]) instead of null when no rows
	byCategory := make([]CategoryAnalytics, 0)
	for rows.Next() {
		var cat CategoryAnalytics
		if err := rows.Scan(&cat.Name, &cat.Color, &cat.Total); err != nil {
			return Analytics{}, err
		}
		byCategory = append(byCategory, cat)
	}
	if err := rows.Err(); err != nil {
		return Analytics{}, err
	}

	return Analytics{Summary: summary, ByCategory: byCategory}, nil
}

const budgetCategoryColumns = `id, name, limit_amount::float8, icon, color, created_at, updated_at`

func scanBudgetCategories(rows *sql.Rows) ([]BudgetCategory, error) {
	defer rows.Close()

	categories := make([]BudgetCategory, 0)
	for rows.Next() {
		var c BudgetCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Limit, &c.Icon, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *pgStore) ListBudgetCategories(ctx context.Context) ([]BudgetCategory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+budgetCategoryColumns+` FROM budget_categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying budget categories: %w", err)
	}
	return scanBudgetCategories(rows)
}

// SeedBudgetCategories inserts the default categories and returns the
// resulting category list.
func (s *pgStore) SeedBudgetCategories(ctx context.Context) ([]BudgetCategory, error) {
	if _, err := s.db.ExecContext(ctx, seedSQL); err != nil {
		return nil, fmt.Errorf("failed to seed budget categories: %w", err)
	}
	return s.ListBudgetCategories(ctx)
}

func (s *pgStore) CreateBudgetCategory(ctx context.Context, c BudgetCategory) (BudgetCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		INSERT INTO budget_categories (name, limit_amount, icon, color)
		VALUES ($1, $2, $3, $4)
		RETURNING `+budgetCategoryColumns,
		c.Name, c.Limit, c.Icon, c.Color,
	)
	if err != nil {
		return BudgetCategory{}, fmt.Errorf("inserting budget category: %w", mapError(err))
	}
	return singleBudgetCategory(rows)
}

func (s *pgStore) UpdateBudgetCategory(ctx context.Context, id int, patch BudgetCategoryPatch) (BudgetCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		UPDATE budget_categories SET
			name = COALESCE($2, name),
			limit_amount = COALESCE($3, limit_amount),
			icon = COALESCE($4, icon),
			color = COALESCE($5, color),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING `+budgetCategoryColumns,
		id, patch.Name, patch.Limit, patch.Icon, patch.Color,
	)
	if err != nil {
		return BudgetCategory{}, fmt.Errorf("updating budget category %d: %w", id, mapError(err))
	}
	return singleBudgetCategory(rows)
}

func singleBudgetCategory(rows *sql.Rows) (BudgetCategory, error) {
	categories, err := scanBudgetCategories(rows)
	if err != nil {
		return BudgetCategory{}, mapError(err)
	}
	if len(categories) == 0 {
		return BudgetCategory{}, errNotFound
	}
	return categories[0], nil
}

func (s *pgStore) DeleteBudgetCategory(ctx context.Context, id int) error {
	return s.deleteByID(ctx, "budget_categories", id)
}

const goalColumns = `id, name, target_amount::float8, current_amount::float8, color, icon, created_at`

func scanGoal(row interface{ Scan(...any) error }) (Goal, error) {
	var g Goal
	err := row.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Color, &g.Icon, &g.CreatedAt)
	return g, err
}

func (s *pgStore) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer rows.Close()

	goals := make([]Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *pgStore) CreateGoal(ctx context.Context, g Goal) (Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO goals (name, target_amount, current_amount, color, icon)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+goalColumns,
		g.Name, g.TargetAmount, g.CurrentAmount, g.Color, g.Icon,
	)
	created, err := scanGoal(row)
	if err != nil {
		return Goal{}, fmt.Errorf("inserting goal: %w", mapError(err))
	}
	return created, nil
}

func (s *pgStore) UpdateGoalAmount(ctx context.Context, id int, currentAmount float64) (Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE goals SET current_amount = $2
		WHERE id = $1
		RETURNING `+goalColumns,
		id, currentAmount,
	)
	updated, err := scanGoal(row)
	if err != nil {
		return Goal{}, fmt.Errorf("updating goal %d: %w", id, mapError(err))
	}
	return updated, nil
}

func (s *pgStore) DeleteGoal(ctx context.Context, id int) error {
	return s.deleteByID(ctx, "goals", id)
}

// deleteByID removes one row from table. table is never user input.
func (s *pgStore) deleteByID(ctx context.Context, table string, id int) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}
