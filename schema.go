package main

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS budget_categories (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		limit_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
		icon VARCHAR(50) NOT NULL DEFAULT '',
		color VARCHAR(30) NOT NULL DEFAULT 'blue',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id SERIAL PRIMARY KEY,
		date TIMESTAMPTZ NOT NULL,
		description VARCHAR(255) NOT NULL,
		category VARCHAR(100) NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		type VARCHAR(20) NOT NULL,
		icon VARCHAR(50) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS goals (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		target_amount DECIMAL(12,2) NOT NULL,
		current_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
		color VARCHAR(30) NOT NULL DEFAULT 'bg-blue-500',
		icon VARCHAR(50) NOT NULL DEFAULT 'savings',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Transactions join budget categories by name
	CREATE UNIQUE INDEX IF NOT EXISTS idx_budget_categories_name ON budget_categories(name);
	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date DESC);
	CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);
`

const seedSQL = `
	INSERT INTO budget_categories (name, limit_amount, icon, color) VALUES
		('Food', 800.00, 'Utensils', 'orange'),
		('Rent & Housing', 2400.00, 'Home', 'green'),
		('Transport', 300.00, 'Bus', 'blue'),
		('Entertainment', 400.00, 'Music', 'purple'),
		('Bills', 500.00, 'Zap', 'yellow'),
		('Shopping', 600.00, 'ShoppingBag', 'pink')
	ON CONFLICT (name) DO NOTHING;
`

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// seedDemoData inserts a month of demo transactions and a few savings
// goals. Idempotent: will only run if there are zero transactions present.
func seedDemoData(ctx context.Context, db *sql.DB) error {
	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&cnt); err != nil {
		return fmt.Errorf("checking transactions count: %w", err)
	}
	if cnt > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const demoTx = `
	INSERT INTO transactions (date, description, category, amount, type, icon) VALUES
	(date_trunc('month', CURRENT_DATE) + INTERVAL '0 days', 'Monthly Salary', 'Income', 5200.00, 'income', 'briefcase'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '1 days', 'Rent - Apartment', 'Rent & Housing', -2400.00, 'expense', 'home'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '2 days', 'Utilities - Electricity', 'Bills', -120.45, 'expense', 'zap'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '3 days', 'Groceries - Whole Foods', 'Food', -96.72, 'expense', 'shopping-cart'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '4 days', 'Subway Pass', 'Transport', -45.00, 'expense', 'bus'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '5 days', 'Movie Night', 'Entertainment', -28.50, 'expense', 'film'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '6 days', 'Groceries - Trader Joes', 'Food', -64.11, 'expense', 'shopping-cart'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '7 days', 'Freelance: Dashboard Charts', 'Freelance', 600.00, 'income', 'laptop'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '8 days', 'Utilities - Internet', 'Bills', -60.00, 'expense', 'wifi'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '9 days', 'Concert Tickets', 'Entertainment', -140.00, 'expense', 'music'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '10 days', 'Groceries - Costco', 'Food', -132.39, 'expense', 'shopping-cart'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '11 days', 'Rideshare', 'Transport', -22.30, 'expense', 'car'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '12 days', 'Apple Store', 'Shopping', -1200.00, 'expense', 'shopping-bag'),
	(date_trunc('month', CURRENT_DATE) + INTERVAL '12 days', 'Starbucks', 'Food', -12.50, 'expense', 'coffee')
	`
	if _, err := tx.ExecContext(ctx, demoTx); err != nil {
		return fmt.Errorf("seeding demo transactions: %w", err)
	}

	const demoGoals = `
	INSERT INTO goals (name, target_amount, current_amount, color, icon) VALUES
	('Emergency Fund', 10000.00, 4200.00, 'bg-green-500', 'shield'),
	('New Laptop', 2000.00, 650.00, 'bg-blue-500', 'laptop'),
	('House Down Payment', 60000.00, 12500.00, 'bg-purple-500', 'house')
	`
	if _, err := tx.ExecContext(ctx, demoGoals); err != nil {
		return fmt.Errorf("seeding demo goals: %w", err)
	}

	return tx.Commit()
}
