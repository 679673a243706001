package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fintrack-backend/internal/budget"
)

const (
	requestTimeout       = 10 * time.Second
	transactionListLimit = 100
	recentTransactions   = 5
	analyticsWindowDays  = 30
	defaultCategoryColor = "blue"
	defaultGoalColor     = "bg-blue-500"
	defaultGoalIcon      = "savings"
)

type server struct {
	store  Store
	cache  *cache
	calc   *budget.Calculator
	ttl    CacheConfig
	logger *logrus.Logger
	now    func() time.Time
}

func newServer(store Store, c *cache, calc *budget.Calculator, ttl CacheConfig, logger *logrus.Logger) *server {
	return &server{
		store:  store,
		cache:  c,
		calc:   calc,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func httpStatusFromError(err error) int {
	switch {
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, errConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Internal errors are recorded on
// the gin context so the request logger reports them.
func respondError(c *gin.Context, err error) {
	status := httpStatusFromError(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// healthCheck handles the health check endpoint
func (s *server) healthCheck(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "fintrack-backend",
	})
}

// getDashboard returns the balance figures and the most recent transactions
func (s *server) getDashboard(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var dashboard Dashboard
	if s.cache.get(ctx, cacheKeyDashboard, &dashboard) {
		c.JSON(http.StatusOK, dashboard)
		return
	}

	stats, err := s.store.DashboardStats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	recent, err := s.store.ListTransactions(ctx, recentTransactions)
	if err != nil {
		respondError(c, err)
		return
	}

	dashboard = Dashboard{Stats: stats, Transactions: recent}
	s.cache.set(ctx, cacheKeyDashboard, dashboard, s.ttl.DashboardTTL)
	c.JSON(http.StatusOK, dashboard)
}

// getTransactions retrieves the latest transactions with optional Redis caching
func (s *server) getTransactions(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var transactions []Transaction
	if s.cache.get(ctx, cacheKeyTransactions, &transactions) {
		c.JSON(http.StatusOK, transactions)
		return
	}

	transactions, err := s.store.ListTransactions(ctx, transactionListLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	s.cache.set(ctx, cacheKeyTransactions, transactions, s.ttl.TransactionsTTL)
	c.JSON(http.StatusOK, transactions)
}

// addTransaction creates a new transaction. A missing type is derived from
// the sign of the amount; a missing date defaults to now.
func (s *server) addTransaction(c *gin.Context) {
	var t Transaction
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t.Description = strings.TrimSpace(t.Description)
	if t.Type == "" {
		t.Type = transactionType(t.Amount)
	} else if t.Amount != 0 && t.Type != transactionType(t.Amount) {
		// Budgets go by the sign, so the mismatch is kept but made visible.
		s.logger.WithFields(logrus.Fields{
			"category": t.Category,
			"amount":   t.Amount,
			"type":     t.Type,
		}).Warn("transaction type disagrees with amount sign")
	}
	if t.Date.IsZero() {
		t.Date = s.now()
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		respondError(c, err)
		return
	}

	s.cache.invalidate(ctx)
	c.JSON(http.StatusCreated, created)
}

// deleteTransaction removes a transaction by ID
func (s *server) deleteTransaction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	s.cache.invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// getBudgetOverview computes the current month's budget summary. The
// default categories are seeded on first use.
func (s *server) getBudgetOverview(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var overview BudgetOverviewResponse
	if s.cache.get(ctx, cacheKeyBudget, &overview) {
		c.JSON(http.StatusOK, overview)
		return
	}

	categories, err := s.store.ListBudgetCategories(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(categories) == 0 {
		categories, err = s.store.SeedBudgetCategories(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		s.logger.WithField("count", len(categories)).Info("seeded default budget categories")
	}

	start, end := budget.MonthWindow(s.now())
	transactions, err := s.store.ListTransactionsBetween(ctx, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	// Only this month's rows reach the calculator, whatever the store returned.
	ledger := budget.FilterPeriod(toBudgetTransactions(transactions), start, end)
	summary := s.calc.Summary(toBudgetCategories(categories), ledger)
	overview = newBudgetOverview(summary, s.calc.Thresholds())

	s.cache.set(ctx, cacheKeyBudget, overview, s.ttl.BudgetTTL)
	c.JSON(http.StatusOK, overview)
}

// createBudgetCategory adds a new budget category
func (s *server) createBudgetCategory(c *gin.Context) {
	var input BudgetCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be blank"})
		return
	}
	if input.Color == "" {
		input.Color = defaultCategoryColor
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	created, err := s.store.CreateBudgetCategory(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}

	s.cache.invalidate(ctx)
	c.JSON(http.StatusCreated, created)
}

// updateBudgetCategory applies a partial update. Renaming a category does
// not rewrite the category of existing transactions.
func (s *server) updateBudgetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch BudgetCategoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Name == nil && patch.Limit == nil && patch.Icon == nil && patch.Color == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be blank"})
			return
		}
		patch.Name = &name
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := s.store.UpdateBudgetCategory(ctx, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	s.cache.invalidate(ctx)
	c.JSON(http.StatusOK, updated)
}

// deleteBudgetCategory removes a budget category by ID
func (s *server) deleteBudgetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.store.DeleteBudgetCategory(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	s.cache.invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Budget category deleted"})
}

func withProgress(g Goal) Goal {
	g.Progress = budget.Percentage(g.CurrentAmount, g.TargetAmount)
	return g
}

// getGoals retrieves all savings goals
func (s *server) getGoals(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range goals {
		goals[i] = withProgress(goals[i])
	}
	c.JSON(http.StatusOK, goals)
}

// createGoal adds a new savings goal
func (s *server) createGoal(c *gin.Context) {
	var goal Goal
	if err := c.ShouldBindJSON(&goal); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if goal.Color == "" {
		goal.Color = defaultGoalColor
	}
	if goal.Icon == "" {
		goal.Icon = defaultGoalIcon
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	created, err := s.store.CreateGoal(ctx, goal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, withProgress(created))
}

// updateGoal sets the saved amount of a goal
func (s *server) updateGoal(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var update GoalUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := s.store.UpdateGoalAmount(ctx, id, *update.CurrentAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withProgress(updated))
}

// deleteGoal removes a savings goal
func (s *server) deleteGoal(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.store.DeleteGoal(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}

// getAnalytics retrieves the last 30 days of analytics with optional Redis caching
func (s *server) getAnalytics(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var analytics Analytics
	if s.cache.get(ctx, cacheKeyAnalytics, &analytics) {
		c.JSON(http.StatusOK, analytics)
		return
	}

	now := s.now()
	y, m, d := now.Date()
	since := time.Date(y, m, d-analyticsWindowDays, 0, 0, 0, 0, now.Location())

	analytics, err := s.store.Analytics(ctx, since)
	if err != nil {
		respondError(c, err)
		return
	}

	s.cache.set(ctx, cacheKeyAnalytics, analytics, s.ttl.AnalyticsTTL)
	c.JSON(http.StatusOK, analytics)
}
