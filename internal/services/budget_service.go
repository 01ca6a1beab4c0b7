package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// progressConcurrency bounds the per-budget spend queries of one request.
const progressConcurrency = 8

// BudgetInput is what a caller supplies to create a budget.
type BudgetInput struct {
	CategoryID    core.ID       `json:"categoryId"`
	SubCategoryID core.ID       `json:"subCategoryId,omitempty"`
	Limit         core.Money    `json:"limit"`
	Month         core.MonthKey `json:"month"`
}

// BudgetUpdate carries the editable fields of a budget. A nil field keeps
// the stored value.
type BudgetUpdate struct {
	Limit *core.Money    `json:"limit,omitempty"`
	Month *core.MonthKey `json:"month,omitempty"`
}

// BudgetPage is everything the budgets view shows for one month.
type BudgetPage struct {
	Month    core.MonthKey          `json:"month"`
	Budgets  []core.BudgetView      `json:"budgets"`
	Progress []core.BudgetProgress  `json:"progress"`
	Summary  core.BudgetPageSummary `json:"summary"`
	Alerts   []core.BudgetProgress  `json:"alerts"`
	Options  []core.MonthOption     `json:"monthOptions,omitempty"`
}

type BudgetService struct {
	budgets    storage.BudgetRepository
	categories storage.CategoryRepository
	agg        *Aggregator
}

func NewBudgetService(budgets storage.BudgetRepository, categories storage.CategoryRepository, agg *Aggregator) *BudgetService {
	return &BudgetService{
		budgets:    budgets,
		categories: categories,
		agg:        agg,
	}
}

// Progress computes the progress of every budget of the month, most
// recently created first. A budget whose category is gone is reported
// under "Unknown" rather than dropped.
func (s *BudgetService) Progress(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.BudgetProgress, error) {
	if err := requireMonth(month); err != nil {
		return nil, err
	}
	views, err := s.budgets.ListBudgets(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return s.progressOf(ctx, views)
}

func (s *BudgetService) progressOf(ctx context.Context, views []core.BudgetView) ([]core.BudgetProgress, error) {
	out := make([]core.BudgetProgress, len(views))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(progressConcurrency)
	for i, v := range views {
		g.Go(func() error {
			spent, err := s.agg.Spent(gctx, v.Budget)
			if err != nil {
				return fmt.Errorf("spent for budget %s: %w", v.ID, err)
			}
			out[i] = core.ComputeProgress(v, spent)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Page assembles the budgets view. The header totals count category-level
// budgets only, the same rule as the dashboard summary.
func (s *BudgetService) Page(ctx context.Context, userID core.ID, month core.MonthKey) (BudgetPage, error) {
	if err := requireMonth(month); err != nil {
		return BudgetPage{}, err
	}
	views, err := s.budgets.ListBudgets(ctx, userID, month)
	if err != nil {
		return BudgetPage{}, fmt.Errorf("list budgets: %w", err)
	}
	progress, err := s.progressOf(ctx, views)
	if err != nil {
		return BudgetPage{}, err
	}
	return BudgetPage{
		Month:    month,
		Budgets:  views,
		Progress: progress,
		Summary:  core.SummarizeBudgets(month, progress),
		Alerts:   core.Alerts(progress),
	}, nil
}

// Alerts returns the month's budgets in the warning band or above.
func (s *BudgetService) Alerts(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.BudgetProgress, error) {
	progress, err := s.Progress(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	return core.Alerts(progress), nil
}

func (s *BudgetService) HasBudgets(ctx context.Context, userID core.ID, month core.MonthKey) (bool, error) {
	if err := requireMonth(month); err != nil {
		return false, err
	}
	n, err := s.budgets.CountBudgets(ctx, userID, month)
	if err != nil {
		return false, fmt.Errorf("count budgets: %w", err)
	}
	return n > 0, nil
}

func (s *BudgetService) Create(ctx context.Context, userID core.ID, in BudgetInput) core.Result[core.Budget] {
	b, err := s.buildBudget(ctx, userID, in)
	if err != nil {
		return fail[core.Budget](ctx, "create budget", err)
	}

	exists, err := s.budgets.BudgetExists(ctx, userID, b.Month, b.CategoryID, b.SubCategoryID)
	if err != nil {
		return fail[core.Budget](ctx, "create budget", err)
	}
	if exists {
		return fail[core.Budget](ctx, "create budget", core.ErrBudgetExists)
	}
	// the store enforces the same tuple, covering a concurrent create
	if err := s.budgets.CreateBudget(ctx, b); err != nil {
		return fail[core.Budget](ctx, "create budget", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"budget_id", b.ID,
		"category_id", b.CategoryID,
		"month", b.Month.String(),
		"limit", b.Limit.String())
	if saved, err := s.budgets.GetBudget(ctx, userID, b.ID); err == nil {
		b = saved
	}
	return core.Ok(b, "Budget created")
}

func (s *BudgetService) buildBudget(ctx context.Context, userID core.ID, in BudgetInput) (core.Budget, error) {
	catID, err := normalizeID("categoryId", in.CategoryID)
	if err != nil {
		return core.Budget{}, err
	}
	subID, err := normalizeID("subCategoryId", in.SubCategoryID)
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{
		ID:            core.NewID(),
		UserID:        userID,
		CategoryID:    catID,
		SubCategoryID: subID,
		Limit:         in.Limit,
		Month:         in.Month,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := checkCategory(ctx, s.categories, userID, catID, subID); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// Update changes limit and month. Category scope is fixed at creation.
func (s *BudgetService) Update(ctx context.Context, userID, id core.ID, in BudgetUpdate) core.Result[core.Budget] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.Budget](ctx, "update budget", err)
	}
	if in.Limit == nil && in.Month == nil {
		return fail[core.Budget](ctx, "update budget", core.Invalid("limit", errors.New("limit or month is required")))
	}
	cur, err := s.budgets.GetBudget(ctx, userID, id)
	if err != nil {
		return fail[core.Budget](ctx, "update budget", err)
	}

	next := cur
	if in.Limit != nil {
		next.Limit = *in.Limit
	}
	if in.Month != nil {
		next.Month = *in.Month
	}
	if err := next.Validate(); err != nil {
		return fail[core.Budget](ctx, "update budget", err)
	}
	if err := s.budgets.UpdateBudget(ctx, next); err != nil {
		return fail[core.Budget](ctx, "update budget", err)
	}

	slog.InfoContext(ctx, "Budget updated", "budget_id", id, "month", next.Month.String())
	if saved, err := s.budgets.GetBudget(ctx, userID, id); err == nil {
		next = saved
	}
	return core.Ok(next, "Budget updated")
}

func (s *BudgetService) Delete(ctx context.Context, userID, id core.ID) core.Result[core.ID] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.ID](ctx, "delete budget", err)
	}
	if err := s.budgets.DeleteBudget(ctx, userID, id); err != nil {
		return fail[core.ID](ctx, "delete budget", err)
	}
	slog.InfoContext(ctx, "Budget deleted", "budget_id", id)
	return core.Ok(id, "Budget deleted")
}

// checkCategory verifies that the referenced category (and sub-category)
// belong to the user and to each other.
func checkCategory(ctx context.Context, categories storage.CategoryRepository, userID, categoryID, subCategoryID core.ID) error {
	if _, err := categories.GetCategory(ctx, userID, categoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Invalid("categoryId", core.ErrNotFound)
		}
		return fmt.Errorf("get category: %w", err)
	}
	if subCategoryID.IsZero() {
		return nil
	}
	sub, err := categories.GetSubCategory(ctx, userID, subCategoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Invalid("subCategoryId", core.ErrNotFound)
		}
		return fmt.Errorf("get sub-category: %w", err)
	}
	if sub.CategoryID != categoryID {
		return core.Invalid("subCategoryId", core.ErrSubCategoryMismatch)
	}
	return nil
}
