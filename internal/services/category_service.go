package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// LabelInput names a category or an income source.
type LabelInput struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func (in LabelInput) trimmed() LabelInput {
	return LabelInput{
		Name:  strings.TrimSpace(in.Name),
		Icon:  strings.TrimSpace(in.Icon),
		Color: strings.TrimSpace(in.Color),
	}
}

type CategoryService struct {
	categories storage.CategoryRepository
	agg        *Aggregator
}

func NewCategoryService(categories storage.CategoryRepository, agg *Aggregator) *CategoryService {
	return &CategoryService{categories: categories, agg: agg}
}

// List returns the user's categories with their sub-categories, both
// sorted by name.
func (s *CategoryService) List(ctx context.Context, userID core.ID) ([]core.CategoryWithSubs, error) {
	cats, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	subs, err := s.categories.ListSubCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sub-categories: %w", err)
	}

	byParent := make(map[core.ID][]core.SubCategory, len(cats))
	for _, sc := range subs {
		byParent[sc.CategoryID] = append(byParent[sc.CategoryID], sc)
	}
	out := make([]core.CategoryWithSubs, 0, len(cats))
	for _, c := range cats {
		children := byParent[c.ID]
		if children == nil {
			children = []core.SubCategory{}
		}
		out = append(out, core.CategoryWithSubs{Category: c, SubCategories: children})
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, userID core.ID, in LabelInput) core.Result[core.Category] {
	in = in.trimmed()
	c := core.Category{ID: core.NewID(), UserID: userID, Name: in.Name, Icon: in.Icon, Color: in.Color}
	if err := c.Validate(); err != nil {
		return fail[core.Category](ctx, "create category", err)
	}
	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return fail[core.Category](ctx, "create category", err)
	}
	slog.InfoContext(ctx, "Category created", "category_id", c.ID, "name", c.Name)
	return core.Ok(c, "Category created")
}

func (s *CategoryService) Update(ctx context.Context, userID, id core.ID, in LabelInput) core.Result[core.Category] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.Category](ctx, "update category", err)
	}
	in = in.trimmed()
	c := core.Category{ID: id, UserID: userID, Name: in.Name, Icon: in.Icon, Color: in.Color}
	if err := c.Validate(); err != nil {
		return fail[core.Category](ctx, "update category", err)
	}
	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		return fail[core.Category](ctx, "update category", err)
	}
	return core.Ok(c, "Category updated")
}

// Delete removes a category and its sub-categories. Expenses and budgets
// that referenced it stay and show up as "Unknown".
func (s *CategoryService) Delete(ctx context.Context, userID, id core.ID) core.Result[core.ID] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.ID](ctx, "delete category", err)
	}
	if err := s.categories.DeleteCategory(ctx, userID, id); err != nil {
		return fail[core.ID](ctx, "delete category", err)
	}
	slog.InfoContext(ctx, "Category deleted", "category_id", id)
	return core.Ok(id, "Category deleted")
}

func (s *CategoryService) CreateSubCategory(ctx context.Context, userID, categoryID core.ID, name string) core.Result[core.SubCategory] {
	categoryID, err := targetID(categoryID)
	if err != nil {
		return fail[core.SubCategory](ctx, "create sub-category", err)
	}
	sc := core.SubCategory{ID: core.NewID(), UserID: userID, CategoryID: categoryID, Name: strings.TrimSpace(name)}
	if err := sc.Validate(); err != nil {
		return fail[core.SubCategory](ctx, "create sub-category", err)
	}
	if err := s.categories.CreateSubCategory(ctx, sc); err != nil {
		return fail[core.SubCategory](ctx, "create sub-category", err)
	}
	return core.Ok(sc, "Sub-category created")
}

func (s *CategoryService) DeleteSubCategory(ctx context.Context, userID, id core.ID) core.Result[core.ID] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.ID](ctx, "delete sub-category", err)
	}
	if err := s.categories.DeleteSubCategory(ctx, userID, id); err != nil {
		return fail[core.ID](ctx, "delete sub-category", err)
	}
	return core.Ok(id, "Sub-category deleted")
}

// Stats returns per-category and per-sub-category spending for the month.
func (s *CategoryService) Stats(ctx context.Context, userID core.ID, month core.MonthKey) (core.CategoryStats, error) {
	if err := requireMonth(month); err != nil {
		return core.CategoryStats{}, err
	}
	stats := core.CategoryStats{Month: month}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.Categories, err = s.agg.SumByCategory(gctx, userID, month)
		return err
	})
	g.Go(func() error {
		var err error
		stats.SubCategories, err = s.agg.SumBySubCategory(gctx, userID, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.CategoryStats{}, fmt.Errorf("category stats: %w", err)
	}
	return stats, nil
}
