package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type IncomeInput struct {
	SourceID core.ID    `json:"incomeSourceId"`
	Amount   core.Money `json:"amount"`
	Date     core.Date  `json:"date"`
	Note     string     `json:"note,omitempty"`
}

type IncomeService struct {
	incomes   storage.IncomeRepository
	sources   storage.IncomeSourceRepository
	publisher Publisher
}

func NewIncomeService(incomes storage.IncomeRepository, sources storage.IncomeSourceRepository, publisher Publisher) *IncomeService {
	return &IncomeService{
		incomes:   incomes,
		sources:   sources,
		publisher: publisher,
	}
}

func (s *IncomeService) build(ctx context.Context, userID core.ID, in IncomeInput) (core.Income, error) {
	srcID, err := normalizeID("incomeSourceId", in.SourceID)
	if err != nil {
		return core.Income{}, err
	}
	income := core.Income{
		UserID:   userID,
		SourceID: srcID,
		Amount:   in.Amount,
		Date:     in.Date,
		Note:     strings.TrimSpace(in.Note),
	}
	if err := income.Validate(); err != nil {
		return core.Income{}, err
	}
	if _, err := s.sources.GetIncomeSource(ctx, userID, srcID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Income{}, core.Invalid("incomeSourceId", core.ErrNotFound)
		}
		return core.Income{}, fmt.Errorf("get income source: %w", err)
	}
	return income, nil
}

func (s *IncomeService) Create(ctx context.Context, userID core.ID, in IncomeInput) core.Result[core.Income] {
	income, err := s.build(ctx, userID, in)
	if err != nil {
		return fail[core.Income](ctx, "create income", err)
	}
	income.ID = core.NewID()

	if err := s.incomes.CreateIncome(ctx, income); err != nil {
		return fail[core.Income](ctx, "create income", fmt.Errorf("save income: %w", err))
	}

	slog.InfoContext(ctx, "Income created",
		"income_id", income.ID,
		"amount", income.Amount.String(),
		"month", income.Date.Month().String())
	publishChange(ctx, s.publisher, core.KindIncome, amqp.ActionCreated, userID, income.ID, income.Date.Month())
	return core.Ok(s.stored(ctx, income), "Income created")
}

func (s *IncomeService) Update(ctx context.Context, userID, id core.ID, in IncomeInput) core.Result[core.Income] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.Income](ctx, "update income", err)
	}
	income, err := s.build(ctx, userID, in)
	if err != nil {
		return fail[core.Income](ctx, "update income", err)
	}
	cur, err := s.incomes.GetIncome(ctx, userID, id)
	if err != nil {
		return fail[core.Income](ctx, "update income", err)
	}
	income.ID = id
	income.CreatedAt = cur.CreatedAt

	if err := s.incomes.UpdateIncome(ctx, income); err != nil {
		return fail[core.Income](ctx, "update income", err)
	}
	publishMove(ctx, s.publisher, core.KindIncome, userID, id, cur.Date.Month(), income.Date.Month())
	return core.Ok(s.stored(ctx, income), "Income updated")
}

func (s *IncomeService) stored(ctx context.Context, in core.Income) core.Income {
	v, err := s.incomes.GetIncome(ctx, in.UserID, in.ID)
	if err != nil {
		slog.WarnContext(ctx, "Reload after write failed", "income_id", in.ID, "error", err)
		return in
	}
	return v.Income
}

func (s *IncomeService) Delete(ctx context.Context, userID, id core.ID) core.Result[core.ID] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.ID](ctx, "delete income", err)
	}
	cur, err := s.incomes.GetIncome(ctx, userID, id)
	if err != nil {
		return fail[core.ID](ctx, "delete income", err)
	}
	if err := s.incomes.DeleteIncome(ctx, userID, id); err != nil {
		return fail[core.ID](ctx, "delete income", err)
	}
	publishChange(ctx, s.publisher, core.KindIncome, amqp.ActionDeleted, userID, id, cur.Date.Month())
	return core.Ok(id, "Income deleted")
}

func (s *IncomeService) Get(ctx context.Context, userID, id core.ID) (core.IncomeView, error) {
	id, err := targetID(id)
	if err != nil {
		return core.IncomeView{}, err
	}
	return s.incomes.GetIncome(ctx, userID, id)
}

func (s *IncomeService) List(ctx context.Context, userID core.ID, month core.MonthKey) ([]core.IncomeView, error) {
	if err := requireMonth(month); err != nil {
		return nil, err
	}
	return s.incomes.ListIncomes(ctx, userID, month)
}

func (s *IncomeService) Recent(ctx context.Context, userID core.ID, limit int) ([]core.IncomeView, error) {
	if limit <= 0 {
		return []core.IncomeView{}, nil
	}
	return s.incomes.RecentIncomes(ctx, userID, limit)
}
