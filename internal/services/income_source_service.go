package services

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type IncomeSourceService struct {
	sources storage.IncomeSourceRepository
}

func NewIncomeSourceService(sources storage.IncomeSourceRepository) *IncomeSourceService {
	return &IncomeSourceService{sources: sources}
}

func (s *IncomeSourceService) List(ctx context.Context, userID core.ID) ([]core.IncomeSource, error) {
	return s.sources.ListIncomeSources(ctx, userID)
}

func (s *IncomeSourceService) Create(ctx context.Context, userID core.ID, in LabelInput) core.Result[core.IncomeSource] {
	in = in.trimmed()
	src := core.IncomeSource{ID: core.NewID(), UserID: userID, Name: in.Name, Icon: in.Icon, Color: in.Color}
	if err := src.Validate(); err != nil {
		return fail[core.IncomeSource](ctx, "create income source", err)
	}
	if err := s.sources.CreateIncomeSource(ctx, src); err != nil {
		return fail[core.IncomeSource](ctx, "create income source", err)
	}
	slog.InfoContext(ctx, "Income source created", "source_id", src.ID, "name", src.Name)
	return core.Ok(src, "Income source created")
}

func (s *IncomeSourceService) Update(ctx context.Context, userID, id core.ID, in LabelInput) core.Result[core.IncomeSource] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.IncomeSource](ctx, "update income source", err)
	}
	in = in.trimmed()
	src := core.IncomeSource{ID: id, UserID: userID, Name: in.Name, Icon: in.Icon, Color: in.Color}
	if err := src.Validate(); err != nil {
		return fail[core.IncomeSource](ctx, "update income source", err)
	}
	if err := s.sources.UpdateIncomeSource(ctx, src); err != nil {
		return fail[core.IncomeSource](ctx, "update income source", err)
	}
	return core.Ok(src, "Income source updated")
}

// Delete removes the source. Incomes that referenced it are kept and drop
// out of the by-source breakdown.
func (s *IncomeSourceService) Delete(ctx context.Context, userID, id core.ID) core.Result[core.ID] {
	id, err := targetID(id)
	if err != nil {
		return fail[core.ID](ctx, "delete income source", err)
	}
	if err := s.sources.DeleteIncomeSource(ctx, userID, id); err != nil {
		return fail[core.ID](ctx, "delete income source", err)
	}
	return core.Ok(id, "Income source deleted")
}
