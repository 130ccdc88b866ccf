package services

import (
	"context"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/incidence"
)

type IncidenceService struct {
	repo incidence.Repository
}

func NewIncidenceService(repo incidence.Repository) *IncidenceService {
	return &IncidenceService{repo: repo}
}

func (s *IncidenceService) GetByID(ctx context.Context, id int64) (incidence.Incidence, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *IncidenceService) GetPaginated(ctx context.Context, params *incidence.FindParams) ([]incidence.Incidence, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}
