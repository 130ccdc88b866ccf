package services

import (
	"context"
	"fmt"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/incidence"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/staging"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/validation"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/stagingstore"
	"github.com/arbportal/feedback-portal/pkg/eventbus"
	"github.com/arbportal/feedback-portal/pkg/metrics"
)

// UnresolvedViolationsError blocks a confirm whose change set still carries
// validation violations. The reviewer can retry with override.
type UnresolvedViolationsError struct {
	StagedID   string
	Violations []validation.Violation
}

func (e *UnresolvedViolationsError) Error() string {
	return fmt.Sprintf("change set %s has %d unresolved validation violations", e.StagedID, len(e.Violations))
}

// StagingService owns the review half of the lifecycle: list and inspect
// pending change sets, confirm them into the database, or discard them.
type StagingService struct {
	store     StagingStore
	repo      incidence.Repository
	publisher eventbus.EventBus
}

func NewStagingService(store StagingStore, repo incidence.Repository, publisher eventbus.EventBus) *StagingService {
	return &StagingService{store: store, repo: repo, publisher: publisher}
}

func (s *StagingService) List(ctx context.Context) ([]*staging.ChangeSet, []stagingstore.MalformedFile, error) {
	return s.store.List()
}

func (s *StagingService) Get(ctx context.Context, stagedID string) (*staging.ChangeSet, error) {
	return s.store.Get(stagedID)
}

// Confirm applies the staged change set to the database. The repository
// performs the stale check inside its transaction; on conflict nothing is
// written and the file stays pending so the reviewer can discard it.
func (s *StagingService) Confirm(ctx context.Context, stagedID string, override bool) (incidence.Incidence, error) {
	cs, err := s.store.Get(stagedID)
	if err != nil {
		return incidence.Incidence{}, err
	}
	if cs.HasViolations() && !override {
		return incidence.Incidence{}, &UnresolvedViolationsError{StagedID: stagedID, Violations: cs.Violations}
	}

	result, err := s.repo.ApplyChanges(ctx, incidence.ApplyParams{
		IncidenceID:   cs.IncidenceID,
		Sector:        cs.Sector,
		SchemaID:      cs.SchemaID,
		BaseUpdatedAt: cs.BaseUpdatedAt,
		Changes:       cs.ChangedFields(),
		StagedID:      stagedID,
	})
	if err != nil {
		return incidence.Incidence{}, err
	}

	if err := s.store.MarkProcessed(stagedID); err != nil {
		return incidence.Incidence{}, err
	}
	metrics.StagedConfirmsTotal.Inc()
	s.publisher.Publish(StagingConfirmedEvent{
		StagedID:   stagedID,
		Overridden: override,
		Result:     result,
	})
	return result, nil
}

func (s *StagingService) Discard(ctx context.Context, stagedID string) error {
	if err := s.store.Discard(stagedID); err != nil {
		return err
	}
	metrics.StagedDiscardsTotal.Inc()
	s.publisher.Publish(StagingDiscardedEvent{StagedID: stagedID})
	return nil
}
