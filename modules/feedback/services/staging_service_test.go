package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/incidence"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/staging"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/validation"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/stagingstore"
	"github.com/arbportal/feedback-portal/modules/feedback/services"
	"github.com/arbportal/feedback-portal/pkg/eventbus"
	"github.com/arbportal/feedback-portal/pkg/logging"
)

// fakeRepo mirrors the repository's optimistic-concurrency contract in
// memory: apply fails without mutation when the row moved past the staged
// base timestamp.
type fakeRepo struct {
	records map[int64]incidence.Incidence
	nextID  int64
	applied int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[int64]incidence.Incidence{}, nextID: 1}
}

func (r *fakeRepo) put(id int64, sector schemadef.Sector, schemaID string, fields map[string]any, updatedAt time.Time) {
	r.records[id] = incidence.Hydrate(id, sector, schemaID, fields, updatedAt.Add(-time.Hour), updatedAt)
	if id >= r.nextID {
		r.nextID = id + 1
	}
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (incidence.Incidence, error) {
	inc, ok := r.records[id]
	if !ok {
		return incidence.Incidence{}, incidence.ErrNotFound
	}
	return inc, nil
}

func (r *fakeRepo) GetPaginated(_ context.Context, _ *incidence.FindParams) ([]incidence.Incidence, int64, error) {
	var out []incidence.Incidence
	for _, inc := range r.records {
		out = append(out, inc)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) ApplyChanges(_ context.Context, params incidence.ApplyParams) (incidence.Incidence, error) {
	now := time.Now().UTC()
	if params.IncidenceID == 0 {
		id := r.nextID
		r.nextID++
		inc := incidence.Hydrate(id, params.Sector, params.SchemaID, params.Changes, now, now)
		r.records[id] = inc
		r.applied++
		return inc, nil
	}

	current, ok := r.records[params.IncidenceID]
	if !ok {
		return incidence.Incidence{}, incidence.ErrNotFound
	}
	if current.UpdatedAt().After(params.BaseUpdatedAt) {
		return incidence.Incidence{}, &incidence.ConcurrentModificationError{
			IncidenceID: params.IncidenceID,
			StagedAt:    params.BaseUpdatedAt,
			ModifiedAt:  current.UpdatedAt(),
		}
	}
	fields := current.Fields()
	for k, v := range params.Changes {
		fields[k] = v
	}
	inc := incidence.Hydrate(params.IncidenceID, current.Sector(), current.SchemaID(), fields, current.CreatedAt(), now)
	r.records[params.IncidenceID] = inc
	r.applied++
	return inc, nil
}

func newStagingFixture(t *testing.T) (*services.StagingService, *fakeRepo, services.StagingStore) {
	t.Helper()
	store, err := stagingstore.NewStore(t.TempDir(), "processed", logging.ConsoleLogger(logrus.ErrorLevel))
	require.NoError(t, err)
	repo := newFakeRepo()
	svc := services.NewStagingService(store, repo, eventbus.NewEventPublisher(logging.ConsoleLogger(logrus.ErrorLevel)))
	return svc, repo, store
}

func stageChangeSet(t *testing.T, store services.StagingStore, cs *staging.ChangeSet) string {
	t.Helper()
	stagedID, err := store.Stage(cs)
	require.NoError(t, err)
	return stagedID
}

func TestStagingService_Confirm_AppliesChangedFields(t *testing.T) {
	svc, repo, store := newStagingFixture(t)
	base := time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC)
	repo.put(2051, schemadef.SectorLandfill, "landfill_operator_feedback_v070",
		map[string]any{"plume.emission_location": "north flare"}, base)

	stagedID := stageChangeSet(t, store, &staging.ChangeSet{
		IncidenceID:   2051,
		Sector:        schemadef.SectorLandfill,
		SchemaID:      "landfill_operator_feedback_v070",
		UploadedAt:    base.Add(time.Hour),
		BaseUpdatedAt: base,
		Diffs: []staging.FieldDiff{
			{Field: "plume.emission_location", Old: "north flare", New: "east flare", Changed: true},
			{Field: "notes.additional_notes", Old: "kept", New: nil, Changed: false},
		},
	})

	result, err := svc.Confirm(context.Background(), stagedID, false)
	require.NoError(t, err)

	v, ok := result.Field("plume.emission_location")
	require.True(t, ok)
	require.Equal(t, "east flare", v)

	// Unchanged diffs are not applied.
	require.Equal(t, 1, repo.applied)

	// Confirmed file leaves the pending listing.
	_, err = store.Get(stagedID)
	require.ErrorIs(t, err, stagingstore.ErrStagedNotFound)
}

func TestStagingService_Confirm_StaleBaseDetectsConflict(t *testing.T) {
	svc, repo, store := newStagingFixture(t)
	base := time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC)
	// The record moved on after this change set was staged.
	repo.put(2051, schemadef.SectorLandfill, "landfill_operator_feedback_v070",
		map[string]any{"plume.emission_location": "north flare"}, base.Add(30*time.Minute))

	stagedID := stageChangeSet(t, store, &staging.ChangeSet{
		IncidenceID:   2051,
		Sector:        schemadef.SectorLandfill,
		SchemaID:      "landfill_operator_feedback_v070",
		UploadedAt:    base.Add(time.Hour),
		BaseUpdatedAt: base,
		Diffs: []staging.FieldDiff{
			{Field: "plume.emission_location", Old: "north flare", New: "east flare", Changed: true},
		},
	})

	_, err := svc.Confirm(context.Background(), stagedID, false)
	var conflict *incidence.ConcurrentModificationError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, int64(2051), conflict.IncidenceID)

	// Nothing was written and the file stays pending for discard.
	require.Zero(t, repo.applied)
	inc, getErr := repo.GetByID(context.Background(), 2051)
	require.NoError(t, getErr)
	v, _ := inc.Field("plume.emission_location")
	require.Equal(t, "north flare", v)
	_, err = store.Get(stagedID)
	require.NoError(t, err)
}

func TestStagingService_Confirm_ViolationsBlockWithoutOverride(t *testing.T) {
	svc, repo, store := newStagingFixture(t)
	stagedID := stageChangeSet(t, store, &staging.ChangeSet{
		IncidenceID: 0,
		Sector:      schemadef.SectorLandfill,
		SchemaID:    "landfill_operator_feedback_v070",
		UploadedAt:  time.Now().UTC(),
		Diffs: []staging.FieldDiff{
			{Field: "notes.additional_notes", Old: nil, New: "note", Changed: true},
		},
		Violations: []validation.Violation{
			{Rule: "schema-required", Fields: []string{"facility.id"}, Message: "facility.id is required"},
		},
	})

	_, err := svc.Confirm(context.Background(), stagedID, false)
	var blocked *services.UnresolvedViolationsError
	require.ErrorAs(t, err, &blocked)
	require.Zero(t, repo.applied)

	result, err := svc.Confirm(context.Background(), stagedID, true)
	require.NoError(t, err)
	require.NotZero(t, result.ID())
	require.Equal(t, 1, repo.applied)
}

func TestStagingService_Discard_RemovesChangeSet(t *testing.T) {
	svc, _, store := newStagingFixture(t)
	stagedID := stageChangeSet(t, store, &staging.ChangeSet{
		IncidenceID: 7,
		Sector:      schemadef.SectorGeneric,
		SchemaID:    "generic_operator_feedback_v002",
		UploadedAt:  time.Now().UTC(),
	})

	require.NoError(t, svc.Discard(context.Background(), stagedID))
	_, err := store.Get(stagedID)
	require.ErrorIs(t, err, stagingstore.ErrStagedNotFound)
	require.ErrorIs(t, svc.Discard(context.Background(), stagedID), stagingstore.ErrStagedNotFound)
}
