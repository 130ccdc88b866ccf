package services

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/diffing"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/incidence"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/payload"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/staging"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/validation"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/excel"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/normalize"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/stagingstore"
	"github.com/arbportal/feedback-portal/pkg/eventbus"
	"github.com/arbportal/feedback-portal/pkg/metrics"
)

// SectorMismatchError reports a workbook whose declared sector does not
// match the resolved schema's sector. User-correctable.
type SectorMismatchError struct {
	Declared string
	SchemaID string
	Expected schemadef.Sector
}

func (e *SectorMismatchError) Error() string {
	return "workbook declares sector " + e.Declared + " but schema " + e.SchemaID +
		" belongs to sector " + string(e.Expected)
}

// StagingStore is the file-backed store the ingest and staging services
// persist change sets through.
type StagingStore interface {
	Stage(cs *staging.ChangeSet) (string, error)
	Get(stagedID string) (*staging.ChangeSet, error)
	List() ([]*staging.ChangeSet, []stagingstore.MalformedFile, error)
	MarkProcessed(stagedID string) error
	Discard(stagedID string) error
}

// IngestService runs the upload pipeline: parse, schema resolve, normalize,
// validate, diff against the current record, stage. Nothing touches the
// incidences table until the reviewer confirms.
type IngestService struct {
	registry   *schemadef.Registry
	parser     *excel.Parser
	normalizer *normalize.Normalizer
	repo       incidence.Repository
	store      StagingStore
	publisher  eventbus.EventBus
}

func NewIngestService(
	registry *schemadef.Registry,
	parser *excel.Parser,
	normalizer *normalize.Normalizer,
	repo incidence.Repository,
	store StagingStore,
	publisher eventbus.EventBus,
) *IngestService {
	return &IngestService{
		registry:   registry,
		parser:     parser,
		normalizer: normalizer,
		repo:       repo,
		store:      store,
		publisher:  publisher,
	}
}

func (s *IngestService) ProcessUpload(ctx context.Context, r io.Reader, filename string) (*staging.ChangeSet, error) {
	cs, err := s.processUpload(ctx, r, filename)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.UploadsTotal.WithLabelValues("staged").Inc()
	metrics.ValidationViolationsTotal.Add(float64(len(cs.Violations)))
	s.publisher.Publish(UploadStagedEvent{
		StagedID:       cs.StagedID,
		IncidenceID:    cs.IncidenceID,
		SchemaID:       cs.SchemaID,
		SourceFilename: filename,
		ChangeSet:      cs,
	})
	return cs, nil
}

func (s *IngestService) processUpload(ctx context.Context, r io.Reader, filename string) (*staging.ChangeSet, error) {
	ext, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}

	schema, err := s.registry.Resolve(ext.SchemaVersion)
	if err != nil {
		return nil, err
	}
	aliasUsed := ""
	if schema.ID != ext.SchemaVersion {
		aliasUsed = ext.SchemaVersion
	}
	if ext.Sector != "" && schemadef.Sector(ext.Sector) != schema.Sector {
		return nil, &SectorMismatchError{
			Declared: ext.Sector,
			SchemaID: schema.ID,
			Expected: schema.Sector,
		}
	}

	incoming, fieldErrs := s.normalizer.Normalize(schema, ext.Fields)

	current := payload.New()
	var baseUpdatedAt time.Time
	if ext.IncidenceID != 0 {
		inc, err := s.repo.GetByID(ctx, ext.IncidenceID)
		if err != nil {
			return nil, errors.Wrapf(err, "incidence %d referenced by workbook", ext.IncidenceID)
		}
		baseUpdatedAt = inc.UpdatedAt()
		stored, storedErrs := s.normalizer.FromStored(schema, inc.Fields())
		current = stored
		fieldErrs = append(fieldErrs, storedErrs...)
	}

	// Rules run against the post-confirm view of the record: current values
	// overlaid with the upload. An upload that omits a field is silence, not
	// a clear, so omitted fields keep their current values here too.
	merged := payload.New()
	for _, name := range current.FieldNames() {
		if v, ok := current.Get(name); ok {
			merged.Set(name, v)
		}
	}
	for _, name := range incoming.FieldNames() {
		if v, ok := incoming.Get(name); ok {
			merged.Set(name, v)
		}
	}

	violations := validation.CheckRequired(schema, merged)
	violations = append(violations, validation.ForSector(schema.Sector).Evaluate(merged)...)

	cs := &staging.ChangeSet{
		IncidenceID:     ext.IncidenceID,
		Sector:          schema.Sector,
		SchemaID:        schema.ID,
		SchemaAliasUsed: aliasUsed,
		SourceFilename:  filename,
		UploadedAt:      time.Now().UTC(),
		BaseUpdatedAt:   baseUpdatedAt,
		Diffs:           diffing.Diff(schema, current, incoming),
		ProposedRecord:  merged.Tree(),
		CellIssues:      ext.CellIssues,
		Violations:      violations,
	}
	for _, fe := range fieldErrs {
		cs.FieldIssues = append(cs.FieldIssues, staging.FieldIssue{Field: fe.Field, Message: fe.Message})
	}

	if _, err := s.store.Stage(cs); err != nil {
		return nil, err
	}
	return cs, nil
}
