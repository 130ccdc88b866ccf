package staging

import (
	"time"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/validation"
)

// Status tracks one upload through its lifecycle:
// Uploaded → Parsed → Validated → Staged → {Confirmed | Discarded | ConflictDetected}.
// ConflictDetected is terminal; recovery is discard and re-upload.
type Status string

const (
	StatusUploaded         Status = "uploaded"
	StatusParsed           Status = "parsed"
	StatusValidated        Status = "validated"
	StatusStaged           Status = "staged"
	StatusConfirmed        Status = "confirmed"
	StatusDiscarded        Status = "discarded"
	StatusConflictDetected Status = "conflict_detected"
)

// FieldDiff is one field's old/new pair. Old and New are normalized JSON
// scalars; nil means the side does not carry the field.
type FieldDiff struct {
	Field   string `json:"field"`
	Old     any    `json:"old"`
	New     any    `json:"new"`
	Changed bool   `json:"changed"`
}

// CellIssue is one malformed spreadsheet cell, kept so the review UI can show
// a complete diagnostic list instead of the first failure.
type CellIssue struct {
	Sheet   string `json:"sheet"`
	Cell    string `json:"cell"`
	Message string `json:"message"`
}

// FieldIssue is one value that extracted fine but failed typed coercion
// against the schema (bad datetime, out-of-enum value, non-numeric int).
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ChangeSet is the file-backed representation of one upload's proposed
// changes to one incidence record (IncidenceID 0 proposes a new record).
// Owned exclusively by the staging store: created on upload, moved to the
// processed area on confirm, deleted on discard.
type ChangeSet struct {
	StagedID        string                 `json:"staged_id"`
	IncidenceID     int64                  `json:"incidence_id"`
	Sector          schemadef.Sector       `json:"sector"`
	SchemaID        string                 `json:"schema_id"`
	SchemaAliasUsed string                 `json:"schema_alias_used,omitempty"`
	SourceFilename  string                 `json:"source_filename,omitempty"`
	UploadedAt      time.Time              `json:"uploaded_at"`
	BaseUpdatedAt   time.Time              `json:"base_updated_at"`
	Diffs           []FieldDiff            `json:"diffs"`
	// ProposedRecord is the merged record as it would look after confirm,
	// nested by dotted field name so reviewers see the schema's grouping.
	ProposedRecord  map[string]any         `json:"proposed_record,omitempty"`
	CellIssues      []CellIssue            `json:"cell_issues,omitempty"`
	FieldIssues     []FieldIssue           `json:"field_issues,omitempty"`
	Violations      []validation.Violation `json:"violations,omitempty"`
}

func (cs *ChangeSet) IsNew() bool {
	return cs.IncidenceID == 0
}

// ChangedFields returns only the fields marked changed, as new scalar values.
// Confirm applies exactly this set.
func (cs *ChangeSet) ChangedFields() map[string]any {
	out := make(map[string]any)
	for _, d := range cs.Diffs {
		if d.Changed {
			out[d.Field] = d.New
		}
	}
	return out
}

func (cs *ChangeSet) HasViolations() bool {
	return len(cs.Violations) > 0
}

func (cs *ChangeSet) HasChanges() bool {
	for _, d := range cs.Diffs {
		if d.Changed {
			return true
		}
	}
	return false
}
