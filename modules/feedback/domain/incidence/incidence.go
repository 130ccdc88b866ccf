package incidence

import (
	"time"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
)

// Incidence is the canonical database row for one operator-reported emission
// event. Fields are sparse: schema fields not applicable to the sector stay
// absent. Rows are never physically deleted.
type Incidence struct {
	id        int64
	sector    schemadef.Sector
	schemaID  string
	fields    map[string]any
	createdAt time.Time
	updatedAt time.Time
}

func New(sector schemadef.Sector, schemaID string, fields map[string]any) Incidence {
	return Incidence{
		sector:   sector,
		schemaID: schemaID,
		fields:   cloneFields(fields),
	}
}

func Hydrate(
	id int64,
	sector schemadef.Sector,
	schemaID string,
	fields map[string]any,
	createdAt time.Time,
	updatedAt time.Time,
) Incidence {
	return Incidence{
		id:        id,
		sector:    sector,
		schemaID:  schemaID,
		fields:    cloneFields(fields),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (i Incidence) ID() int64                { return i.id }
func (i Incidence) Sector() schemadef.Sector { return i.sector }
func (i Incidence) SchemaID() string         { return i.schemaID }
func (i Incidence) CreatedAt() time.Time     { return i.createdAt }
func (i Incidence) UpdatedAt() time.Time     { return i.updatedAt }
func (i Incidence) IsZero() bool             { return i.id == 0 && i.schemaID == "" }

func (i Incidence) Field(name string) (any, bool) {
	v, ok := i.fields[name]
	return v, ok
}

func (i Incidence) Fields() map[string]any {
	return cloneFields(i.fields)
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
