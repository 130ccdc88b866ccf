package validation

import (
	"fmt"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/payload"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
)

// CheckRequired reports schema-level required fields missing from the
// payload. Kept separate from the sector rule tables: these come from the
// schema definition, not from regulation-specific contingencies.
func CheckRequired(schema schemadef.Schema, p payload.Payload) []Violation {
	var violations []Violation
	for _, field := range schema.Fields() {
		if !field.Required {
			continue
		}
		v, ok := p.Get(field.Name)
		if !ok || v.Blank() {
			violations = append(violations, Violation{
				Rule:    "schema-required",
				Fields:  []string{field.Name},
				Message: fmt.Sprintf("%s is required by schema %s", field.Name, schema.ID),
			})
		}
	}
	return violations
}
