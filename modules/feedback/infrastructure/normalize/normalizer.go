package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/payload"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
)

// FieldError is one field-level coercion failure. Failures are collected so
// the validation layer can report all of them together instead of stopping
// at the first bad cell.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Accepted spreadsheet datetime layouts, tried in order. Layouts without a
// zone are interpreted in the normalizer's location; RFC 3339 inputs keep
// their explicit offset. Either way the result is converted to UTC before it
// leaves this package.
var datetimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006",
}

type Normalizer struct {
	loc *time.Location
}

// New returns a normalizer interpreting naive spreadsheet datetimes in loc
// (America/Los_Angeles in production).
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// RawField is one (key, raw cell value) pair extracted from a data tab.
type RawField struct {
	Key   string
	Value string
}

// Normalize coerces raw cell values to typed values per the schema. Blank
// values are skipped, unknown keys and coercion failures are collected.
// No naive datetime survives this stage.
func (n *Normalizer) Normalize(schema schemadef.Schema, raw []RawField) (payload.Payload, []FieldError) {
	p := payload.New()
	var errs []FieldError

	for _, rf := range raw {
		key := strings.TrimSpace(rf.Key)
		if key == "" {
			continue
		}
		field, ok := schema.Field(key)
		if !ok {
			errs = append(errs, FieldError{Field: key, Message: "field not in schema " + schema.ID})
			continue
		}
		value := strings.TrimSpace(rf.Value)
		if value == "" {
			continue
		}
		v, err := n.coerce(field, value)
		if err != nil {
			errs = append(errs, FieldError{Field: key, Message: err.Error()})
			continue
		}
		p.Set(key, v)
	}
	return p, errs
}

// FromStored rebuilds a normalized payload from JSON scalars previously
// persisted for an incidence record. Round-tripping through FromStored and
// back is idempotent.
func (n *Normalizer) FromStored(schema schemadef.Schema, fields map[string]any) (payload.Payload, []FieldError) {
	p := payload.New()
	var errs []FieldError

	for key, stored := range fields {
		field, ok := schema.Field(key)
		if !ok {
			// Leftover from an older template version: keep as string so the
			// diff engine can still show it.
			p.Set(key, payload.String(fmt.Sprint(stored)))
			continue
		}
		v, err := n.fromScalar(field, stored)
		if err != nil {
			errs = append(errs, FieldError{Field: key, Message: err.Error()})
			continue
		}
		p.Set(key, v)
	}
	return p, errs
}

func (n *Normalizer) coerce(field schemadef.Field, value string) (payload.Value, error) {
	switch field.Type {
	case schemadef.TypeString:
		return payload.String(value), nil

	case schemadef.TypeInt:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			d, derr := decimal.NewFromString(value)
			if derr != nil || !d.IsInteger() {
				return payload.Value{}, fmt.Errorf("expected integer, got %q", value)
			}
			i = d.IntPart()
		}
		return payload.Int(i), nil

	case schemadef.TypeFloat:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return payload.Value{}, fmt.Errorf("expected number, got %q", value)
		}
		return payload.Float(d), nil

	case schemadef.TypeBool:
		switch strings.ToLower(value) {
		case "yes", "true", "1", "y":
			return payload.Bool(true), nil
		case "no", "false", "0", "n":
			return payload.Bool(false), nil
		}
		return payload.Value{}, fmt.Errorf("expected yes/no, got %q", value)

	case schemadef.TypeEnum:
		canonical := field.CanonicalEnumValue(value)
		if !field.AllowsEnumValue(canonical) {
			return payload.Value{}, fmt.Errorf("value %q not allowed for %s", value, field.Name)
		}
		return payload.String(canonical), nil

	case schemadef.TypeDatetime:
		t, err := n.parseDatetime(value)
		if err != nil {
			return payload.Value{}, err
		}
		return payload.Datetime(t), nil
	}
	return payload.Value{}, fmt.Errorf("unsupported field type %q", field.Type)
}

func (n *Normalizer) fromScalar(field schemadef.Field, stored any) (payload.Value, error) {
	switch v := stored.(type) {
	case nil:
		return payload.Value{}, fmt.Errorf("null value for %s", field.Name)
	case string:
		return n.coerce(field, v)
	case bool:
		if field.Type != schemadef.TypeBool {
			return payload.Value{}, fmt.Errorf("stored bool for non-bool field %s", field.Name)
		}
		return payload.Bool(v), nil
	case int64:
		return n.coerce(field, strconv.FormatInt(v, 10))
	case int:
		return n.coerce(field, strconv.Itoa(v))
	case float64:
		return n.coerce(field, decimal.NewFromFloat(v).String())
	case json.Number:
		return n.coerce(field, v.String())
	default:
		return payload.Value{}, fmt.Errorf("unsupported stored type %T for %s", stored, field.Name)
	}
}

func (n *Normalizer) parseDatetime(value string) (time.Time, error) {
	// Explicit offset wins over the configured zone.
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, value, n.loc); err == nil {
			return t.UTC(), nil
		}
	}
	// Excel serial date: days since 1899-12-30, fraction is time of day.
	// The serial encodes a naive wall clock, so the civil date is computed
	// first and only then placed in the configured zone.
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		days := int(serial)
		secs := int((serial-float64(days))*86400 + 0.5)
		civil := time.Date(1899, time.December, 30, 0, 0, secs, 0, time.UTC).AddDate(0, 0, days)
		local := time.Date(
			civil.Year(), civil.Month(), civil.Day(),
			civil.Hour(), civil.Minute(), civil.Second(), 0,
			n.loc,
		)
		return local.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparsable datetime %q", value)
}
