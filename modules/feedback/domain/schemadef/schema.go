package schemadef

import (
	"fmt"
	"strings"
)

// Sector is the regulated-industry category determining which field set and
// validation rules apply to an incidence.
type Sector string

const (
	SectorOilAndGas     Sector = "oil_and_gas"
	SectorLandfill      Sector = "landfill"
	SectorDairyDigester Sector = "dairy_digester"
	SectorEnergy        Sector = "energy"
	SectorGeneric       Sector = "generic"
)

func (s Sector) Valid() bool {
	switch s {
	case SectorOilAndGas, SectorLandfill, SectorDairyDigester, SectorEnergy, SectorGeneric:
		return true
	}
	return false
}

type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInt      FieldType = "int"
	TypeFloat    FieldType = "float"
	TypeBool     FieldType = "bool"
	TypeDatetime FieldType = "datetime"
	TypeEnum     FieldType = "enum"
)

// Field describes one schema field. Name is the full dotted path as it
// appears in the spreadsheet key column (e.g. "plume.emission_cause").
type Field struct {
	Name            string
	Type            FieldType
	Required        bool
	Enum            []string
	CaseInsensitive bool
}

// Group returns the dotted prefix of the field path, or "" for a bare name.
func (f Field) Group() string {
	if i := strings.LastIndex(f.Name, "."); i >= 0 {
		return f.Name[:i]
	}
	return ""
}

// AllowsEnumValue reports whether v is an allowed enum value, honouring the
// case-insensitive flag. Non-enum fields allow anything.
func (f Field) AllowsEnumValue(v string) bool {
	if f.Type != TypeEnum {
		return true
	}
	for _, allowed := range f.Enum {
		if allowed == v {
			return true
		}
		if f.CaseInsensitive && strings.EqualFold(allowed, v) {
			return true
		}
	}
	return false
}

// CanonicalEnumValue maps v onto the declared spelling for case-insensitive
// enums so formatting differences never show up as diffs.
func (f Field) CanonicalEnumValue(v string) string {
	if f.Type != TypeEnum || !f.CaseInsensitive {
		return v
	}
	for _, allowed := range f.Enum {
		if strings.EqualFold(allowed, v) {
			return allowed
		}
	}
	return v
}

// Schema is an immutable published schema definition. New spreadsheet
// versions register new identifiers; existing definitions never change.
type Schema struct {
	ID     string
	Sector Sector
	fields []Field
	index  map[string]int
}

func NewSchema(id string, sector Sector, fields []Field) Schema {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := index[f.Name]; dup {
			panic(fmt.Sprintf("schema %s: duplicate field %s", id, f.Name))
		}
		index[f.Name] = i
	}
	return Schema{ID: id, Sector: sector, fields: fields, index: index}
}

func (s Schema) IsZero() bool {
	return s.ID == ""
}

// Fields returns field descriptors in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

func (s Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Order returns the declaration position of the field, used by the diff
// engine to emit differences in spreadsheet layout order.
func (s Schema) Order(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return len(s.fields)
}

// UnrecognizedSchemaError is returned when a spreadsheet declares a schema
// identifier matching no published schema or alias. Non-fatal per tab: the
// caller reports it to the user rather than crashing the upload.
type UnrecognizedSchemaError struct {
	SchemaID string
}

func (e *UnrecognizedSchemaError) Error() string {
	return fmt.Sprintf("unrecognized schema identifier %q", e.SchemaID)
}
