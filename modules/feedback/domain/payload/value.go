package payload

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindString   Kind = "string"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindBool     Kind = "bool"
	KindDatetime Kind = "datetime"
)

// Value is one normalized field value. It is an explicit tagged structure:
// exactly one variant is populated, determined by Kind. Datetimes are always
// UTC; constructing one from a non-UTC instant converts immediately, so no
// naive or zoned datetime propagates past construction.
type Value struct {
	kind Kind
	str  string
	num  int64
	dec  decimal.Decimal
	b    bool
	t    time.Time
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Int(i int64) Value {
	return Value{kind: KindInt, num: i}
}

func Float(d decimal.Decimal) Value {
	return Value{kind: KindFloat, dec: d}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Datetime(t time.Time) Value {
	return Value{kind: KindDatetime, t: t.UTC()}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsZero() bool {
	return v.kind == ""
}

func (v Value) Str() string            { return v.str }
func (v Value) Num() int64             { return v.num }
func (v Value) Dec() decimal.Decimal   { return v.dec }
func (v Value) BoolVal() bool          { return v.b }
func (v Value) Time() time.Time        { return v.t }

// Blank reports whether the value carries no content a reviewer would see:
// a zero Value or an empty/whitespace string.
func (v Value) Blank() bool {
	if v.IsZero() {
		return true
	}
	return v.kind == KindString && strings.TrimSpace(v.str) == ""
}

// Equal compares two values after normalization. Datetimes compare as UTC
// instants, floats as decimals, and strings case-insensitively when the
// schema marks the field so. Different kinds are never equal.
func (v Value) Equal(o Value, caseInsensitive bool) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		if caseInsensitive {
			return strings.EqualFold(v.str, o.str)
		}
		return v.str == o.str
	case KindInt:
		return v.num == o.num
	case KindFloat:
		return v.dec.Equal(o.dec)
	case KindBool:
		return v.b == o.b
	case KindDatetime:
		return v.t.Equal(o.t)
	}
	return v.IsZero() && o.IsZero()
}

// Scalar returns the JSON-serializable representation: string, int64, bool,
// json.Number for floats, RFC 3339 UTC string for datetimes.
func (v Value) Scalar() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return json.Number(v.dec.String())
	case KindBool:
		return v.b
	case KindDatetime:
		return v.t.UTC().Format(time.RFC3339)
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Scalar())
}

func (v Value) GoString() string {
	return fmt.Sprintf("payload.Value{%s: %v}", v.kind, v.Scalar())
}
