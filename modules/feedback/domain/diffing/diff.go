package diffing

import (
	"sort"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/payload"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/staging"
)

// Diff compares the normalized incoming payload against the current record
// state and emits one FieldDiff per field in the union of both sources.
//
// Ordering follows schema declaration order so the review UI matches the
// spreadsheet's logical layout; fields unknown to the schema (left over from
// older template versions) sort after it by name.
//
// Two values are unchanged only if they are equal after normalization:
// UTC-instant comparison for datetimes, decimal comparison for numerics, and
// case-insensitive comparison for enums the schema marks so. A field absent
// from the upload is reported unchanged — upload silence is not a clear.
func Diff(schema schemadef.Schema, current, incoming payload.Payload) []staging.FieldDiff {
	union := make(map[string]struct{}, current.Len()+incoming.Len())
	for _, name := range current.FieldNames() {
		union[name] = struct{}{}
	}
	for _, name := range incoming.FieldNames() {
		union[name] = struct{}{}
	}

	names := make([]string, 0, len(union))
	for name := range union {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := schema.Order(names[i]), schema.Order(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})

	diffs := make([]staging.FieldDiff, 0, len(names))
	for _, name := range names {
		oldVal, hasOld := current.Get(name)
		newVal, hasNew := incoming.Get(name)

		d := staging.FieldDiff{Field: name}
		if hasOld {
			d.Old = oldVal.Scalar()
		}
		if hasNew {
			d.New = newVal.Scalar()
		}

		switch {
		case hasOld && hasNew:
			d.Changed = !oldVal.Equal(newVal, caseInsensitive(schema, name))
		case hasNew:
			d.Changed = true
		default:
			d.Changed = false
		}
		diffs = append(diffs, d)
	}
	return diffs
}

func caseInsensitive(schema schemadef.Schema, name string) bool {
	f, ok := schema.Field(name)
	return ok && f.CaseInsensitive
}
