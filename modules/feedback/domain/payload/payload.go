package payload

import (
	"sort"
	"strings"
)

// Payload is the normalized field set of one upload: full dotted field path
// to typed value. Grouping is recovered from the dotted paths on demand.
type Payload struct {
	values map[string]Value
}

func New() Payload {
	return Payload{values: make(map[string]Value)}
}

func (p Payload) Set(name string, v Value) {
	p.values[name] = v
}

func (p Payload) Get(name string) (Value, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p Payload) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p Payload) Len() int {
	return len(p.values)
}

// FieldNames returns all populated field paths, sorted. Callers needing
// schema-declaration order must order through the schema instead.
func (p Payload) FieldNames() []string {
	names := make([]string, 0, len(p.values))
	for name := range p.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flat returns field path -> JSON scalar.
func (p Payload) Flat() map[string]any {
	out := make(map[string]any, len(p.values))
	for name, v := range p.values {
		out[name] = v.Scalar()
	}
	return out
}

// Tree expands dotted paths into a nested mapping mirroring the schema's
// grouping, e.g. "plume.emission_cause" under the "plume" object.
func (p Payload) Tree() map[string]any {
	root := make(map[string]any)
	for _, name := range p.FieldNames() {
		segments := strings.Split(name, ".")
		node := root
		for _, seg := range segments[:len(segments)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		node[segments[len(segments)-1]] = p.values[name].Scalar()
	}
	return root
}
