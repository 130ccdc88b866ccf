package schemadef

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Registry maps schema identifiers (and historical aliases) to published
// schema definitions. Built once at startup and passed explicitly to the
// components that need it; immutable afterwards.
type Registry struct {
	schemas map[string]Schema
	aliases map[string]string
	logger  *logrus.Logger
}

func NewRegistry(logger *logrus.Logger) *Registry {
	r := &Registry{
		schemas: make(map[string]Schema),
		aliases: make(map[string]string),
		logger:  logger,
	}
	for _, s := range builtinSchemas() {
		r.schemas[s.ID] = s
	}
	for old, current := range builtinAliases() {
		if _, ok := r.schemas[current]; !ok {
			panic("schema alias " + old + " points to unknown schema " + current)
		}
		r.aliases[old] = current
	}
	return r
}

// Resolve returns the canonical schema for a raw identifier read from a
// spreadsheet metadata tab. Alias hits are logged so legacy template files
// can eventually be migrated.
func (r *Registry) Resolve(id string) (Schema, error) {
	if s, ok := r.schemas[id]; ok {
		return s, nil
	}
	if current, ok := r.aliases[id]; ok {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{
				"alias":     id,
				"canonical": current,
			}).Warn("schema alias used; uploader is on a deprecated template")
		}
		return r.schemas[current], nil
	}
	return Schema{}, &UnrecognizedSchemaError{SchemaID: id}
}

// SchemaIDs returns all published identifiers, sorted.
func (r *Registry) SchemaIDs() []string {
	ids := make([]string, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Aliases returns a copy of the alias map.
func (r *Registry) Aliases() map[string]string {
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// BySector returns the current schema for a sector, if one is published.
func (r *Registry) BySector(sector Sector) (Schema, bool) {
	for _, id := range r.SchemaIDs() {
		if s := r.schemas[id]; s.Sector == sector {
			return s, true
		}
	}
	return Schema{}, false
}
