package schemadef_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
	"github.com/arbportal/feedback-portal/pkg/logging"
)

func newRegistry() *schemadef.Registry {
	return schemadef.NewRegistry(logging.ConsoleLogger(logrus.ErrorLevel))
}

func TestRegistry_Resolve_Canonical(t *testing.T) {
	r := newRegistry()
	s, err := r.Resolve(schemadef.LandfillV070)
	require.NoError(t, err)
	require.Equal(t, schemadef.LandfillV070, s.ID)
	require.Equal(t, schemadef.SectorLandfill, s.Sector)
	require.True(t, s.Has("plume.emission_identified_flag_fk"))
}

func TestRegistry_Resolve_AliasYieldsSameSchema(t *testing.T) {
	r := newRegistry()
	for alias, canonical := range r.Aliases() {
		viaAlias, err := r.Resolve(alias)
		require.NoError(t, err, alias)
		direct, err := r.Resolve(canonical)
		require.NoError(t, err, canonical)

		require.Equal(t, direct.ID, viaAlias.ID)
		require.Equal(t, direct.Sector, viaAlias.Sector)
		require.Equal(t, direct.Fields(), viaAlias.Fields())
	}
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	r := newRegistry()
	_, err := r.Resolve("landfill_operator_feedback_v999")
	var unrecognized *schemadef.UnrecognizedSchemaError
	require.ErrorAs(t, err, &unrecognized)
	require.Equal(t, "landfill_operator_feedback_v999", unrecognized.SchemaID)
}

func TestRegistry_BySector(t *testing.T) {
	r := newRegistry()
	s, ok := r.BySector(schemadef.SectorEnergy)
	require.True(t, ok)
	require.Equal(t, schemadef.EnergyV003, s.ID)

	_, ok = r.BySector(schemadef.Sector("steelworks"))
	require.False(t, ok)
}

func TestSchema_FieldOrderFollowsDeclaration(t *testing.T) {
	r := newRegistry()
	s, err := r.Resolve(schemadef.GenericV002)
	require.NoError(t, err)

	fields := s.Fields()
	for i, f := range fields {
		require.Equal(t, i, s.Order(f.Name))
	}
	require.Less(t, s.Order("facility.id"), s.Order("notes.additional_notes"))
}

func TestField_EnumHelpers(t *testing.T) {
	r := newRegistry()
	s, err := r.Resolve(schemadef.LandfillV070)
	require.NoError(t, err)

	f, ok := s.Field("plume.emission_identified_flag_fk")
	require.True(t, ok)
	require.Equal(t, "No leak was detected", f.CanonicalEnumValue("no LEAK was detected"))
	require.True(t, f.AllowsEnumValue("No leak was detected"))
	require.False(t, f.AllowsEnumValue("Maybe"))

	require.Equal(t, "plume", f.Group())
}
