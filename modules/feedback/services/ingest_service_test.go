package services_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/excel"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/normalize"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/stagingstore"
	"github.com/arbportal/feedback-portal/modules/feedback/services"
	"github.com/arbportal/feedback-portal/pkg/eventbus"
	"github.com/arbportal/feedback-portal/pkg/logging"
)

func uploadWorkbook(t *testing.T, metadata, data [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetName("Sheet1", excel.MetadataSheet))
	_, err := f.NewSheet(excel.DataSheet)
	require.NoError(t, err)
	for sheet, rows := range map[string][][]string{excel.MetadataSheet: metadata, excel.DataSheet: data} {
		for i, row := range rows {
			for j, cell := range row {
				name, err := excelize.CoordinatesToCellName(j+1, i+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellStr(sheet, name, cell))
			}
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func newIngestFixture(t *testing.T) (*services.IngestService, *fakeRepo) {
	t.Helper()
	logger := logging.ConsoleLogger(logrus.ErrorLevel)
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	store, err := stagingstore.NewStore(t.TempDir(), "processed", logger)
	require.NoError(t, err)
	repo := newFakeRepo()
	svc := services.NewIngestService(
		schemadef.NewRegistry(logger),
		excel.NewParser(),
		normalize.New(loc),
		repo,
		store,
		eventbus.NewEventPublisher(logger),
	)
	return svc, repo
}

func TestIngestService_ProcessUpload_ExistingRecord(t *testing.T) {
	svc, repo := newIngestFixture(t)
	base := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	repo.put(2051, schemadef.SectorLandfill, schemadef.LandfillV070, map[string]any{
		"facility.id":                       float64(482),
		"facility.name":                     "Central Landfill",
		"contact.name":                      "Field Ops",
		"plume.observation_timestamp":       "2025-07-01T10:00:00Z",
		"plume.emission_identified_flag_fk": "Leak was detected",
		"plume.emission_location":           "north flare",
	}, base)

	// Deprecated template version plus a naive local datetime that is the
	// same instant the record already holds in UTC.
	buf := uploadWorkbook(t,
		[][]string{
			{"schema_version", "landfill_operator_feedback_v061"},
			{"sector", "landfill"},
			{"incidence_id", "2051"},
		},
		[][]string{
			{"plume.emission_location", "east flare"},
			{"plume.observation_timestamp", "2025-07-01 03:00:00"},
		},
	)

	cs, err := svc.ProcessUpload(context.Background(), buf, "feedback_2051.xlsx")
	require.NoError(t, err)

	require.Equal(t, schemadef.LandfillV070, cs.SchemaID)
	require.Equal(t, "landfill_operator_feedback_v061", cs.SchemaAliasUsed)
	require.True(t, strings.HasPrefix(cs.StagedID, "id_2051_ts_"))
	require.Equal(t, base, cs.BaseUpdatedAt)
	require.Empty(t, cs.Violations)
	require.Empty(t, cs.CellIssues)
	require.Empty(t, cs.FieldIssues)

	diffs := map[string]bool{}
	for _, d := range cs.Diffs {
		diffs[d.Field] = d.Changed
	}
	require.True(t, diffs["plume.emission_location"])
	// Same UTC instant written differently is not a change.
	require.False(t, diffs["plume.observation_timestamp"])
	// Fields absent from the upload keep their current values.
	require.False(t, diffs["facility.name"])

	// The proposed record nests the merged view by field group.
	plume, ok := cs.ProposedRecord["plume"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "east flare", plume["emission_location"])
	facility, ok := cs.ProposedRecord["facility"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Central Landfill", facility["name"])
}

func TestIngestService_ProcessUpload_CollectsViolations(t *testing.T) {
	svc, _ := newIngestFixture(t)
	buf := uploadWorkbook(t,
		[][]string{
			{"schema_version", schemadef.LandfillV070},
			{"sector", "landfill"},
			{"incidence_id", "new"},
		},
		[][]string{
			{"facility.id", "482"},
			{"facility.name", "Central Landfill"},
			{"contact.name", "Field Ops"},
			{"plume.observation_timestamp", "2025-07-01 03:00:00"},
			{"plume.emission_identified_flag_fk", "no leak was detected"},
		},
	)

	cs, err := svc.ProcessUpload(context.Background(), buf, "new_finding.xlsx")
	require.NoError(t, err)

	// Violations are collected but do not block staging.
	require.NotEmpty(t, cs.StagedID)
	rules := map[string]bool{}
	for _, v := range cs.Violations {
		rules[v.Rule] = true
	}
	require.True(t, rules["emission-finding-details"])

	// Enum value was canonicalized despite the lowercase input.
	for _, d := range cs.Diffs {
		if d.Field == "plume.emission_identified_flag_fk" {
			require.Equal(t, "No leak was detected", d.New)
		}
	}
}

func TestIngestService_ProcessUpload_UnknownSchema(t *testing.T) {
	svc, _ := newIngestFixture(t)
	buf := uploadWorkbook(t,
		[][]string{
			{"schema_version", "landfill_operator_feedback_v999"},
			{"sector", "landfill"},
		},
		[][]string{{"facility.id", "1"}},
	)

	_, err := svc.ProcessUpload(context.Background(), buf, "bad.xlsx")
	var unrecognized *schemadef.UnrecognizedSchemaError
	require.ErrorAs(t, err, &unrecognized)
	require.Equal(t, "landfill_operator_feedback_v999", unrecognized.SchemaID)
}

func TestIngestService_ProcessUpload_SectorMismatch(t *testing.T) {
	svc, _ := newIngestFixture(t)
	buf := uploadWorkbook(t,
		[][]string{
			{"schema_version", schemadef.LandfillV070},
			{"sector", "energy"},
		},
		[][]string{{"facility.id", "1"}},
	)

	_, err := svc.ProcessUpload(context.Background(), buf, "wrong_sector.xlsx")
	var mismatch *services.SectorMismatchError
	require.ErrorAs(t, err, &mismatch)
}
