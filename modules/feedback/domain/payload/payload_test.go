package payload_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/payload"
)

func TestPayload_TreeExpandsDottedPaths(t *testing.T) {
	p := payload.New()
	p.Set("facility.id", payload.Int(482))
	p.Set("plume.emission_location", payload.String("east flare"))
	p.Set("plume.emission_cause", payload.String("cover damage"))

	tree := p.Tree()
	facility, ok := tree["facility"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, int64(482), facility["id"])

	plume, ok := tree["plume"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "east flare", plume["emission_location"])
	require.Equal(t, "cover damage", plume["emission_cause"])
}

func TestValue_DatetimeScalarIsRFC3339UTC(t *testing.T) {
	v := payload.Datetime(time.Date(2025, 7, 18, 17, 50, 23, 0, time.FixedZone("PDT", -7*3600)))
	require.Equal(t, "2025-07-19T00:50:23Z", v.Scalar())

	buf, err := json.Marshal(v)
	require.NoError(t, err)
	require.Equal(t, `"2025-07-19T00:50:23Z"`, string(buf))
}

func TestValue_FloatMarshalsWithoutPrecisionLoss(t *testing.T) {
	v := payload.Float(decimal.RequireFromString("500.10"))
	buf, err := json.Marshal(v)
	require.NoError(t, err)
	require.Equal(t, "500.1", string(buf))
}

func TestValue_Equal(t *testing.T) {
	require.True(t, payload.String("Leak").Equal(payload.String("LEAK"), true))
	require.False(t, payload.String("Leak").Equal(payload.String("LEAK"), false))
	require.False(t, payload.String("7").Equal(payload.Int(7), false))

	a := payload.Datetime(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))
	b := payload.Datetime(time.Date(2025, 7, 1, 3, 0, 0, 0, time.FixedZone("PDT", -7*3600)))
	require.True(t, a.Equal(b, false))
}

func TestValue_Blank(t *testing.T) {
	require.True(t, payload.Value{}.Blank())
	require.True(t, payload.String("   ").Blank())
	require.False(t, payload.String("x").Blank())
	require.False(t, payload.Int(0).Blank())
}
