package ingest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitrack/backend/internal/models"
)

func TestNormalizePerformanceConvertsMsToKmh(t *testing.T) {
	raw := json.RawMessage(`{"sectional_meters":200,"speeds_ms":[10,15,16.5],"recovery_hr_bpm":95}`)
	out, err := normalizePerformance(raw)
	require.NoError(t, err)

	var pd models.PerformanceData
	require.NoError(t, json.Unmarshal(out, &pd))
	assert.Equal(t, 200, pd.SectionalMeters)
	assert.Equal(t, 95, pd.RecoveryHrBpm)
	require.Len(t, pd.SpeedsKmh, 3)
	assert.InDelta(t, 36.0, pd.SpeedsKmh[0], 1e-9)
	assert.InDelta(t, 54.0, pd.SpeedsKmh[1], 1e-9)
	assert.InDelta(t, 59.4, pd.SpeedsKmh[2], 1e-9)
}

func TestNormalizePerformanceKmhPassesThroughUntouched(t *testing.T) {
	raw := json.RawMessage(`{"speeds_kmh":[60,58],"stride_lengths_m":[7.1,7.0]}`)
	out, err := normalizePerformance(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), []byte(out), "payload bytes must not be rewritten")
}

func TestNormalizePerformanceKmhWinsWhenBothPresent(t *testing.T) {
	raw := json.RawMessage(`{"speeds_kmh":[60],"speeds_ms":[10]}`)
	out, err := normalizePerformance(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), []byte(out))
}

func TestNormalizePerformanceEmptyAndInvalid(t *testing.T) {
	out, err := normalizePerformance(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = normalizePerformance(json.RawMessage(`{"speeds_ms":`))
	assert.Error(t, err)
}
