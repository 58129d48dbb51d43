package risk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitrack/backend/internal/models"
)

func TestScoreHealthySession(t *testing.T) {
	pd := &models.PerformanceData{
		SectionalMeters: 200,
		SpeedsKmh:       []float64{55, 58, 60, 59, 58},
		StrideLengthsM:  []float64{6.8, 7.0, 7.1, 7.0, 6.9},
		HeartRatesBpm:   []int{160, 175, 185, 190, 188},
		RecoveryHrBpm:   95,
	}
	res := Score(pd)
	assert.Equal(t, models.RiskLow, res.Risk)
	assert.Empty(t, res.Findings)
}

func TestScoreSpeedDropIsMedium(t *testing.T) {
	pd := &models.PerformanceData{
		SpeedsKmh:      []float64{60, 62, 58, 50}, // ~19% below peak
		StrideLengthsM: []float64{7.0, 7.1, 7.0, 6.9},
		RecoveryHrBpm:  90,
	}
	res := Score(pd)
	assert.Equal(t, models.RiskMedium, res.Risk)
	assert.Equal(t, []Finding{FindingSpeedDrop}, res.Findings)
}

func TestScoreTwoFindingsIsHigh(t *testing.T) {
	pd := &models.PerformanceData{
		SpeedsKmh:      []float64{60, 62, 55, 48},
		StrideLengthsM: []float64{7.2, 7.0, 6.6, 6.2}, // ~14% below peak
		RecoveryHrBpm:  100,
	}
	res := Score(pd)
	assert.Equal(t, models.RiskHigh, res.Risk)
	assert.Len(t, res.Findings, 2)
}

func TestScoreAllFindingsIsCritical(t *testing.T) {
	pd := &models.PerformanceData{
		SpeedsKmh:      []float64{60, 62, 52, 45},
		StrideLengthsM: []float64{7.2, 7.0, 6.4, 6.0},
		RecoveryHrBpm:  125,
	}
	res := Score(pd)
	assert.Equal(t, models.RiskCritical, res.Risk)
	assert.ElementsMatch(t, []Finding{FindingSpeedDrop, FindingStrideCollapse, FindingPoorRecovery}, res.Findings)
}

func TestScoreShortSeriesScoresNothing(t *testing.T) {
	pd := &models.PerformanceData{
		SpeedsKmh:      []float64{60, 40},
		StrideLengthsM: []float64{7.0, 5.0},
	}
	res := Score(pd)
	assert.Equal(t, models.RiskLow, res.Risk)
}

func TestAnalyzeEmptyPayload(t *testing.T) {
	res, err := Analyze(nil)
	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, res.Risk)
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	_, err := Analyze(json.RawMessage(`{not json`))
	assert.Error(t, err)
}

func TestAnalyzeDecodesPayload(t *testing.T) {
	raw, err := json.Marshal(models.PerformanceData{
		SpeedsKmh:      []float64{60, 62, 58, 48},
		StrideLengthsM: []float64{7.0, 7.1, 7.0, 6.9},
	})
	require.NoError(t, err)
	res, err := Analyze(raw)
	require.NoError(t, err)
	assert.Equal(t, models.RiskMedium, res.Risk)
}

func TestMsToKmh(t *testing.T) {
	assert.InDelta(t, 36.0, MsToKmh(10), 1e-9)
	assert.InDelta(t, 0.0, MsToKmh(0), 1e-9)
}
