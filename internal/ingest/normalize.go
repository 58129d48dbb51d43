package ingest

import (
	"encoding/json"

	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/internal/risk"
)

// normalizePerformance accepts device payloads that report sectional speeds
// in m/s (`speeds_ms`) instead of km/h and rewrites them to the stored
// km/h form. Payloads already carrying `speeds_kmh` pass through
// untouched; when both fields are present, km/h wins.
func normalizePerformance(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return raw, nil
	}
	var in struct {
		models.PerformanceData
		SpeedsMs []float64 `json:"speeds_ms"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	if len(in.SpeedsMs) == 0 || len(in.SpeedsKmh) > 0 {
		return raw, nil
	}
	pd := in.PerformanceData
	pd.SpeedsKmh = make([]float64, len(in.SpeedsMs))
	for i, v := range in.SpeedsMs {
		pd.SpeedsKmh[i] = risk.MsToKmh(v)
	}
	return json.Marshal(pd)
}
