// Package risk scores training sessions for injury risk from the device's
// per-sectional time series. The scoring is heuristic: it flags patterns
// veterinarians associate with soft-tissue strain so a human can review,
// it does not diagnose.
package risk

import (
	"encoding/json"

	"github.com/equitrack/backend/internal/models"
)

// Thresholds for the three findings. A finding contributes one point;
// points map to a risk label in Score.
const (
	// Late-session speed fading more than this fraction below the peak
	// sectional suggests fatigue.
	speedDropThreshold = 0.15
	// Stride length shortening more than this fraction below the peak
	// suggests the horse is protecting a limb.
	strideCollapseThreshold = 0.10
	// Recovery heart rate above this ~2min after pull-up suggests the
	// session overtaxed the horse.
	recoveryHrThreshold = 110
)

// Finding names one observed risk pattern.
type Finding string

const (
	FindingSpeedDrop      Finding = "speed_drop"
	FindingStrideCollapse Finding = "stride_collapse"
	FindingPoorRecovery   Finding = "poor_recovery"
)

// Result is the outcome of analyzing one session.
type Result struct {
	Risk     models.InjuryRisk
	Findings []Finding
}

// MsToKmh converts m/s to km/h for devices that report sectional speeds
// in SI units.
func MsToKmh(ms float64) float64 { return ms * 3.6 }

// Analyze decodes raw performance data and scores it. Sessions without
// usable data come back low risk with no findings.
func Analyze(raw json.RawMessage) (Result, error) {
	if len(raw) == 0 {
		return Result{Risk: models.RiskLow}, nil
	}
	var pd models.PerformanceData
	if err := json.Unmarshal(raw, &pd); err != nil {
		return Result{}, err
	}
	return Score(&pd), nil
}

// Score evaluates decoded performance data. Zero findings is low risk,
// one is medium, two is high, all three is critical.
func Score(pd *models.PerformanceData) Result {
	var findings []Finding
	if lateDrop(pd.SpeedsKmh) > speedDropThreshold {
		findings = append(findings, FindingSpeedDrop)
	}
	if lateDrop(pd.StrideLengthsM) > strideCollapseThreshold {
		findings = append(findings, FindingStrideCollapse)
	}
	if pd.RecoveryHrBpm > recoveryHrThreshold {
		findings = append(findings, FindingPoorRecovery)
	}

	risk := models.RiskLow
	switch len(findings) {
	case 1:
		risk = models.RiskMedium
	case 2:
		risk = models.RiskHigh
	case 3:
		risk = models.RiskCritical
	}
	return Result{Risk: risk, Findings: findings}
}

// lateDrop returns how far the final sectional falls below the series
// peak, as a fraction of the peak. Series shorter than three sectionals
// are too noisy to judge and score zero.
func lateDrop(series []float64) float64 {
	if len(series) < 3 {
		return 0
	}
	peak := series[0]
	for _, v := range series[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return 0
	}
	last := series[len(series)-1]
	return (peak - last) / peak
}
