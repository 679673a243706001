package budget

import "fmt"

// Status is the qualitative label of a category's utilization.
type Status string

const (
	StatusUnderBudget        Status = "Under Budget"
	StatusOnTrack            Status = "On Track"
	StatusNearLimit          Status = "Near Limit"
	StatusOverBudget         Status = "Over Budget"
	StatusUnbudgetedSpending Status = "Unbudgeted Spending"
)

// Severity is the semantic colour of a Status. Mapping it to concrete
// colours is left to the renderer.
type Severity string

const (
	SeverityNominal  Severity = "nominal"
	SeverityCaution  Severity = "caution"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Thresholds are the percentage bands used to classify utilization.
// Each band is inclusive at its lower bound.
type Thresholds struct {
	OverBudget float64 `json:"overBudget"`
	NearLimit  float64 `json:"nearLimit"`
	OnTrack    float64 `json:"onTrack"`
}

// DefaultThresholds returns the 100/90/70 bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OverBudget: 100,
		NearLimit:  90,
		OnTrack:    70,
	}
}

// Validate reports whether the bands are ordered 0 <= OnTrack <= NearLimit <= OverBudget.
func (t Thresholds) Validate() error {
	if t.OnTrack < 0 {
		return fmt.Errorf("on-track threshold must not be negative, got %.1f", t.OnTrack)
	}
	if t.NearLimit < t.OnTrack {
		return fmt.Errorf("near-limit threshold %.1f is below on-track threshold %.1f", t.NearLimit, t.OnTrack)
	}
	if t.OverBudget < t.NearLimit {
		return fmt.Errorf("over-budget threshold %.1f is below near-limit threshold %.1f", t.OverBudget, t.NearLimit)
	}
	return nil
}

// classify buckets a rounded percentage. The unbudgeted case is decided by
// the caller because it depends on the limit, not on the percentage.
func (t Thresholds) classify(percentage float64) (Status, Severity) {
	switch {
	case percentage >= t.OverBudget:
		return StatusOverBudget, SeverityCritical
	case percentage >= t.NearLimit:
		return StatusNearLimit, SeverityWarning
	case percentage >= t.OnTrack:
		return StatusOnTrack, SeverityCaution
	default:
		return StatusUnderBudget, SeverityNominal
	}
}
