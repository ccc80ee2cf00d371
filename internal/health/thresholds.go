package health

// Thresholds holds the literal limits used by the rule layers. Multipliers of
// MaxDailyGlucoseLimit that appear in more than one layer are a single field so
// the classifier, warning generator and gate stay consistent.
type Thresholds struct {
	// Glucose levels in mg/dL.
	CriticalGlucose   float64 `json:"criticalGlucose" yaml:"criticalGlucose"`     // classifier critical, warning critical
	BlockGlucose      float64 `json:"blockGlucose" yaml:"blockGlucose"`           // gate
	EscalationGlucose float64 `json:"escalationGlucose" yaml:"escalationGlucose"` // escalation with risky items

	// Multipliers of MaxDailyGlucoseLimit applied to projected daily sugar.
	ExtremeSugarMultiplier     float64 `json:"extremeSugarMultiplier" yaml:"extremeSugarMultiplier"`         // classifier critical, gate
	ExcessSugarMultiplier      float64 `json:"excessSugarMultiplier" yaml:"excessSugarMultiplier"`           // classifier high, warning danger
	ApproachingSugarMultiplier float64 `json:"approachingSugarMultiplier" yaml:"approachingSugarMultiplier"` // warning info

	// Aggregate glucose impact.
	HighImpact       float64 `json:"highImpact" yaml:"highImpact"`             // classifier high
	MediumImpact     float64 `json:"mediumImpact" yaml:"mediumImpact"`         // classifier medium
	EscalationImpact float64 `json:"escalationImpact" yaml:"escalationImpact"` // escalation, gate with repeated warnings

	// Counters.
	MediumWarningCount int `json:"mediumWarningCount" yaml:"mediumWarningCount"` // classifier medium, escalation with risky items
	BlockWarningCount  int `json:"blockWarningCount" yaml:"blockWarningCount"`   // gate
	EscalationPatterns int `json:"escalationPatterns" yaml:"escalationPatterns"` // escalation on risk pattern alerts
}

// DefaultThresholds returns the production limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalGlucose:   200,
		BlockGlucose:      250,
		EscalationGlucose: 180,

		ExtremeSugarMultiplier:     2,
		ExcessSugarMultiplier:      1.5,
		ApproachingSugarMultiplier: 0.8,

		HighImpact:       20,
		MediumImpact:     10,
		EscalationImpact: 15,

		MediumWarningCount: 2,
		BlockWarningCount:  3,
		EscalationPatterns: 2,
	}
}

// WithDefaults fills zero fields from DefaultThresholds so a partial override
// from configuration keeps the remaining limits. Zero therefore means unset
// and can not be used as a limit.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.CriticalGlucose == 0 {
		t.CriticalGlucose = d.CriticalGlucose
	}
	if t.BlockGlucose == 0 {
		t.BlockGlucose = d.BlockGlucose
	}
	if t.EscalationGlucose == 0 {
		t.EscalationGlucose = d.EscalationGlucose
	}
	if t.ExtremeSugarMultiplier == 0 {
		t.ExtremeSugarMultiplier = d.ExtremeSugarMultiplier
	}
	if t.ExcessSugarMultiplier == 0 {
		t.ExcessSugarMultiplier = d.ExcessSugarMultiplier
	}
	if t.ApproachingSugarMultiplier == 0 {
		t.ApproachingSugarMultiplier = d.ApproachingSugarMultiplier
	}
	if t.HighImpact == 0 {
		t.HighImpact = d.HighImpact
	}
	if t.MediumImpact == 0 {
		t.MediumImpact = d.MediumImpact
	}
	if t.EscalationImpact == 0 {
		t.EscalationImpact = d.EscalationImpact
	}
	if t.MediumWarningCount == 0 {
		t.MediumWarningCount = d.MediumWarningCount
	}
	if t.BlockWarningCount == 0 {
		t.BlockWarningCount = d.BlockWarningCount
	}
	if t.EscalationPatterns == 0 {
		t.EscalationPatterns = d.EscalationPatterns
	}
	return t
}
