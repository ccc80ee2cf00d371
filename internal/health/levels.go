package health

// RiskLevel classifies an order's diabetes risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// IsElevated reports whether the level warrants doctor notification and a
// risk pattern alert.
func (r RiskLevel) IsElevated() bool {
	return r == RiskHigh || r == RiskCritical
}

// WarningLevel is the severity of a HealthWarning.
type WarningLevel string

const (
	WarningInfo     WarningLevel = "info"
	WarningWarning  WarningLevel = "warning"
	WarningDanger   WarningLevel = "danger"
	WarningCritical WarningLevel = "critical"
)

// Severity ranks levels info < warning < danger < critical. Unknown levels rank 0.
func (l WarningLevel) Severity() int {
	switch l {
	case WarningInfo:
		return 1
	case WarningWarning:
		return 2
	case WarningDanger:
		return 3
	case WarningCritical:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether l is as severe as other.
func (l WarningLevel) AtLeast(other WarningLevel) bool {
	return l.Severity() >= other.Severity()
}

// HealthWarning is recreated on every evaluation and never stored.
type HealthWarning struct {
	Level          WarningLevel `json:"level"`
	Message        string       `json:"message"`
	Recommendation string       `json:"recommendation"`
}

// AllowsProceed reports whether the user may acknowledge the warning and
// continue. Critical warnings can only be cancelled.
func (w HealthWarning) AllowsProceed() bool {
	return w.Level != WarningCritical
}
