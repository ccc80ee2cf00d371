package health

// Rules evaluates a user and a cart snapshot against a set of thresholds.
// Every method is pure: inputs are never mutated and identical inputs give
// identical outputs.
type Rules struct {
	T Thresholds
}

// NewRules returns Rules with zero thresholds filled from the defaults.
func NewRules(t Thresholds) Rules {
	return Rules{T: t.WithDefaults()}
}

var defaultRules = NewRules(DefaultThresholds())

// Assessment is the result of running every rule layer on one snapshot.
type Assessment struct {
	TotalGlucoseImpact float64        `json:"total_glucose_impact"`
	TotalSugar         float64        `json:"total_sugar"`
	ProjectedSugar     float64        `json:"projected_daily_sugar"`
	// RiskLevel is always critical for a user with IsBlocked set, whatever
	// the cart holds.
	RiskLevel          RiskLevel      `json:"risk_level"`
	Warning            *HealthWarning `json:"warning,omitempty"`
	Blocked            bool           `json:"blocked"`
	NotifyFamily       bool           `json:"notify_family"`
	Summary            string         `json:"summary"`
}

// Assess runs the classifier, warning generator, gate and escalation rules
// over the same cart snapshot.
func (r Rules) Assess(user User, items []CartItem) Assessment {
	sugar := TotalSugar(items)
	return Assessment{
		TotalGlucoseImpact: TotalGlucoseImpact(items),
		TotalSugar:         sugar,
		ProjectedSugar:     user.DailyGlucoseIntake + sugar,
		RiskLevel:          r.ClassifyRisk(user, items),
		Warning:            r.GenerateWarning(user, items),
		Blocked:            r.ShouldBlock(user, items),
		NotifyFamily:       r.ShouldNotifyFamily(user, items),
		Summary:            OrderSummary(items),
	}
}

func projectedSugar(user User, items []CartItem) float64 {
	return user.DailyGlucoseIntake + TotalSugar(items)
}

// ClassifyRisk returns the first matching level, checked from critical down.
// An administratively blocked user is critical so a gated order never
// classifies below the gate.
func (r Rules) ClassifyRisk(user User, items []CartItem) RiskLevel {
	impact := TotalGlucoseImpact(items)
	projected := projectedSugar(user, items)
	limit := user.MaxDailyGlucoseLimit

	switch {
	case user.CurrentGlucoseLevel > r.T.CriticalGlucose || user.IsBlocked || projected > limit*r.T.ExtremeSugarMultiplier:
		return RiskCritical
	case impact > r.T.HighImpact || projected > limit*r.T.ExcessSugarMultiplier:
		return RiskHigh
	case impact > r.T.MediumImpact || user.WarningCount >= r.T.MediumWarningCount:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Warning texts.
var (
	criticalWarning = HealthWarning{
		Level:          WarningCritical,
		Message:        "CRITICAL: Your blood glucose is dangerously high or you have been temporarily blocked from ordering high-risk items.",
		Recommendation: "Please contact your healthcare provider immediately and avoid high-sugar foods.",
	}
	dangerWarning = HealthWarning{
		Level:          WarningDanger,
		Message:        "HIGH RISK: This order would exceed your daily sugar limit by over 50%.",
		Recommendation: "Consider removing high-sugar items or splitting this order across multiple days.",
	}
	elevatedWarning = HealthWarning{
		Level:          WarningWarning,
		Message:        "WARNING: Your glucose is elevated and you're ordering high-risk items.",
		Recommendation: "Consider choosing lower-sugar alternatives or wait until your glucose normalizes.",
	}
	approachingWarning = HealthWarning{
		Level:          WarningInfo,
		Message:        "INFO: This order will bring you close to your daily sugar limit.",
		Recommendation: "Monitor your glucose levels closely after eating and consider lighter options for remaining meals.",
	}
)

// GenerateWarning returns the most severe applicable warning or nil when the
// order needs none.
func (r Rules) GenerateWarning(user User, items []CartItem) *HealthWarning {
	projected := projectedSugar(user, items)
	limit := user.MaxDailyGlucoseLimit

	var w HealthWarning
	switch {
	case user.CurrentGlucoseLevel > r.T.CriticalGlucose || user.IsBlocked:
		w = criticalWarning
	case projected > limit*r.T.ExcessSugarMultiplier:
		w = dangerWarning
	case user.CurrentGlucoseLevel > user.TargetGlucoseRange.Max && HasRiskyItems(items):
		w = elevatedWarning
	case projected > limit*r.T.ApproachingSugarMultiplier:
		w = approachingWarning
	default:
		return nil
	}
	return &w
}

// ShouldBlock is the authoritative gate. A true result means the order must
// not be placed, escalated or counted.
func (r Rules) ShouldBlock(user User, items []CartItem) bool {
	if user.IsBlocked {
		return true
	}
	if user.CurrentGlucoseLevel > r.T.BlockGlucose {
		return true
	}
	if projectedSugar(user, items) > user.MaxDailyGlucoseLimit*r.T.ExtremeSugarMultiplier {
		return true
	}
	return user.WarningCount >= r.T.BlockWarningCount && TotalGlucoseImpact(items) > r.T.EscalationImpact
}

// ShouldNotifyFamily decides whether family (and possibly the doctor) must be
// notified before the order can proceed.
func (r Rules) ShouldNotifyFamily(user User, items []CartItem) bool {
	risky := HasRiskyItems(items)

	if TotalGlucoseImpact(items) > r.T.EscalationImpact {
		return true
	}
	if user.WarningCount >= r.T.MediumWarningCount && risky {
		return true
	}
	if user.CurrentGlucoseLevel > r.T.EscalationGlucose && risky {
		return true
	}
	return user.RiskPatternAlerts >= r.T.EscalationPatterns
}

// Stage names the point at which the gate blocked an order.
type Stage string

const (
	StageAddToCart Stage = "add_to_cart"
	StageCheckout  Stage = "checkout"
)

// BlockedWarning is the fixed critical warning shown when the gate blocks.
func BlockedWarning(stage Stage) HealthWarning {
	if stage == StageAddToCart {
		return HealthWarning{
			Level:          WarningCritical,
			Message:        "ORDER BLOCKED: This order poses a significant health risk.",
			Recommendation: "Please contact your healthcare provider and choose healthier alternatives.",
		}
	}
	return HealthWarning{
		Level:          WarningCritical,
		Message:        "CHECKOUT BLOCKED: This order poses a significant health risk.",
		Recommendation: "Please remove high-risk items or contact your healthcare provider.",
	}
}

// ClassifyRisk classifies with the default thresholds.
func ClassifyRisk(user User, items []CartItem) RiskLevel {
	return defaultRules.ClassifyRisk(user, items)
}

// GenerateWarning generates a warning with the default thresholds.
func GenerateWarning(user User, items []CartItem) *HealthWarning {
	return defaultRules.GenerateWarning(user, items)
}

// ShouldBlock gates with the default thresholds.
func ShouldBlock(user User, items []CartItem) bool {
	return defaultRules.ShouldBlock(user, items)
}

// ShouldNotifyFamily decides escalation with the default thresholds.
func ShouldNotifyFamily(user User, items []CartItem) bool {
	return defaultRules.ShouldNotifyFamily(user, items)
}
