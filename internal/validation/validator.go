package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
)

// New returns a configured validator with the domain struct-level rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterStructValidation(userStructValidation, health.User{})
	v.RegisterStructValidation(foodItemStructValidation, health.FoodItem{})
	v.RegisterStructValidation(addressStructValidation, health.DeliveryAddress{})
	v.RegisterStructValidation(paymentStructValidation, health.PaymentMethod{})

	return v
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func userStructValidation(sl validatorv10.StructLevel) {
	u := sl.Current().Interface().(health.User)

	if blank(u.ID) {
		sl.ReportError(u.ID, "id", "ID", "required", "")
	}
	if blank(u.Name) {
		sl.ReportError(u.Name, "name", "Name", "required", "")
	}
	if u.DiabetesType != health.DiabetesType1 && u.DiabetesType != health.DiabetesType2 {
		sl.ReportError(u.DiabetesType, "diabetes_type", "DiabetesType", "oneof", "type1 type2")
	}
	if u.MaxDailyGlucoseLimit <= 0 {
		sl.ReportError(u.MaxDailyGlucoseLimit, "max_daily_glucose_limit", "MaxDailyGlucoseLimit", "gt", "0")
	}
	if u.CurrentGlucoseLevel < 0 || u.DailyGlucoseIntake < 0 {
		sl.ReportError(u.CurrentGlucoseLevel, "current_glucose_level", "CurrentGlucoseLevel", "gte", "0")
	}
	if u.TargetGlucoseRange.Max < u.TargetGlucoseRange.Min {
		sl.ReportError(u.TargetGlucoseRange, "target_glucose_range", "TargetGlucoseRange", "range", "min<=max")
	}
	if u.WarningCount < 0 || u.RiskPatternAlerts < 0 {
		sl.ReportError(u.WarningCount, "warning_count", "WarningCount", "gte", "0")
	}
}

func foodItemStructValidation(sl validatorv10.StructLevel) {
	f := sl.Current().Interface().(health.FoodItem)

	if blank(f.ID) {
		sl.ReportError(f.ID, "id", "ID", "required", "")
	}
	if blank(f.Name) {
		sl.ReportError(f.Name, "name", "Name", "required", "")
	}
	if f.Price.IsNegative() {
		sl.ReportError(f.Price, "price", "Price", "gte", "0")
	}
	if f.GlucoseImpact < 0 || f.GlucoseImpact > 10 {
		sl.ReportError(f.GlucoseImpact, "glucose_impact", "GlucoseImpact", "range", "0-10")
	}
	if f.SugarContent < 0 {
		sl.ReportError(f.SugarContent, "sugar_content", "SugarContent", "gte", "0")
	}
}

func addressStructValidation(sl validatorv10.StructLevel) {
	a := sl.Current().Interface().(health.DeliveryAddress)

	if blank(a.FullAddress) {
		sl.ReportError(a.FullAddress, "full_address", "FullAddress", "required", "")
	}
	if blank(a.City) {
		sl.ReportError(a.City, "city", "City", "required", "")
	}
}

// paymentStructValidation enforces the detail field each payment variant needs.
func paymentStructValidation(sl validatorv10.StructLevel) {
	p := sl.Current().Interface().(health.PaymentMethod)

	if err := p.Validate(); err != nil {
		sl.ReportError(p.Type, "type", "Type", "payment_variant", err.Error())
	}
}
