package health

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TotalGlucoseImpact sums GlucoseImpact*Quantity. The aggregate is not
// clamped to the 0-10 per-item scale.
func TotalGlucoseImpact(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.GlucoseImpact * float64(it.Quantity)
	}
	return total
}

// TotalSugar sums SugarContent*Quantity in grams.
func TotalSugar(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.SugarContent * float64(it.Quantity)
	}
	return total
}

// TotalPrice sums Price*Quantity.
func TotalPrice(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// HasRiskyItems reports whether any line is flagged IsDiabetesRisky.
func HasRiskyItems(items []CartItem) bool {
	for _, it := range items {
		if it.IsDiabetesRisky {
			return true
		}
	}
	return false
}

// OrderSummary renders the one-line order description used in escalation
// messages.
func OrderSummary(items []CartItem) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, fmt.Sprintf("%s (%dx)", it.Name, it.Quantity))
	}
	return fmt.Sprintf("Items: %s. Total sugar: %.1fg, Glucose impact: %s/10",
		strings.Join(names, ", "), TotalSugar(items), formatNumber(TotalGlucoseImpact(items)))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
