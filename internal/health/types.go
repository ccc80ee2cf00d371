package health

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiabetesType values
const (
	DiabetesType1 = "type1"
	DiabetesType2 = "type2"
)

// GlucoseRange is a target blood glucose window in mg/dL.
type GlucoseRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// User is the health profile the checkout rules are evaluated against.
type User struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Age                  int               `json:"age"`
	DiabetesType         string            `json:"diabetes_type"`         // type1 | type2
	CurrentGlucoseLevel  float64           `json:"current_glucose_level"` // mg/dL
	TargetGlucoseRange   GlucoseRange      `json:"target_glucose_range"`
	DailyGlucoseIntake   float64           `json:"daily_glucose_intake"`    // grams consumed today
	MaxDailyGlucoseLimit float64           `json:"max_daily_glucose_limit"` // grams
	WarningCount         int               `json:"warning_count"`
	IsBlocked            bool              `json:"is_blocked"`
	RiskPatternAlerts    int               `json:"risk_pattern_alerts"`
	EmergencyContact     string            `json:"emergency_contact,omitempty"`
	DeliveryAddresses    []DeliveryAddress `json:"delivery_addresses,omitempty"`
	DefaultAddressID     string            `json:"default_address_id,omitempty"`
	FamilyContacts       []FamilyContact   `json:"family_contacts,omitempty"`
	DoctorContact        DoctorContact     `json:"doctor_contact"`
	OrderHistory         []Order           `json:"order_history"` // newest first
}

// Clone returns a deep copy of the user so callers can derive a new state
// without touching the receiver.
func (u User) Clone() User {
	out := u
	out.DeliveryAddresses = append([]DeliveryAddress(nil), u.DeliveryAddresses...)
	out.FamilyContacts = append([]FamilyContact(nil), u.FamilyContacts...)
	if u.OrderHistory != nil {
		out.OrderHistory = make([]Order, len(u.OrderHistory))
		for i, o := range u.OrderHistory {
			out.OrderHistory[i] = o.Clone()
		}
	}
	return out
}

// FoodItem is a catalog entry with its glucose characteristics.
type FoodItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	GlucoseImpact   float64         `json:"glucose_impact"` // 0-10 per unit
	SugarContent    float64         `json:"sugar_content"`  // grams per unit
	Carbohydrates   float64         `json:"carbohydrates,omitempty"`
	Calories        float64         `json:"calories,omitempty"`
	IsDiabetesRisky bool            `json:"is_diabetes_risky"`
}

// CartItem is a food item with a quantity of at least one.
type CartItem struct {
	FoodItem
	Quantity int `json:"quantity"`
}

// CloneItems copies a cart line slice.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	return append([]CartItem(nil), items...)
}

// DeliveryAddress is where an order is shipped.
type DeliveryAddress struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	FullAddress string `json:"full_address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
	Landmark    string `json:"landmark,omitempty"`
	IsDefault   bool   `json:"is_default"`
}

// FamilyContact receives escalation messages when NotifyOnRisk is set.
type FamilyContact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	NotifyOnRisk bool   `json:"notify_on_risk"`
}

// DoctorContact is the user's healthcare provider.
type DoctorContact struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Clinic         string `json:"clinic,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// Order statuses. Only StatusConfirmed is produced by checkout.
const (
	StatusPending        = "pending"
	StatusConfirmed      = "confirmed"
	StatusPreparing      = "preparing"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// Order is immutable once placed.
type Order struct {
	ID                    string          `json:"id"`
	Items                 []CartItem      `json:"items"`
	TotalPrice            decimal.Decimal `json:"total_price"`
	TotalGlucoseImpact    float64         `json:"total_glucose_impact"`
	TotalSugar            float64         `json:"total_sugar"`
	OrderDate             time.Time       `json:"order_date"`
	Status                string          `json:"status"`
	DeliveryAddress       DeliveryAddress `json:"delivery_address"`
	PaymentMethod         PaymentMethod   `json:"payment_method"`
	EstimatedDeliveryTime time.Time       `json:"estimated_delivery_time"`
	RiskLevel             RiskLevel       `json:"risk_level"`
	FamilyNotified        bool            `json:"family_notified"`
	DoctorNotified        bool            `json:"doctor_notified"`
}

// Clone copies the order including its item snapshot.
func (o Order) Clone() Order {
	out := o
	out.Items = CloneItems(o.Items)
	out.PaymentMethod = o.PaymentMethod.Clone()
	return out
}
