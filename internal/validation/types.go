package validation

import "github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"

// CreateSessionRequest is the payload for POST /sessions.
type CreateSessionRequest struct {
	User health.User `json:"user"`
}

// AddItemRequest is the payload for POST /sessions/:id/cart/items.
type AddItemRequest struct {
	Item        health.FoodItem `json:"item"`
	Quantity    int             `json:"quantity" validate:"omitempty,min=1,max=99"` // defaults to 1
	Acknowledge bool            `json:"acknowledge"`                                // accept a non-critical warning
}

// Units returns the requested quantity, defaulting to one.
func (r AddItemRequest) Units() int {
	if r.Quantity == 0 {
		return 1
	}
	return r.Quantity
}

// UpdateQuantityRequest is the payload for PATCH /sessions/:id/cart/items/:itemID.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=99"` // 0 removes the line
}

// CheckoutRequest is the payload for POST /sessions/:id/checkout. Address
// wins over AddressID; with neither the user's default address is used.
type CheckoutRequest struct {
	Address   *health.DeliveryAddress `json:"address,omitempty"`
	AddressID string                  `json:"address_id,omitempty"`
	Payment   *health.PaymentMethod   `json:"payment" validate:"required"`
}

// EscalationRequest is the payload for POST /sessions/:id/checkout/escalation.
type EscalationRequest struct {
	Action string `json:"action" validate:"required,oneof=send cancel"`
}

// WarningRequest is the payload for POST /sessions/:id/checkout/warning.
type WarningRequest struct {
	Action string `json:"action" validate:"required,oneof=proceed cancel"`
}
