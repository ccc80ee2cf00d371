package cart

import (
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
)

var (
	// ErrAddBlocked means the gate rejected the cart that adding would produce.
	ErrAddBlocked = errors.New("adding item blocked by health gate")
	// ErrWarningNotAcknowledged means the add produced a warning the caller
	// has not acknowledged yet.
	ErrWarningNotAcknowledged = errors.New("health warning must be acknowledged")
)

// AddResult reports what the health check said about an add.
type AddResult struct {
	Added        bool                  `json:"added"`
	Warning      *health.HealthWarning `json:"warning,omitempty"`
	// Acknowledged is set when the item was added past a warning. The caller
	// counts it against the user's WarningCount.
	Acknowledged bool                  `json:"acknowledged"`
}

// GuardedAdd evaluates the prospective cart before adding one or more units.
// A blocked cart never changes; a cart that raises a warning changes only
// when acknowledge is set, and critical warnings can not be acknowledged.
func GuardedAdd(c *Cart, rules health.Rules, user health.User, item health.FoodItem, qty int, acknowledge bool) (AddResult, error) {
	if qty < 0 {
		return AddResult{}, ErrInvalidQuantity
	}
	if item.ID == "" {
		return AddResult{}, ErrMissingItemID
	}
	prospective := c.Prospective(item, qty)

	if rules.ShouldBlock(user, prospective) {
		w := health.BlockedWarning(health.StageAddToCart)
		return AddResult{Warning: &w}, ErrAddBlocked
	}

	w := rules.GenerateWarning(user, prospective)
	if w != nil && (!acknowledge || !w.AllowsProceed()) {
		return AddResult{Warning: w}, ErrWarningNotAcknowledged
	}

	if err := c.Add(item, qty); err != nil {
		return AddResult{}, err
	}
	return AddResult{Added: true, Warning: w, Acknowledged: w != nil}, nil
}
