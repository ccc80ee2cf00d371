package checkout

import (
	"time"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
)

// Phase is where a session sits in the checkout flow between requests.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseAwaitingEscalation Phase = "awaiting_escalation"
	PhaseAwaitingWarningAck Phase = "awaiting_warning_ack"
)

// Outcome is the result of one workflow step.
type Outcome string

const (
	OutcomeBlocked            Outcome = "blocked"
	OutcomeAwaitingEscalation Outcome = "awaiting_escalation"
	OutcomeAwaitingWarningAck Outcome = "awaiting_warning_ack"
	OutcomeCommitted          Outcome = "committed"
	OutcomeCancelled          Outcome = "cancelled"
)

// PendingOrder is the address and payment staged while an escalation or
// warning prompt is open.
type PendingOrder struct {
	AttemptID   string                 `json:"attempt_id"`
	Address     health.DeliveryAddress `json:"address"`
	Payment     health.PaymentMethod   `json:"payment"`
	RequestedAt time.Time              `json:"requested_at"`
}

// State is everything the workflow needs about one session. Workflow methods
// never modify the State they are given; they return a new one.
type State struct {
	User    health.User           `json:"user"`
	Cart    []health.CartItem     `json:"cart"`
	Phase   Phase                 `json:"phase"`
	Pending *PendingOrder         `json:"pending,omitempty"`
	Warning *health.HealthWarning `json:"warning,omitempty"`
}

// NewState returns an idle state for user with an empty cart.
func NewState(user health.User) State {
	return State{User: user.Clone(), Phase: PhaseIdle}
}

// Clone deep copies the state.
func (s State) Clone() State {
	out := s
	out.User = s.User.Clone()
	out.Cart = health.CloneItems(s.Cart)
	if s.Pending != nil {
		p := *s.Pending
		p.Payment = s.Pending.Payment.Clone()
		out.Pending = &p
	}
	if s.Warning != nil {
		w := *s.Warning
		out.Warning = &w
	}
	if out.Phase == "" {
		out.Phase = PhaseIdle
	}
	return out
}

// Idle reports whether no prompt is open.
func (s State) Idle() bool {
	return s.Phase == "" || s.Phase == PhaseIdle
}

func (s State) reset() State {
	s.Phase = PhaseIdle
	s.Pending = nil
	s.Warning = nil
	return s
}
