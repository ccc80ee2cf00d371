// Package checkout runs the order workflow: gate, escalation, warning
// acknowledgement and commit.
package checkout

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/metrics"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/notify"
)

var (
	ErrInvalidRequest    = errors.New("invalid checkout request")
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrNoPendingOrder    = errors.New("no pending order")
	ErrProceedNotAllowed = errors.New("critical warning can not be proceeded past")
	ErrAlreadyCommitted  = errors.New("checkout attempt already committed")
)

// DefaultDeliveryEstimate is added to the commit time to estimate delivery.
const DefaultDeliveryEstimate = 45 * time.Minute

// CommitGuard makes a commit happen at most once per checkout attempt.
type CommitGuard interface {
	// Claim takes key for orderID and reports false when it was taken before.
	Claim(ctx context.Context, key, orderID string) (bool, error)
	Claimed(ctx context.Context, key string) (bool, error)
}

// Action resolves an open prompt.
type Action string

const (
	ActionSend    Action = "send"
	ActionCancel  Action = "cancel"
	ActionProceed Action = "proceed"
)

// Request starts a checkout.
type Request struct {
	AttemptID string
	Address   *health.DeliveryAddress
	Payment   *health.PaymentMethod
}

// Result is what a workflow step produced. State is the session state to keep.
type Result struct {
	Outcome    Outcome               `json:"outcome"`
	State      State                 `json:"-"`
	Order      *health.Order         `json:"order,omitempty"`
	Warning    *health.HealthWarning `json:"warning,omitempty"`
	RiskLevel  health.RiskLevel      `json:"risk_level"`
	Escalation *notify.Report        `json:"escalation,omitempty"`
}

// Workflow is safe for concurrent use across sessions. Callers serialise
// steps for one session.
type Workflow struct {
	rules            health.Rules
	escalator        notify.Escalator
	guard            CommitGuard
	recorder         metrics.Recorder
	logger           *slog.Logger
	deliveryEstimate time.Duration

	nowFunc func() time.Time
	newID   func() string
}

// New returns a Workflow. A non-positive deliveryEstimate uses
// DefaultDeliveryEstimate.
func New(rules health.Rules, escalator notify.Escalator, guard CommitGuard, recorder metrics.Recorder, logger *slog.Logger, deliveryEstimate time.Duration) *Workflow {
	if deliveryEstimate <= 0 {
		deliveryEstimate = DefaultDeliveryEstimate
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Workflow{
		rules:            rules,
		escalator:        escalator,
		guard:            guard,
		recorder:         recorder,
		logger:           logger,
		deliveryEstimate: deliveryEstimate,
		nowFunc:          time.Now,
		newID:            uuid.NewString,
	}
}

// Rules returns the rule set the workflow evaluates with.
func (w *Workflow) Rules() health.Rules { return w.rules }

func validate(st State, req Request) error {
	if len(st.Cart) == 0 {
		return errors.Wrap(ErrInvalidRequest, "cart is empty")
	}
	for _, it := range st.Cart {
		if it.ID == "" {
			return errors.Wrap(ErrInvalidRequest, "cart item without id")
		}
		if it.Quantity <= 0 {
			return errors.Wrapf(ErrInvalidRequest, "item %s has quantity %d", it.ID, it.Quantity)
		}
	}
	if req.Address == nil || strings.TrimSpace(req.Address.FullAddress) == "" {
		return errors.Wrap(ErrInvalidRequest, "delivery address is required")
	}
	if req.Payment == nil {
		return errors.Wrap(ErrInvalidRequest, "payment method is required")
	}
	if err := req.Payment.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidRequest, "payment method: %v", err)
	}
	return nil
}

// Checkout evaluates the cart and either blocks, opens a prompt or commits.
// A blocked checkout returns the input state unchanged.
func (w *Workflow) Checkout(ctx context.Context, st State, req Request) (Result, error) {
	if req.AttemptID != "" {
		claimed, err := w.guard.Claimed(ctx, req.AttemptID)
		if err != nil {
			return Result{}, errors.Wrap(err, "check attempt")
		}
		if claimed {
			return Result{}, errors.Wrapf(ErrAlreadyCommitted, "attempt %s", req.AttemptID)
		}
	}
	if !st.Idle() {
		return Result{}, errors.Wrapf(ErrInvalidTransition, "checkout while %s", st.Phase)
	}
	if err := validate(st, req); err != nil {
		return Result{}, err
	}

	next := st.Clone()
	items := next.Cart
	risk := w.rules.ClassifyRisk(next.User, items)

	if w.rules.ShouldBlock(next.User, items) {
		warning := health.BlockedWarning(health.StageCheckout)
		w.logger.InfoContext(ctx, "checkout blocked",
			slog.String("user_id", next.User.ID),
			slog.String("risk_level", string(risk)),
		)
		w.record(ctx, OutcomeBlocked, risk)
		return Result{Outcome: OutcomeBlocked, State: next, Warning: &warning, RiskLevel: risk}, nil
	}

	attemptID := req.AttemptID
	if attemptID == "" {
		attemptID = w.newID()
	}
	pending := &PendingOrder{
		AttemptID:   attemptID,
		Address:     *req.Address,
		Payment:     req.Payment.Clone(),
		RequestedAt: w.nowFunc(),
	}

	if w.rules.ShouldNotifyFamily(next.User, items) {
		next.Phase = PhaseAwaitingEscalation
		next.Pending = pending
		w.record(ctx, OutcomeAwaitingEscalation, risk)
		return Result{Outcome: OutcomeAwaitingEscalation, State: next, RiskLevel: risk}, nil
	}

	if warning := w.rules.GenerateWarning(next.User, items); warning != nil {
		next.Phase = PhaseAwaitingWarningAck
		next.Pending = pending
		next.Warning = warning
		w.record(ctx, OutcomeAwaitingWarningAck, risk)
		return Result{Outcome: OutcomeAwaitingWarningAck, State: next, Warning: warning, RiskLevel: risk}, nil
	}

	return w.commit(ctx, next, pending, nil)
}

// ResolveEscalation handles the answer to an open escalation prompt. Send
// notifies every contact, waits for all sends and commits regardless of
// individual failures.
func (w *Workflow) ResolveEscalation(ctx context.Context, st State, action Action) (Result, error) {
	if st.Phase != PhaseAwaitingEscalation {
		return Result{}, errors.Wrapf(ErrInvalidTransition, "escalation %s while %s", action, st.Phase)
	}
	if st.Pending == nil {
		return Result{}, ErrNoPendingOrder
	}

	next := st.Clone()
	switch action {
	case ActionCancel:
		return w.cancel(ctx, next)
	case ActionSend:
	default:
		return Result{}, errors.Wrapf(ErrInvalidRequest, "unknown escalation action %q", action)
	}

	claimed, err := w.guard.Claimed(ctx, next.Pending.AttemptID)
	if err != nil {
		return Result{}, errors.Wrap(err, "check attempt")
	}
	if claimed {
		return Result{}, errors.Wrapf(ErrAlreadyCommitted, "attempt %s", next.Pending.AttemptID)
	}

	report := w.escalator.Escalate(ctx, notify.EscalationRequest{
		User:      next.User.Clone(),
		Items:     health.CloneItems(next.Cart),
		RiskLevel: w.rules.ClassifyRisk(next.User, next.Cart),
	})
	return w.commit(ctx, next, next.Pending, &report)
}

// ResolveWarning handles the answer to an open warning prompt. Proceeding
// counts one more acknowledged warning; critical warnings only allow cancel.
func (w *Workflow) ResolveWarning(ctx context.Context, st State, action Action) (Result, error) {
	if st.Phase != PhaseAwaitingWarningAck {
		return Result{}, errors.Wrapf(ErrInvalidTransition, "warning %s while %s", action, st.Phase)
	}
	if st.Pending == nil {
		return Result{}, ErrNoPendingOrder
	}

	next := st.Clone()
	switch action {
	case ActionCancel:
		return w.cancel(ctx, next)
	case ActionProceed:
	default:
		return Result{}, errors.Wrapf(ErrInvalidRequest, "unknown warning action %q", action)
	}

	if next.Warning != nil && !next.Warning.AllowsProceed() {
		return Result{}, ErrProceedNotAllowed
	}

	// Risk is classified on the snapshot the user acknowledged.
	snapshot := next.User.Clone()
	next.User.WarningCount++
	return w.commitWithRisk(ctx, next, next.Pending, nil, w.rules.ClassifyRisk(snapshot, next.Cart))
}

func (w *Workflow) cancel(ctx context.Context, next State) (Result, error) {
	w.logger.InfoContext(ctx, "checkout cancelled",
		slog.String("user_id", next.User.ID),
		slog.String("phase", string(next.Phase)),
	)
	next = next.reset()
	w.record(ctx, OutcomeCancelled, "")
	return Result{Outcome: OutcomeCancelled, State: next}, nil
}

func (w *Workflow) commit(ctx context.Context, next State, pending *PendingOrder, report *notify.Report) (Result, error) {
	return w.commitWithRisk(ctx, next, pending, report, w.rules.ClassifyRisk(next.User, next.Cart))
}

// commitWithRisk places the order. next is already a private copy.
func (w *Workflow) commitWithRisk(ctx context.Context, next State, pending *PendingOrder, report *notify.Report, risk health.RiskLevel) (Result, error) {
	if pending == nil {
		return Result{}, ErrNoPendingOrder
	}

	orderID := w.newID()
	ok, err := w.guard.Claim(ctx, pending.AttemptID, orderID)
	if err != nil {
		return Result{}, errors.Wrap(err, "claim attempt")
	}
	if !ok {
		return Result{}, errors.Wrapf(ErrAlreadyCommitted, "attempt %s", pending.AttemptID)
	}

	now := w.nowFunc()
	items := health.CloneItems(next.Cart)
	order := health.Order{
		ID:                    orderID,
		Items:                 items,
		TotalPrice:            health.TotalPrice(items),
		TotalGlucoseImpact:    health.TotalGlucoseImpact(items),
		TotalSugar:            health.TotalSugar(items),
		OrderDate:             now,
		Status:                health.StatusConfirmed,
		DeliveryAddress:       pending.Address,
		PaymentMethod:         pending.Payment.Clone(),
		EstimatedDeliveryTime: now.Add(w.deliveryEstimate),
		RiskLevel:             risk,
	}
	if report != nil {
		order.FamilyNotified = report.FamilyNotified
		order.DoctorNotified = report.DoctorNotified && risk.IsElevated()
	}

	next.User.OrderHistory = append([]health.Order{order}, next.User.OrderHistory...)
	if risk.IsElevated() {
		next.User.RiskPatternAlerts++
	}
	next.Cart = nil
	next = next.reset()

	w.logger.InfoContext(ctx, "order committed",
		slog.String("user_id", next.User.ID),
		slog.String("order_id", order.ID),
		slog.String("attempt_id", pending.AttemptID),
		slog.String("risk_level", string(risk)),
		slog.String("total_price", order.TotalPrice.StringFixed(2)),
	)
	w.record(ctx, OutcomeCommitted, risk)

	placed := order.Clone()
	return Result{Outcome: OutcomeCommitted, State: next, Order: &placed, RiskLevel: risk, Escalation: report}, nil
}

func (w *Workflow) record(ctx context.Context, outcome Outcome, risk health.RiskLevel) {
	// Metric failures never affect the checkout.
	_ = w.recorder.RecordOutcome(ctx, string(outcome), string(risk))
}
