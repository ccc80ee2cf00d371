package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
)

// EscalationRequest carries the snapshot an escalation is about.
type EscalationRequest struct {
	User      health.User
	Items     []health.CartItem
	RiskLevel health.RiskLevel
}

// Report summarises an escalation fan-out.
type Report struct {
	Attempted      int  `json:"attempted"`
	Delivered      int  `json:"delivered"`
	Failed         int  `json:"failed"`
	FamilyNotified bool `json:"family_notified"`
	DoctorNotified bool `json:"doctor_notified"`
}

// Escalator notifies family and doctor contacts about a risky order.
type Escalator interface {
	Escalate(ctx context.Context, req EscalationRequest) Report
}

// Dispatcher fans notifications out concurrently through a Notifier.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
	newID    func() string
	nowFunc  func() time.Time
}

// NewDispatcher returns a Dispatcher sending through n.
func NewDispatcher(n Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: n,
		logger:   logger,
		newID:    uuid.NewString,
		nowFunc:  time.Now,
	}
}

// Messages builds the notifications for an escalation: sms and email to
// every family contact that opted in, and to the doctor when the risk level
// is high or critical.
func (d *Dispatcher) Messages(req EscalationRequest) []Notification {
	summary := health.OrderSummary(req.Items)
	now := d.nowFunc()
	var out []Notification

	familyMsg := fmt.Sprintf("Health Alert: %s has placed a %s risk food order. %s. Please consider reaching out to provide support.",
		req.User.Name, req.RiskLevel, summary)
	for _, c := range req.User.FamilyContacts {
		if !c.NotifyOnRisk {
			continue
		}
		out = append(out, d.pair(req.User.ID, AudienceFamily, c.Phone, c.Email, familyMsg, now)...)
	}

	if req.RiskLevel.IsElevated() {
		doc := req.User.DoctorContact
		doctorMsg := fmt.Sprintf("Medical Alert: Patient %s (Age: %d, Type %s diabetes) has placed a %s risk food order. Current glucose: %s mg/dL. %s",
			req.User.Name, req.User.Age, strings.TrimPrefix(req.User.DiabetesType, "type"), req.RiskLevel,
			strconv.FormatFloat(req.User.CurrentGlucoseLevel, 'f', -1, 64), summary)
		out = append(out, d.pair(req.User.ID, AudienceDoctor, doc.Phone, doc.Email, doctorMsg, now)...)
	}
	return out
}

func (d *Dispatcher) pair(userID string, aud Audience, phone, email, msg string, now time.Time) []Notification {
	var out []Notification
	if phone != "" {
		out = append(out, Notification{ID: d.newID(), UserID: userID, Audience: aud, Recipient: phone, Message: msg, Channel: ChannelSMS, CreatedAt: now})
	}
	if email != "" {
		out = append(out, Notification{ID: d.newID(), UserID: userID, Audience: aud, Recipient: email, Message: msg, Channel: ChannelEmail, CreatedAt: now})
	}
	return out
}

// Escalate launches every send concurrently and waits for all of them.
// Failed sends are logged and counted; they never abort the escalation and
// are not retried.
func (d *Dispatcher) Escalate(ctx context.Context, req EscalationRequest) Report {
	msgs := d.Messages(req)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		report = Report{Attempted: len(msgs)}
	)
	for _, n := range msgs {
		wg.Add(1)
		go func(n Notification) {
			defer wg.Done()
			err := d.notifier.Send(ctx, n)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				d.logger.WarnContext(ctx, "escalation send failed",
					slog.String("notification_id", n.ID),
					slog.String("audience", string(n.Audience)),
					slog.String("channel", string(n.Channel)),
					slog.Any("error", err),
				)
				return
			}
			report.Delivered++
			switch n.Audience {
			case AudienceFamily:
				report.FamilyNotified = true
			case AudienceDoctor:
				report.DoctorNotified = true
			}
		}(n)
	}
	wg.Wait()

	d.logger.InfoContext(ctx, "escalation dispatched",
		slog.String("user_id", req.User.ID),
		slog.String("risk_level", string(req.RiskLevel)),
		slog.Int("attempted", report.Attempted),
		slog.Int("delivered", report.Delivered),
		slog.Int("failed", report.Failed),
	)
	return report
}
