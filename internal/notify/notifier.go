package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/aws"
)

// Channel is the delivery medium of a notification.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Audience is who a notification is addressed to.
type Audience string

const (
	AudienceFamily Audience = "family"
	AudienceDoctor Audience = "doctor"
)

// Notification is one message to one recipient over one channel.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Audience  Audience  `json:"audience"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Channel   Channel   `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier sends a notification. A nil error means the send succeeded;
// there is no delivery guarantee beyond that.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// ErrSendFailed is returned by the simulated notifier on a simulated failure.
var ErrSendFailed = errors.New("notification send failed")

// SimulatedNotifier stands in for an SMS/email gateway: it waits, logs and
// fails a fraction of sends.
type SimulatedNotifier struct {
	logger      *slog.Logger
	latency     time.Duration
	failureRate float64

	mu    sync.Mutex
	rnd   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSimulatedNotifier returns a notifier with the given latency and failure rate.
func NewSimulatedNotifier(logger *slog.Logger, latency time.Duration, failureRate float64) *SimulatedNotifier {
	return &SimulatedNotifier{
		logger:      logger,
		latency:     latency,
		failureRate: failureRate,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Send implements Notifier.
func (s *SimulatedNotifier) Send(ctx context.Context, n Notification) error {
	if err := s.sleep(ctx, s.latency); err != nil {
		return errors.Wrap(err, "simulated send interrupted")
	}

	s.mu.Lock()
	roll := s.rnd.Float64()
	s.mu.Unlock()

	if roll < s.failureRate {
		s.logger.WarnContext(ctx, "notification send failed",
			slog.String("channel", string(n.Channel)),
			slog.String("recipient", n.Recipient),
			slog.String("notification_id", n.ID),
		)
		return errors.Wrapf(ErrSendFailed, "%s to %s", n.Channel, n.Recipient)
	}

	s.logger.InfoContext(ctx, "notification sent",
		slog.String("channel", string(n.Channel)),
		slog.String("recipient", n.Recipient),
		slog.String("audience", string(n.Audience)),
		slog.String("notification_id", n.ID),
		slog.String("message", n.Message),
	)
	return nil
}

// SQSNotifier queues notifications for the delivery worker.
type SQSNotifier struct {
	publisher *aws.Publisher
}

// NewSQSNotifier returns a notifier that publishes through p.
func NewSQSNotifier(p *aws.Publisher) *SQSNotifier {
	return &SQSNotifier{publisher: p}
}

// Send implements Notifier by enqueueing the notification as JSON.
func (s *SQSNotifier) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}
	attrs := map[string]string{
		"notification_id": n.ID,
		"channel":         string(n.Channel),
		"audience":        string(n.Audience),
	}
	if err := s.publisher.Publish(ctx, string(body), attrs); err != nil {
		return errors.Wrapf(err, "enqueue notification %s", n.ID)
	}
	return nil
}
