package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/notify"
)

// Processor delivers queued escalation notifications at most once each.
type Processor struct {
	store    deliveryStore
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewProcessor creates a new worker processor.
func NewProcessor(store deliveryStore, notifier notify.Notifier, logger *slog.Logger) *Processor {
	return &Processor{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Handle processes an SQS batch and reports the messages that should be
// retried. Failed messages go back to the queue and end in the DLQ after
// the redrive limit.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.ErrorContext(ctx, "notification delivery failed",
				slog.String("message_id", rec.MessageId),
				slog.Any("error", err),
			)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var n notify.Notification
	if err := json.Unmarshal([]byte(rec.Body), &n); err != nil {
		return errors.Wrap(err, "invalid message body")
	}
	if n.ID == "" || n.Recipient == "" {
		return errors.New("notification id and recipient are required")
	}

	key := deliveryKey(n.ID)
	acquired, err := p.store.Acquire(ctx, key, n.ID)
	if err != nil {
		return errors.Wrapf(err, "acquire %s", key)
	}
	if !acquired {
		p.logger.InfoContext(ctx, "duplicate notification skipped", slog.String("notification_id", n.ID))
		return nil
	}

	if err := p.notifier.Send(ctx, n); err != nil {
		if markErr := p.store.MarkFailed(ctx, key, err.Error()); markErr != nil {
			p.logger.WarnContext(ctx, "mark failed", slog.String("notification_id", n.ID), slog.Any("error", markErr))
		}
		return errors.Wrapf(err, "send %s", n.ID)
	}

	if err := p.store.MarkDone(ctx, key, string(n.Channel)); err != nil {
		return errors.Wrapf(err, "mark done %s", key)
	}
	p.logger.InfoContext(ctx, "notification delivered",
		slog.String("notification_id", n.ID),
		slog.String("audience", string(n.Audience)),
		slog.String("channel", string(n.Channel)),
	)
	return nil
}
