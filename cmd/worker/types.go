package main

import "context"

// deliveryStore is the idempotency record set the worker dedupes against.
type deliveryStore interface {
	Acquire(ctx context.Context, key, ref string) (bool, error)
	MarkDone(ctx context.Context, key, result string) error
	MarkFailed(ctx context.Context, key, note string) error
}

// deliveryKey namespaces notification ids in the shared idempotency table.
func deliveryKey(notificationID string) string {
	return "notification#" + notificationID
}
