package store

import "context"

// ListStore is the append-only list API the relay persists into. Push
// appends at the tail, PushHead prepends, Range reads the whole list in
// stored order, RemoveOne deletes the first element byte-equal to value and
// reports whether anything was removed.
type ListStore interface {
	Push(ctx context.Context, key, value string) error
	PushHead(ctx context.Context, key, value string) error
	Range(ctx context.Context, key string) ([]string, error)
	RemoveOne(ctx context.Context, key, value string) (bool, error)
	Ping(ctx context.Context) error
}
