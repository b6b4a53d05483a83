package checkpoint

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no checkpoint exists under the key.
var ErrNotFound = errors.New("checkpoint: not found")

// Store persists opaque checkpoint blobs by key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// NopStore keeps nothing. Every Load reports ErrNotFound.
type NopStore struct{}

func (NopStore) Load(context.Context, string) ([]byte, error) { return nil, ErrNotFound }
func (NopStore) Save(context.Context, string, []byte) error   { return nil }
func (NopStore) Delete(context.Context, string) error         { return nil }
