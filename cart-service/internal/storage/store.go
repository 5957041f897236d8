package storage

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("store is closed")

// Store is the key/value persistence boundary for serialized carts.
// Read reports ok=false when the key is absent.
type Store interface {
	Read(ctx context.Context, key string) (value []byte, ok bool, err error)
	Write(ctx context.Context, key string, value []byte) error
}

// CartKey is the key a session's cart lives under.
func CartKey(sessionID string) string {
	return "cart:" + sessionID
}
