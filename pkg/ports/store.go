package ports

import (
	"context"
	"time"

	"github.com/aretw0/quill/pkg/domain"
)

// KeyValueStore is the small cache-like service used by the handlers.
type KeyValueStore interface {
	// Set stores value under key. A zero ttl means no expiration.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key, or domain.ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying connection.
	Close() error
}

// UserRepository persists users.
type UserRepository interface {
	AddUser(ctx context.Context, name string) (int64, error)
	QueryUsers(ctx context.Context, name string) ([]domain.User, error)
	UpdateUser(ctx context.Context, id int64, name string) (int64, error)
	DeleteUser(ctx context.Context, id int64) (int64, error)
}

// InboxRepository persists received emails.
type InboxRepository interface {
	InsertInbox(ctx context.Context, msg domain.InboxMessage) (int64, error)
	ListInbox(ctx context.Context) ([]domain.InboxMessage, error)
	DeleteAllInbox(ctx context.Context) (int64, error)
}
