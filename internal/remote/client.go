package remote

import (
	"context"

	"github.com/pkg/errors"
)

// Collection names understood by the remote store.
const (
	CollectionProducts = "products"
	CollectionSettings = "settings"
	CollectionOrders   = "orders"
	CollectionUsers    = "users"
)

// ChannelOrders is the one named realtime stream, scoped to the orders
// collection.
const ChannelOrders = "orders.activity"

var (
	ErrNotConfigured     = errors.New("remote store not configured")
	ErrUnknownCollection = errors.New("unknown remote collection")
)

// Client is the opaque interface to the hosted backend. Records cross the
// boundary as JSON: a JSON array for list collections, a JSON object for the
// settings singleton. All operations are best-effort from the caller's point
// of view; the StateStore never lets a remote failure roll back a local
// mutation.
type Client interface {
	// Configured reports whether real credentials were detected at startup.
	// When false every call returns ErrNotConfigured and the service runs in
	// local-cache-only mode for the session.
	Configured() bool

	// FetchCollection reads the authoritative snapshot of a collection.
	FetchCollection(ctx context.Context, name string) ([]byte, error)

	// ReplaceCollection deletes the existing rows of the collection and
	// inserts the given records.
	ReplaceCollection(ctx context.Context, name string, records []byte) error

	// InsertRecord appends a single record.
	InsertRecord(ctx context.Context, name string, record []byte) error

	// UpdateRecord replaces a single record matched by identifier.
	UpdateRecord(ctx context.Context, name string, record []byte) error

	// Subscribe opens the long-lived push channel. Callbacks run sequentially;
	// events delivered while unsubscribed are lost, there is no replay.
	Subscribe(channel string, onInsert, onUpdate func(record []byte)) error
}
