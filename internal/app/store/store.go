/*
Package store defines the coordinator's persistence boundary.

Persistence is a best-effort durability aid, never a dependency of the
in-memory state: every write is asynchronous from the caller's point of view
and failures are logged, not surfaced. The default implementation is a no-op,
so the coordinator runs unchanged without a database.
*/
package store

import (
	"context"
	"time"

	"hubble/internal/app/dm"
	"hubble/internal/app/room"
)

// MessageRecord is the persisted form of a room message.
type MessageRecord struct {
	ID        string
	Room      string
	Author    string
	Body      string
	Kind      string
	Edited    bool
	CreatedAt time.Time
}

// Store is the pluggable persistence capability consumed by the hub.
type Store interface {
	// LoadRooms returns every persisted room record, called once at startup.
	LoadRooms(ctx context.Context) ([]room.Record, error)

	// SaveRoom upserts one room record.
	SaveRoom(ctx context.Context, rec room.Record) error

	// DeleteRoom removes one room record.
	DeleteRoom(ctx context.Context, name string) error

	// SaveMessage upserts one room message.
	SaveMessage(ctx context.Context, rec MessageRecord) error

	// DeleteMessage removes one room message.
	DeleteMessage(ctx context.Context, id string) error

	// SaveDirectMessage appends one direct message.
	SaveDirectMessage(ctx context.Context, msg dm.DirectMessage) error

	// Close releases the store's resources.
	Close()
}

// Nop is the default Store: it remembers nothing and never fails.
type Nop struct{}

// NewNop returns the no-op store.
func NewNop() Nop { return Nop{} }

func (Nop) LoadRooms(context.Context) ([]room.Record, error)       { return nil, nil }
func (Nop) SaveRoom(context.Context, room.Record) error            { return nil }
func (Nop) DeleteRoom(context.Context, string) error               { return nil }
func (Nop) SaveMessage(context.Context, MessageRecord) error       { return nil }
func (Nop) DeleteMessage(context.Context, string) error            { return nil }
func (Nop) SaveDirectMessage(context.Context, dm.DirectMessage) error { return nil }
func (Nop) Close()                                                 {}
