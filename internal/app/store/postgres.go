package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hubble/internal/app/dm"
	"hubble/internal/app/room"
)

// queryTimeout bounds every store query so a slow database can never stall
// a cleanup path that waits on a save.
const queryTimeout = 5 * time.Second

// Postgres persists rooms, messages, and direct messages in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// LoadRooms returns every persisted room record.
func (p *Postgres) LoadRooms(ctx context.Context) ([]room.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx, `
		SELECT name, owner, created_at, locked, password, score, meta, banned
		FROM rooms`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []room.Record
	for rows.Next() {
		var rec room.Record
		if err := rows.Scan(&rec.Name, &rec.Owner, &rec.CreatedAt, &rec.Locked,
			&rec.Password, &rec.Score, &rec.Meta, &rec.Banned); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveRoom upserts one room record.
func (p *Postgres) SaveRoom(ctx context.Context, rec room.Record) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `
		INSERT INTO rooms (name, owner, created_at, locked, password, score, meta, banned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			owner = EXCLUDED.owner,
			locked = EXCLUDED.locked,
			password = EXCLUDED.password,
			score = EXCLUDED.score,
			meta = EXCLUDED.meta,
			banned = EXCLUDED.banned`,
		rec.Name, rec.Owner, rec.CreatedAt, rec.Locked, rec.Password, rec.Score, rec.Meta, rec.Banned)
	return err
}

// DeleteRoom removes one room record.
func (p *Postgres) DeleteRoom(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `DELETE FROM rooms WHERE name = $1`, name)
	return err
}

// SaveMessage upserts one room message. Edits reuse the same ID, so the
// upsert keeps the persisted copy current.
func (p *Postgres) SaveMessage(ctx context.Context, rec MessageRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `
		INSERT INTO messages (id, room, author, body, kind, edited, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			body = EXCLUDED.body,
			edited = EXCLUDED.edited`,
		rec.ID, rec.Room, rec.Author, rec.Body, rec.Kind, rec.Edited, rec.CreatedAt)
	return err
}

// DeleteMessage removes one room message.
func (p *Postgres) DeleteMessage(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}

// SaveDirectMessage appends one direct message under its canonical pair key.
func (p *Postgres) SaveDirectMessage(ctx context.Context, msg dm.DirectMessage) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `
		INSERT INTO direct_messages (id, pair_key, sender, recipient, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		msg.ID, dm.PairKey(msg.From, msg.To), msg.From, msg.To, msg.Body, msg.Time)
	return err
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
