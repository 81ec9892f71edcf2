package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"guild-economy-api/internal/model"
)

// dialect holds the backend-specific statements for the guild table.
type dialect struct {
	name        string
	createTable string
	insertEmpty string // create the row if absent, keep it otherwise
	selectDoc   string
	selectLock  string // selectDoc plus a row lock where the backend has one
	updateDoc   string // args: document, updated_at, key
	upsertDoc   string // args: key, document, updated_at
	listKeys    string
	countRows   string
}

// sqlGuildStore implements GuildRepository over database/sql. Update runs in a
// transaction: ensure the row exists, read it (locked), apply fn, write it back.
type sqlGuildStore struct {
	db *sql.DB
	d  dialect
	ns keyspace
	// mu serializes writers for backends without row locks (SQLite).
	mu *sync.Mutex
}

func newSQLGuildStore(ctx context.Context, db *sql.DB, d dialect, namespace string, mu *sync.Mutex) (*sqlGuildStore, error) {
	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &sqlGuildStore{db: db, d: d, ns: keyspace(namespace), mu: mu}, nil
}

func (s *sqlGuildStore) lock() func() {
	if s.mu == nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Load returns the stored document, or nil if none exists.
func (s *sqlGuildStore) Load(ctx context.Context, guildID string) (*model.GuildRecord, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, s.d.selectDoc, s.ns.key(guildID)).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load guild %s: %w", guildID, err)
	}
	return decodeGuild(doc)
}

// Save upserts the document.
func (s *sqlGuildStore) Save(ctx context.Context, guildID string, rec *model.GuildRecord) error {
	doc, err := encodeGuild(rec)
	if err != nil {
		return err
	}

	unlock := s.lock()
	defer unlock()

	if _, err := s.db.ExecContext(ctx, s.d.upsertDoc, s.ns.key(guildID), string(doc), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save guild %s: %w", guildID, err)
	}
	return nil
}

// Update applies fn to the locked row inside a transaction.
func (s *sqlGuildStore) Update(ctx context.Context, guildID string, fn UpdateFunc) error {
	unlock := s.lock()
	defer unlock()

	key := s.ns.key(guildID)
	empty, err := encodeGuild(model.NewGuildRecord())
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.d.insertEmpty, key, string(empty), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to create guild %s: %w", guildID, err)
	}

	var doc []byte
	if err := tx.QueryRowContext(ctx, s.d.selectLock, key).Scan(&doc); err != nil {
		return fmt.Errorf("failed to lock guild %s: %w", guildID, err)
	}
	rec, err := decodeGuild(doc)
	if err != nil {
		return err
	}

	save, err := apply(rec, fn)
	if err != nil {
		return err
	}
	if save {
		updated, err := encodeGuild(rec)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.d.updateDoc, string(updated), time.Now().UTC(), key); err != nil {
			return fmt.Errorf("failed to update guild %s: %w", guildID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListGuildIDs returns every stored guild id.
func (s *sqlGuildStore) ListGuildIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.d.listKeys, s.ns.prefix()+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan guild key: %w", err)
		}
		if id, ok := s.ns.guildID(key); ok {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

// GetStats returns the row count and the backend name.
func (s *sqlGuildStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, s.d.countRows).Scan(&count); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"backend":      s.d.name,
		"total_guilds": count,
	}, nil
}

// Close closes the database connection.
func (s *sqlGuildStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// placeholders rewrites ? markers to $1..$n for PostgreSQL.
func placeholders(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
