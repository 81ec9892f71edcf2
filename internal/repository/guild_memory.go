package repository

import (
	"context"
	"sort"
	"sync"

	"guild-economy-api/internal/model"
)

// MemoryGuildRepository keeps encoded guild documents in process memory.
// Use this for development/testing; nothing survives a restart.
type MemoryGuildRepository struct {
	mu   sync.Mutex
	docs map[string][]byte
	ns   keyspace
}

// NewMemoryGuildRepository creates an empty in-memory repository.
func NewMemoryGuildRepository(namespace string) *MemoryGuildRepository {
	return &MemoryGuildRepository{
		docs: make(map[string][]byte),
		ns:   keyspace(namespace),
	}
}

// Load returns a decoded copy of the stored document.
func (r *MemoryGuildRepository) Load(ctx context.Context, guildID string) (*model.GuildRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.docs[r.ns.key(guildID)]
	if !ok {
		return nil, nil
	}
	return decodeGuild(data)
}

// Save stores an encoded copy of rec.
func (r *MemoryGuildRepository) Save(ctx context.Context, guildID string, rec *model.GuildRecord) error {
	data, err := encodeGuild(rec)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[r.ns.key(guildID)] = data
	return nil
}

// Update applies fn under the repository lock.
func (r *MemoryGuildRepository) Update(ctx context.Context, guildID string, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.ns.key(guildID)
	rec := model.NewGuildRecord()
	data, exists := r.docs[key]
	if exists {
		var err error
		if rec, err = decodeGuild(data); err != nil {
			return err
		}
	}

	save, err := apply(rec, fn)
	if err != nil {
		return err
	}
	if !save && exists {
		return nil
	}

	encoded, err := encodeGuild(rec)
	if err != nil {
		return err
	}
	r.docs[key] = encoded
	return nil
}

// ListGuildIDs returns stored guild ids in sorted order.
func (r *MemoryGuildRepository) ListGuildIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.docs))
	for key := range r.docs {
		if id, ok := r.ns.guildID(key); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// GetStats returns the number of stored guilds.
func (r *MemoryGuildRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return map[string]interface{}{
		"total_guilds": len(r.docs),
	}, nil
}

// Close is a no-op.
func (r *MemoryGuildRepository) Close() error {
	return nil
}

// Ensure MemoryGuildRepository implements GuildRepository
var _ GuildRepository = (*MemoryGuildRepository)(nil)
