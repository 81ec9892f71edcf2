package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"guild-economy-api/internal/model"
)

// ErrSkipSave may be returned by an UpdateFunc to end the update without
// writing. Update itself then returns nil.
var ErrSkipSave = errors.New("skip save")

// ErrConflict is returned when an optimistic update keeps losing races.
var ErrConflict = errors.New("guild update conflict")

// UpdateFunc mutates a guild document in place.
type UpdateFunc func(rec *model.GuildRecord) error

// GuildRepository stores one economy document per guild. Every backend makes
// Update atomic with respect to other Load/Save/Update calls on the same guild.
type GuildRepository interface {
	// Load returns the stored document, or nil if the guild has none.
	Load(ctx context.Context, guildID string) (*model.GuildRecord, error)

	// Save replaces the stored document.
	Save(ctx context.Context, guildID string, rec *model.GuildRecord) error

	// Update loads the document (an empty one if absent), applies fn and saves
	// the result as one atomic step.
	Update(ctx context.Context, guildID string, fn UpdateFunc) error

	// ListGuildIDs returns every guild with a stored document.
	ListGuildIDs(ctx context.Context) ([]string, error)

	// GetStats returns backend statistics for the admin endpoint.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

// keyspace maps guild ids to storage keys ("economy-<guildID>").
type keyspace string

func (k keyspace) key(guildID string) string {
	return string(k) + "-" + guildID
}

func (k keyspace) prefix() string {
	return string(k) + "-"
}

func (k keyspace) guildID(key string) (string, bool) {
	if !strings.HasPrefix(key, k.prefix()) {
		return "", false
	}
	return strings.TrimPrefix(key, k.prefix()), true
}

func encodeGuild(rec *model.GuildRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode guild: %w", err)
	}
	return data, nil
}

func decodeGuild(data []byte) (*model.GuildRecord, error) {
	rec := model.NewGuildRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to decode guild: %w", err)
	}
	if rec.Users == nil {
		rec.Users = []*model.UserRecord{}
	}
	if rec.Shop == nil {
		rec.Shop = []*model.ShopItem{}
	}
	return rec, nil
}

// apply runs fn and reports whether the result should be written.
func apply(rec *model.GuildRecord, fn UpdateFunc) (bool, error) {
	if err := fn(rec); err != nil {
		if errors.Is(err, ErrSkipSave) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
