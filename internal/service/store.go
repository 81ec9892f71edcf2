package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/model"
	"guild-economy-api/internal/repository"
	"guild-economy-api/pkg/apierror"
	"guild-economy-api/pkg/logger"
)

// GuildStore is the only path to persisted guild state. It materializes guilds
// and users lazily and never caches a document between calls.
type GuildStore struct {
	repo repository.GuildRepository
	log  *logrus.Entry
}

// NewGuildStore creates a store over repo.
func NewGuildStore(repo repository.GuildRepository, log logrus.FieldLogger) *GuildStore {
	return &GuildStore{
		repo: repo,
		log:  logger.Component(log, "GuildStore"),
	}
}

// Get returns the guild document, creating and persisting an empty one on first access.
func (s *GuildStore) Get(ctx context.Context, guildID string) (*model.GuildRecord, error) {
	rec, err := s.repo.Load(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		rec.Normalize()
		return rec, nil
	}

	err = s.repo.Update(ctx, guildID, func(r *model.GuildRecord) error {
		r.Normalize()
		rec = r
		return repository.ErrSkipSave
	})
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Created guild %s", guildID)
	return rec, nil
}

// Put replaces the stored guild document.
func (s *GuildStore) Put(ctx context.Context, guildID string, rec *model.GuildRecord) error {
	return s.repo.Save(ctx, guildID, rec)
}

// EnsureUser returns the user record, creating and persisting a zero record if needed.
func (s *GuildStore) EnsureUser(ctx context.Context, guildID, userID string) (*model.UserRecord, error) {
	var user *model.UserRecord
	err := s.Update(ctx, guildID, func(rec *model.GuildRecord) error {
		u, created := rec.EnsureUser(userID)
		user = u
		if !created {
			return repository.ErrSkipSave
		}
		s.log.Debugf("Created user %s in guild %s", userID, guildID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update runs fn against the normalized guild document as one atomic step.
func (s *GuildStore) Update(ctx context.Context, guildID string, fn repository.UpdateFunc) error {
	return s.repo.Update(ctx, guildID, func(rec *model.GuildRecord) error {
		rec.Normalize()
		return fn(rec)
	})
}

// UpdateUser runs fn against one user, creating the user first if needed.
// fn must leave the document untouched when it returns an error. A ledger
// outcome error (*apierror.Error) for a just-created user still persists the
// new zero record before the error is returned.
func (s *GuildStore) UpdateUser(ctx context.Context, guildID, userID string, fn func(g *model.GuildRecord, u *model.UserRecord) error) error {
	var outcome error
	err := s.Update(ctx, guildID, func(rec *model.GuildRecord) error {
		outcome = nil
		user, created := rec.EnsureUser(userID)
		err := fn(rec, user)
		if err == nil {
			return nil
		}
		var apiErr *apierror.Error
		if created && errors.As(err, &apiErr) {
			outcome = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	return outcome
}

// NormalizeAll rewrites every stored guild that needed repair and reports how many changed.
func (s *GuildStore) NormalizeAll(ctx context.Context) (int, error) {
	ids, err := s.repo.ListGuildIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list guilds: %w", err)
	}

	changed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		dirty := false
		err := s.repo.Update(ctx, id, func(rec *model.GuildRecord) error {
			dirty = false
			if !rec.Normalize() {
				return repository.ErrSkipSave
			}
			dirty = true
			return nil
		})
		if err != nil {
			return changed, fmt.Errorf("failed to normalize guild %s: %w", id, err)
		}
		if dirty {
			changed++
		}
	}
	return changed, nil
}

// Stats returns repository statistics.
func (s *GuildStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	return s.repo.GetStats(ctx)
}
