package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-economy-api/internal/config"
	"guild-economy-api/pkg/logger"
)

type fakeStore struct {
	closed bool
}

func (s *fakeStore) Normalize(ctx context.Context) (int, error) { return 0, nil }

func (s *fakeStore) Close() error {
	s.closed = true
	return nil
}

func TestStartMaintenance(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		store := &fakeStore{}
		scheduler, err := startMaintenance(store, config.MaintenanceConfig{Enabled: false}, logger.Discard())
		require.NoError(t, err)
		assert.Nil(t, scheduler)
		assert.False(t, store.closed)
	})

	t.Run("valid schedule", func(t *testing.T) {
		store := &fakeStore{}
		scheduler, err := startMaintenance(store, config.MaintenanceConfig{Enabled: true, Schedule: "@every 1h"}, logger.Discard())
		require.NoError(t, err)
		require.NotNil(t, scheduler)
		scheduler.Stop()
		assert.False(t, store.closed)
	})

	t.Run("invalid schedule closes the store", func(t *testing.T) {
		store := &fakeStore{}
		scheduler, err := startMaintenance(store, config.MaintenanceConfig{Enabled: true, Schedule: "not a schedule"}, logger.Discard())
		assert.Error(t, err)
		assert.Nil(t, scheduler)
		assert.True(t, store.closed)
	})
}
