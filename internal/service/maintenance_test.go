package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-economy-api/pkg/logger"
)

type countingNormalizer struct {
	calls atomic.Int32
}

func (c *countingNormalizer) Normalize(context.Context) (int, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestMaintenanceScheduler_InvalidSchedule(t *testing.T) {
	s := NewMaintenanceScheduler(&countingNormalizer{}, "every tuesday-ish", logger.Discard())
	assert.Error(t, s.Start())
}

func TestMaintenanceScheduler_StartStop(t *testing.T) {
	target := &countingNormalizer{}
	s := NewMaintenanceScheduler(target, "@every 1h", logger.Discard())

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()

	_, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), target.calls.Load())
}
