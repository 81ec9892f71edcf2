package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Empty(ReasonShopEmpty, "no items"))

	assert.ErrorIs(t, err, ErrEmpty)
	assert.ErrorIs(t, err, ErrShopEmpty)
	assert.NotErrorIs(t, err, ErrEmptyInventory)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestIsExpected(t *testing.T) {
	assert.True(t, IsExpected(Empty(ReasonEmptyHistory, "")))
	assert.True(t, IsExpected(CooldownActive("wait", time.Now())))
	assert.False(t, IsExpected(InsufficientFunds("no")))
	assert.False(t, IsExpected(errors.New("plain")))
}

func TestToJSON(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var body struct {
		Success bool `json:"success"`
		Status  bool `json:"status"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Data    string `json:"data"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(CooldownActive("wait", at).ToJSON(), &body))

	assert.False(t, body.Success)
	assert.False(t, body.Status)
	assert.Equal(t, CodeCooldownActive, body.Error.Code)
	assert.Equal(t, "wait", body.Error.Message)
	assert.Equal(t, "2024-01-02T03:04:05Z", body.Error.Data)
}
