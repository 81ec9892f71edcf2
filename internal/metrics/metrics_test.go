package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-economy-api/pkg/apierror"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "insufficient_funds", Outcome(apierror.InsufficientFunds("no")))
	assert.Equal(t, "shop_empty", Outcome(apierror.Empty(apierror.ReasonShopEmpty, "empty")))
	assert.Equal(t, "error", Outcome(errors.New("disk on fire")))
}

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(ledgerOperations.WithLabelValues("add", "ok"))
	RecordOperation("add", nil)
	RecordOperation("add", nil)
	assert.Equal(t, before+2, testutil.ToFloat64(ledgerOperations.WithLabelValues("add", "ok")))
}

func TestRecordReward(t *testing.T) {
	before := testutil.ToFloat64(rewardAmount.WithLabelValues("daily"))
	RecordReward("daily", 150)
	assert.Equal(t, before+150, testutil.ToFloat64(rewardAmount.WithLabelValues("daily")))
}

func TestHandler(t *testing.T) {
	RecordHTTP(http.MethodGet, "/api/v1/health", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "economy_http_requests_total")
}
