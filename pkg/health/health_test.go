package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtual-therapy-demo/backend/pkg/logger"
)

func newTestChecker() *Checker {
	return NewChecker(logger.New(logger.DefaultConfig()), time.Minute)
}

func TestAPICheckReportsUpstreamUp(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	checker := newTestChecker()
	checker.RegisterAPICheck("local-model", upstream.URL, upstream.Client())
	checker.RunChecks()

	status := checker.GetStatus()
	require.Contains(t, status, "api-local-model")
	assert.Equal(t, StatusUp, status["api-local-model"].Status)
}

func TestAPICheckDegradedOnErrorStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	checker := newTestChecker()
	checker.RegisterAPICheck("local-model", upstream.URL, upstream.Client())
	checker.RunChecks()

	status := checker.GetStatus()
	require.Contains(t, status, "api-local-model")
	assert.Equal(t, StatusDegraded, status["api-local-model"].Status)

	// An unhealthy model endpoint is not critical.
	assert.True(t, checker.IsSystemHealthy())
}

func TestRedisCheckDegradedOnFailure(t *testing.T) {
	checker := newTestChecker()
	checker.RegisterRedisCheck(func() error { return errors.New("connection refused") })
	checker.RunChecks()

	status := checker.GetStatus()
	require.Contains(t, status, "redis")
	assert.Equal(t, StatusDegraded, status["redis"].Status)
	assert.True(t, checker.IsSystemHealthy())
}

func TestDatabaseCheckFailureIsCritical(t *testing.T) {
	checker := newTestChecker()
	checker.RegisterDatabaseCheck(func() error { return errors.New("dial tcp: connection refused") })
	checker.RunChecks()

	assert.False(t, checker.IsSystemHealthy())

	status := checker.GetStatus()
	assert.Equal(t, StatusDown, status["database"].Status)
}
