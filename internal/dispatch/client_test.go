package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay/internal/config"
	"relay/pkg/circuitbreaker"
	"relay/pkg/errors"
	"relay/pkg/logging"
	"relay/pkg/models"
)

func sampleMessage() models.OutboundMessage {
	return models.NewOutboundMessageBuilder().
		WithHeader("monitor-notification-matcher.filing", "req-1", "monitor_email").
		WithCompany(models.CompanyDetails{CompanyNumber: "00006400", CompanyName: "ACME"}).
		WithFiling(models.FilingHistory{Type: "AP01", Description: "Appointment", Date: "2025-02-04"}, false).
		Build()
}

func newClient(t *testing.T, name string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cbConfig := circuitbreaker.DefaultConfig(name)
	return NewClient(config.APIConfig{BaseURL: server.URL, APIKey: "key", Timeout: time.Second}, &cbConfig)
}

func TestSend(t *testing.T) {
	var received models.OutboundMessage
	client := newClient(t, "dispatch-ok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/message-send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "key", r.Header.Get("Authorization"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	})

	ctx := logging.WithRequestID(context.Background(), "req-1")
	require.NoError(t, client.Send(ctx, sampleMessage()))
	assert.Equal(t, sampleMessage(), received)
}

func TestSendFailuresAreNonRetryable(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client := newClient(t, "dispatch-"+http.StatusText(status), func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			})

			err := client.Send(context.Background(), sampleMessage())
			require.Error(t, err)
			assert.True(t, errors.IsNonRetryable(err))
			assert.ErrorIs(t, err, errors.ErrDispatch)
		})
	}
}

func TestSendTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(config.APIConfig{BaseURL: server.URL}, nil)
	err := client.Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.True(t, errors.IsNonRetryable(err))
	assert.Equal(t, "disabled", client.State())
}

func TestSendRejectedWhileOpen(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, "dispatch-open", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 4; i++ {
		err := client.Send(context.Background(), sampleMessage())
		require.Error(t, err)
		assert.True(t, errors.IsNonRetryable(err))
	}
	assert.Equal(t, "open", client.State())
	assert.Equal(t, int32(3), calls.Load())
}
