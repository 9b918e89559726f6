package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/retry"
)

func testClient(timeout time.Duration) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(&http.Client{}, Options{
		Timeout: timeout,
		Retry:   retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond},
	}, logger)
}

func TestGetJSON_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, AcceptJSON, r.Header.Get("Accept"))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := testClient(time.Second).GetJSON(context.Background(), "test", srv.URL, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_FailsAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out map[string]any
	err := testClient(time.Second).GetJSON(context.Background(), "test", srv.URL, &out)
	require.Error(t, err)

	var httpErr *model.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetText_TimeoutIsAFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := testClient(20*time.Millisecond).GetText(context.Background(), "test", srv.URL, AcceptXML)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "timed out attempts are retried")
}

func TestPostJSON_SendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"keywords":"go","location":"DE"}`, string(body))
		w.Write([]byte(`{"totalCount": 2}`))
	}))
	defer srv.Close()

	var out struct {
		TotalCount int `json:"totalCount"`
	}
	payload := map[string]string{"keywords": "go", "location": "DE"}
	require.NoError(t, testClient(time.Second).PostJSON(context.Background(), "test", srv.URL, payload, &out))
	assert.Equal(t, 2, out.TotalCount)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2015, 10, 21, 7, 27, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"120", 120 * time.Second},
		{"", 0},
		{"-5", 0},
		{"soon", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", time.Minute},
		{"Wednesday, 21-Oct-15 07:27:30 GMT", 30 * time.Second},
		{"Wed, 21 Oct 2015 07:00:00 GMT", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseRetryAfter(tt.value, now), "Retry-After %q", tt.value)
	}
}
