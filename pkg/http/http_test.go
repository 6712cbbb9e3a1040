package http

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient(t *testing.T) {
	hc := NewHTTPClient(0, "")
	assert.Equal(t, DefaultUserAgent, hc.UserAgent())
	assert.Zero(t, hc.Timeout())

	hc = NewHTTPClient(3*time.Second, "agent/2")
	assert.Equal(t, "agent/2", hc.UserAgent())
	assert.Equal(t, 3*time.Second, hc.Timeout())
}

func TestHTTPClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(r.Header.Get("User-Agent") + "|" + r.Header.Get("Accept")))
		case "/created":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("created"))
		case "/redirect-loop":
			w.WriteHeader(http.StatusNotModified)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	hc := NewHTTPClient(5*time.Second, "agent/2")

	data, err := hc.Get(context.Background(), server.URL+"/ok", "application/json")
	require.NoError(t, err)
	assert.Equal(t, "agent/2|application/json", string(data))

	data, err = hc.Get(context.Background(), server.URL+"/created", "")
	require.NoError(t, err)
	assert.Equal(t, "created", string(data))

	for _, path := range []string{"/missing", "/redirect-loop"} {
		_, err = hc.Get(context.Background(), server.URL+path, "")
		require.Error(t, err)
		var statusErr *StatusError
		require.True(t, stderrors.As(err, &statusErr))
		assert.Equal(t, server.URL+path, statusErr.URL)
		assert.Contains(t, err.Error(), "unexpected status code")
	}
}

func TestHTTPClient_GetErrors(t *testing.T) {
	hc := NewHTTPClient(time.Second, "")

	_, err := hc.Get(context.Background(), "://bad", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create request")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = hc.Get(ctx, "http://127.0.0.1:1/", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
