package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spiffcs/ghaudit/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEndpoint(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestGenerate_RequestShape(t *testing.T) {
	var got generateRequest
	var auth string
	server := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"{\"ok\":true}"}`))
	})

	c := NewClient(Config{URL: server.URL, Model: "tiny", APIKey: "secret"})
	content, err := c.Generate(context.Background(), "system", "user")
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, content)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "tiny", got.Model)
	assert.Equal(t, "system\n\nuser", got.Prompt)
	assert.False(t, got.Stream)
	assert.Equal(t, "json", got.Format)
	assert.Equal(t, 0.0, got.Options.Temperature)
	assert.Equal(t, 4000, got.Options.NumPredict)
}

func TestGenerate_NoAuthHeaderWithoutKey(t *testing.T) {
	var auth string
	server := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"response":"x"}`))
	})

	_, err := NewClient(Config{URL: server.URL}).Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestGenerate_MessageContentFallback(t *testing.T) {
	server := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"from chat"}}`))
	})

	content, err := NewClient(Config{URL: server.URL}).Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "from chat", content)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apperr.Kind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: "nope", wantKind: apperr.KindModelUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, body: "nope", wantKind: apperr.KindModelUnauthorized},
		{name: "server error", status: http.StatusBadGateway, body: "model not loaded", wantKind: apperr.KindModelServiceError},
		{name: "empty body", status: http.StatusOK, body: "", wantKind: apperr.KindModelEmptyResponse},
		{name: "empty completion", status: http.StatusOK, body: `{"response":"  "}`, wantKind: apperr.KindModelEmptyResponse},
		{name: "undecodable body", status: http.StatusOK, body: "<html>", wantKind: apperr.KindModelInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := NewClient(Config{URL: server.URL}).Generate(context.Background(), "s", "u")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestGenerate_ServiceErrorCarriesStatusAndBody(t *testing.T) {
	server := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	})

	_, err := NewClient(Config{URL: server.URL}).Generate(context.Background(), "s", "u")
	e := apperr.As(err)
	assert.Equal(t, apperr.KindModelServiceError, e.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, e.Status)
	assert.Contains(t, e.Message, "model not loaded")
	assert.Equal(t, apperr.GenericAnalysisFailure, e.UserMessage())
}

func TestGenerate_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := NewClient(Config{URL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Generate(context.Background(), "s", "u")
	assert.Equal(t, apperr.KindModelTimeout, apperr.KindOf(err))
}

func TestGenerate_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(Config{URL: url}).Generate(context.Background(), "s", "u")
	assert.Equal(t, apperr.KindModelUnavailable, apperr.KindOf(err))
}

func TestGenerate_CallerCancel(t *testing.T) {
	started := make(chan struct{})
	server := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := NewClient(Config{URL: server.URL}).Generate(ctx, "s", "u")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, apperr.KindCanceled, apperr.KindOf(err))
}
