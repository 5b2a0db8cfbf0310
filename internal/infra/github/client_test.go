package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/runoshun/cardflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client talking to an httptest server with fast retries.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient("test-token").WithEndpoint(server.URL).WithRetryMaxElapsed(2 * time.Second)
	c.initialInterval = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-token")

	assert.Equal(t, "test-token", client.Token)
	assert.Equal(t, DefaultEndpoint, client.Endpoint)
	assert.Equal(t, DefaultRetryMaxElapsed, client.RetryMaxElapsed)
	require.NotNil(t, client.HTTPClient)
	assert.Equal(t, DefaultTimeout, client.HTTPClient.Timeout)
}

func TestClient_BuildersCopy(t *testing.T) {
	base := NewClient("token")
	custom := &http.Client{Timeout: time.Minute}

	derived := base.WithHTTPClient(custom).WithEndpoint("https://ghe.example.com/api/graphql")

	assert.Same(t, custom, derived.HTTPClient)
	assert.Equal(t, "https://ghe.example.com/api/graphql", derived.Endpoint)
	assert.Equal(t, DefaultEndpoint, base.Endpoint, "base client is unchanged")
	assert.Equal(t, "token", derived.Token)
}

func TestClient_Query_MissingToken(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	c.Token = ""

	err := c.Query(context.Background(), "query { viewer { login } }", nil, nil)

	assert.ErrorIs(t, err, domain.ErrMissingToken)
	assert.Zero(t, calls.Load())
}

func TestClient_Query_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req graphQLRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "query { viewer { login } }", req.Query)
		assert.Equal(t, "x", req.Variables["v"])

		writeJSON(w, map[string]any{"data": map[string]any{"viewer": map[string]any{"login": "octocat"}}})
	})

	var out struct {
		Viewer struct {
			Login string `json:"login"`
		} `json:"viewer"`
	}
	err := c.Query(context.Background(), "query { viewer { login } }", map[string]any{"v": "x"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "octocat", out.Viewer.Login)
}

func TestClient_Query_GraphQLErrorsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, map[string]any{"errors": []map[string]any{
			{"type": "FORBIDDEN", "message": "Resource not accessible", "path": []any{"repository", 0}},
		}})
	})

	err := c.Query(context.Background(), "query {}", nil, nil)

	var gqlErrs GraphQLErrors
	require.ErrorAs(t, err, &gqlErrs)
	assert.Equal(t, "FORBIDDEN", gqlErrs[0].Type)
	assert.Contains(t, err.Error(), "Resource not accessible")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RetriesRateLimited(t *testing.T) {
	tests := []struct {
		name    string
		limited func(w http.ResponseWriter)
	}{
		{"429", func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"403 with exhausted quota", func(w http.ResponseWriter) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
		}},
		{"graphql RATE_LIMITED", func(w http.ResponseWriter) {
			writeJSON(w, map[string]any{"errors": []map[string]any{{"type": "RATE_LIMITED", "message": "slow down"}}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					tt.limited(w)
					return
				}
				writeJSON(w, map[string]any{"data": map[string]any{}})
			})

			// Mutations are retried too: a rate-limited request was never processed.
			err := c.Mutate(context.Background(), "mutation {}", nil, nil)

			require.NoError(t, err)
			assert.Equal(t, int32(2), calls.Load())
		})
	}
}

func TestClient_ServerErrorRetriedOnlyForQueries(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			writeJSON(w, map[string]any{"data": map[string]any{}})
		})

		require.NoError(t, c.Query(context.Background(), "query {}", nil, nil))
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("mutation", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		})

		err := c.Mutate(context.Background(), "mutation {}", nil, nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	err := c.Query(context.Background(), "query {}", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Bad credentials")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RetriesDisabled(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c = c.WithRetryMaxElapsed(0)

	err := c.Query(context.Background(), "query {}", nil, nil)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Query(ctx, "query {}", nil, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, ErrRateLimited))
}
