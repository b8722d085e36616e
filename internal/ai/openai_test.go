package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{
		Endpoint: srv.URL,
		APIKey:   "test-key",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	c.online = func() bool { return true }
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return c
}

func TestClient_Complete(t *testing.T) {
	var gotAuth string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"choices":[{"message":{"content":"  Hello there.  "}}],"usage":{"prompt_tokens":12,"completion_tokens":4}}`))
	})

	out, err := c.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "Hello there." {
		t.Errorf("Complete() = %q, want trimmed reply", out)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer credential", gotAuth)
	}
}

func TestClient_Preconditions(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("precondition failure still reached the network")
	})

	t.Run("offline", func(t *testing.T) {
		offline := *c
		offline.online = func() bool { return false }
		_, err := offline.Complete(context.Background(), "hi")
		if !IsKind(err, KindNetworkOffline) {
			t.Errorf("Complete() error = %v, want KindNetworkOffline", err)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		noKey := *c
		noKey.apiKey = ""
		_, err := noKey.Complete(context.Background(), "hi")
		if !IsKind(err, KindCredentialMissing) {
			t.Errorf("Complete() error = %v, want KindCredentialMissing", err)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := c.Complete(context.Background(), "   ")
		if !IsKind(err, KindEmptyRequest) {
			t.Errorf("Complete() error = %v, want KindEmptyRequest", err)
		}
	})
}

func TestClient_StatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantKind  Kind
		wantCalls int
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, KindAuth, 1},
		{"rate limited", http.StatusTooManyRequests, `{}`, KindUpstreamRateLimited, 1},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad model"}}`, KindBadRequest, 1},
		{"server error retried", http.StatusInternalServerError, `{}`, KindUpstreamUnavailable, 3},
		{"bad gateway retried", http.StatusBadGateway, `{}`, KindUpstreamUnavailable, 3},
		{"unavailable retried", http.StatusServiceUnavailable, `{}`, KindUpstreamUnavailable, 3},
		{"unexpected status", http.StatusNotFound, `{}`, KindService, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Complete(context.Background(), "hi")
			if !IsKind(err, tt.wantKind) {
				t.Fatalf("Complete() error = %v, want kind %v", err, tt.wantKind)
			}
			if calls != tt.wantCalls {
				t.Errorf("server saw %d requests, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestClient_BadRequestCarriesUpstreamMessage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"model is deprecated"}}`))
	})

	_, err := c.Complete(context.Background(), "hi")
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("Complete() error = %v, want *Error", err)
	}
	if aerr.Message != "model is deprecated" {
		t.Errorf("Error.Message = %q, want upstream detail", aerr.Message)
	}
}

func TestClient_RecoversAfterServerError(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"finally"}}]}`))
	})

	out, err := c.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "finally" || calls != 3 {
		t.Errorf("Complete() = %q after %d calls, want \"finally\" after 3", out, calls)
	}
}

func TestClient_EmptyResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"choices":`},
		{"no choices", `{"choices":[]}`},
		{"whitespace content", `{"choices":[{"message":{"content":"   "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := c.Complete(context.Background(), "hi")
			if !IsKind(err, KindEmptyResponse) {
				t.Errorf("Complete() error = %v, want KindEmptyResponse", err)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and
		// cancels the request context; otherwise srv.Close hangs in Cleanup.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})
	c.timeout = 20 * time.Millisecond
	c.policy = RetryPolicy{MaxAttempts: 1}

	_, err := c.Complete(context.Background(), "hi")
	if !IsKind(err, KindTimeout) {
		t.Errorf("Complete() error = %v, want KindTimeout", err)
	}
}
