package extend

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_Headers(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-extend-api-key"); got != testAPIKey {
			t.Errorf("x-extend-api-key = %q, want %q", got, testAPIKey)
		}

		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("test-key:test-secret"))
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Errorf("Authorization = %q, want %q", got, wantAuth)
		}
		if got := r.Header.Get("Accept"); got != APIVersion {
			t.Errorf("Accept = %q, want %q", got, APIVersion)
		}
		if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "extend-go/") {
			t.Errorf("User-Agent = %q, want extend-go/ prefix", got)
		}

		switch r.Method {
		case http.MethodGet:
			if ct := r.Header.Get("Content-Type"); ct != "" {
				t.Errorf("GET Content-Type = %q, want none", ct)
			}
		default:
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("%s Content-Type = %q, want application/json", r.Method, ct)
			}
		}

		writeJSON(t, w, http.StatusOK, virtualCardEnvelope{VirtualCard: VirtualCard{ID: "vc_1"}})
	}))

	ctx := context.Background()
	if _, err := c.VirtualCards.Get(ctx, "vc_1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := c.VirtualCards.Cancel(ctx, "vc_1"); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
}

func TestClient_WithUserAgent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "my-app/1.0" {
			t.Errorf("User-Agent = %q, want my-app/1.0", got)
		}
		writeJSON(t, w, http.StatusOK, CreditCardsList{})
	}))
	WithUserAgent("my-app/1.0")(c)

	if _, err := c.CreditCards.List(context.Background(), ListCreditCardsParams{}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
}

func TestClient_resolve(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		path   string
		params url.Values
		want   string
	}{
		{
			name: "root base",
			base: "https://apiv2.paywithextend.com/",
			path: "virtualcards",
			want: "https://apiv2.paywithextend.com/virtualcards",
		},
		{
			name: "base without trailing slash",
			base: "https://example.com/proxy",
			path: "virtualcards/vc_1/cancel",
			want: "https://example.com/proxy/virtualcards/vc_1/cancel",
		},
		{
			name: "leading slash stays under base path",
			base: "https://example.com/proxy/",
			path: "/transactions",
			want: "https://example.com/proxy/transactions",
		},
		{
			name:   "query",
			base:   "https://apiv2.paywithextend.com/",
			path:   "creditcards",
			params: url.Values{"statuses": {"ACTIVE"}},
			want:   "https://apiv2.paywithextend.com/creditcards?statuses=ACTIVE",
		},
		{
			name: "escaped id",
			base: "https://apiv2.paywithextend.com/",
			path: cardPath("a/b", ""),
			want: "https://apiv2.paywithextend.com/virtualcards/a%2Fb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, _ := url.Parse(tt.base)
			c := New("k", "s", WithBaseURL(base))

			u, err := c.resolve(tt.path, tt.params)
			if err != nil {
				t.Fatalf("resolve() error = %v", err)
			}
			if u.String() != tt.want {
				t.Errorf("resolve() = %s, want %s", u, tt.want)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New("k", "s")
	if c.BaseURL().String() != ProductionURL {
		t.Errorf("BaseURL = %s, want %s", c.BaseURL(), ProductionURL)
	}
	if c.httpClient.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", c.httpClient.Timeout)
	}

	stage := New("k", "s", WithStage())
	if stage.BaseURL().String() != StageURL {
		t.Errorf("BaseURL = %s, want %s", stage.BaseURL(), StageURL)
	}
}

func TestClient_doJSON_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantIs     []error
		wantStatus int
		wantMsg    string
	}{
		{
			name: "not found with message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"Not Found","message":"no such card"}`))
			},
			wantIs:     []error{ErrStatus},
			wantStatus: http.StatusNotFound,
			wantMsg:    "no such card",
		},
		{
			name: "error field only",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"balance too high"}`))
			},
			wantIs:     []error{ErrStatus},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "balance too high",
		},
		{
			name: "plain text body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream down", http.StatusBadGateway)
			},
			wantIs:     []error{ErrStatus},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "upstream down",
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantIs:     []error{ErrStatus, ErrRateLimit},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"virtualCard": {`))
			},
			wantIs: []error{ErrDecode},
		},
		{
			name: "empty success body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			wantIs: []error{ErrDecode},
		},
		{
			name: "empty object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			},
			wantIs: []error{ErrDecode},
		},
		{
			name: "wrong envelope key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"card": {"id": "vc_1"}}`))
			},
			wantIs: []error{ErrDecode},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)

			_, err := c.VirtualCards.Get(context.Background(), "vc_1")
			if err == nil {
				t.Fatal("Get() error = nil")
			}
			for _, want := range tt.wantIs {
				if !errors.Is(err, want) {
					t.Errorf("error %v does not match %v", err, want)
				}
			}

			if tt.wantStatus == 0 {
				return
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not an *APIError", err)
			}
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.wantStatus)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestClient_RateLimit_RetryAfter(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.Transactions.Get(context.Background(), "txn_1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an *APIError", err)
	}
	if apiErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", apiErr.RetryAfter)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d calls, want exactly 1", n)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u, _ := url.Parse(srv.URL)
	srv.Close()

	c := New("k", "s", WithBaseURL(u))

	_, err := c.CreditCards.List(context.Background(), ListCreditCardsParams{})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("List() error = %v, want ErrTransport", err)
	}
	if errors.Is(err, ErrStatus) {
		t.Errorf("transport error also matches ErrStatus: %v", err)
	}
}

func TestClient_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.VirtualCards.Get(ctx, "vc_1")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Get() error = %v, want ErrTransport", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Get() error = %v, want context.DeadlineExceeded in chain", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		header      string
		want        time.Duration
		wantErr     bool
		errContains string
	}{
		{
			name:   "seconds",
			header: "120",
			want:   2 * time.Minute,
		},
		{
			name:   "zero seconds",
			header: "0",
			want:   0,
		},
		{
			name:   "http date in the future",
			header: "Mon, 01 Jan 2024 12:00:30 GMT",
			want:   30 * time.Second,
		},
		{
			name:   "http date in the past",
			header: "Mon, 01 Jan 2024 11:00:00 GMT",
			want:   0,
		},
		{
			name:        "empty header",
			header:      "",
			wantErr:     true,
			errContains: "missing Retry-After header",
		},
		{
			name:        "negative seconds",
			header:      "-5",
			wantErr:     true,
			errContains: "invalid Retry-After header",
		},
		{
			name:        "not a number or date",
			header:      "soon",
			wantErr:     true,
			errContains: "invalid Retry-After header",
		},
		{
			name:        "float",
			header:      "1.5",
			wantErr:     true,
			errContains: "invalid Retry-After header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRetryAfter(tt.header, now)

			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRetryAfter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("parseRetryAfter() error = %v, should contain %q", err, tt.errContains)
				}
				return
			}
			if got != tt.want {
				t.Errorf("parseRetryAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}
