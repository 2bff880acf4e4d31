package extend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

const (
	testAPIKey    = "test-key"
	testAPISecret = "test-secret"
)

// testNow is the fixed clock used by clients built in tests.
var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

// newTestClient starts a server for handler and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}

	c := New(testAPIKey, testAPISecret, WithBaseURL(u), WithHTTPClient(srv.Client()))
	c.now = func() time.Time { return testNow }

	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

// fakeAPI is an in-memory stand-in for the virtual card endpoints.
type fakeAPI struct {
	t *testing.T

	mu       sync.Mutex
	cards    map[string]VirtualCard
	seq      int
	requests int
	bodies   []virtualCardBody
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()

	f := &fakeAPI{t: t, cards: map[string]VirtualCard{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /virtualcards", f.create)
	mux.HandleFunc("GET /virtualcards", f.list)
	mux.HandleFunc("GET /virtualcards/{id}", f.get)
	mux.HandleFunc("PUT /virtualcards/{id}", f.update)
	mux.HandleFunc("PUT /virtualcards/{id}/cancel", f.transition(VirtualCardStatusCancelled))
	mux.HandleFunc("PUT /virtualcards/{id}/close", f.transition(VirtualCardStatusClosed))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()

		if r.Header.Get("x-extend-api-key") != testAPIKey ||
			r.Header.Get("Authorization") != basicAuth(testAPIKey, testAPISecret) {
			writeJSON(t, w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
			return
		}

		mux.ServeHTTP(w, r)
	})

	return f, newTestClient(t, handler)
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeAPI) decode(r *http.Request) virtualCardBody {
	var body virtualCardBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		f.t.Errorf("decode request body: %v", err)
	}
	f.bodies = append(f.bodies, body)
	return body
}

func (f *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body := f.decode(r)
	f.seq++

	card := VirtualCard{
		ID:           fmt.Sprintf("vc_%d", f.seq),
		Status:       VirtualCardStatusActive,
		DisplayName:  body.DisplayName,
		BalanceCents: body.BalanceCents,
		LimitCents:   body.BalanceCents,
		CreditCardID: body.CreditCardID,
		Notes:        body.Notes,
		Last4:        "4242",
	}
	if body.Recurs != nil {
		card.Recurs = *body.Recurs
	}
	f.cards[card.ID] = card

	writeJSON(f.t, w, http.StatusOK, virtualCardEnvelope{VirtualCard: card})
}

func (f *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := VirtualCardsList{Pagination: Pagination{NumberOfPages: 1, TotalItems: len(f.cards)}}
	for _, c := range f.cards {
		list.VirtualCards = append(list.VirtualCards, c)
	}

	writeJSON(f.t, w, http.StatusOK, list)
}

func (f *fakeAPI) get(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	card, ok := f.cards[r.PathValue("id")]
	if !ok {
		writeJSON(f.t, w, http.StatusNotFound, errorBody{Error: "Not Found", Message: "virtual card not found"})
		return
	}

	writeJSON(f.t, w, http.StatusOK, virtualCardEnvelope{VirtualCard: card})
}

func (f *fakeAPI) update(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	card, ok := f.cards[r.PathValue("id")]
	if !ok {
		writeJSON(f.t, w, http.StatusNotFound, errorBody{Message: "virtual card not found"})
		return
	}

	body := f.decode(r)
	card.BalanceCents = body.BalanceCents
	if body.DisplayName != "" {
		card.DisplayName = body.DisplayName
	}
	if body.Notes != "" {
		card.Notes = body.Notes
	}
	f.cards[card.ID] = card

	writeJSON(f.t, w, http.StatusOK, virtualCardEnvelope{VirtualCard: card})
}

func (f *fakeAPI) transition(to VirtualCardStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		card, ok := f.cards[r.PathValue("id")]
		if !ok {
			writeJSON(f.t, w, http.StatusNotFound, errorBody{Message: "virtual card not found"})
			return
		}
		if card.Status == VirtualCardStatusClosed {
			writeJSON(f.t, w, http.StatusBadRequest, errorBody{Message: "virtual card is closed"})
			return
		}

		card.Status = to
		f.cards[card.ID] = card

		writeJSON(f.t, w, http.StatusOK, virtualCardEnvelope{VirtualCard: card})
	}
}

func intPtr(i int) *int { return &i }
