package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	token string
}

func (m *memStore) Get() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *memStore) Set(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *memStore) Clear() error {
	return m.Set("")
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *memStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := &memStore{}
	return NewClient(srv.URL+"/api", store), store
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearer(t *testing.T) {
	var got []string
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, []Plan{})
	})

	_, err := c.GetPlans(context.Background())
	require.NoError(t, err)

	require.NoError(t, store.Set("tok-1"))
	_, err = c.GetPlans(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer tok-1"}, got)
}

func TestClient_401ClearsAndNotifies(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	})
	require.NoError(t, store.Set("stale"))

	var events []SessionExpired
	c.OnSessionExpired(func(ev SessionExpired) {
		_, ok := store.Get()
		assert.False(t, ok, "token must be cleared before listeners run")
		events = append(events, ev)
	})

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var herr *HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "Could not validate credentials", herr.Message)

	_, ok := store.Get()
	assert.False(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, "/auth/me", events[0].Path)
	assert.Equal(t, http.MethodGet, events[0].Method)
}

func TestClient_401WithoutToken(t *testing.T) {
	var headers []string
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
	})

	var events []SessionExpired
	c.OnSessionExpired(func(ev SessionExpired) { events = append(events, ev) })

	_, err := c.GetMyCard(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	require.Len(t, headers, 1)
	assert.Empty(t, headers[0], "no stored token means no Authorization header")
	_, ok := store.Get()
	assert.False(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, "/membership/my-card", events[0].Path)
}

func TestClient_OtherErrorsPassThrough(t *testing.T) {
	var expired int32
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/auth/register":
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"detail": []map[string]string{{"msg": "Name is required"}},
			})
		case strings.HasSuffix(r.URL.Path, "/register"):
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Event is full"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		}
	})
	require.NoError(t, store.Set("tok"))
	c.OnSessionExpired(func(SessionExpired) { atomic.AddInt32(&expired, 1) })

	err := c.RegisterForEvent(context.Background(), "evt001")
	var herr *HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, http.StatusBadRequest, herr.Status)
	assert.Equal(t, "Event is full", herr.Message)
	assert.False(t, errors.Is(err, ErrUnauthorized))

	_, err = c.Register(context.Background(), RegisterRequest{})
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "Name is required", herr.Message)

	_, err = c.GetCommunityStats(context.Background())
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "boom", herr.Message)

	tok, ok := store.Get()
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)
	assert.Zero(t, atomic.LoadInt32(&expired))
}

func TestClient_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	_, err := c.GetPlans(context.Background())
	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "/membership/plans", derr.Path)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, &memStore{})

	_, err := c.GetPlans(context.Background())
	require.Error(t, err)
	var herr *HTTPError
	assert.False(t, errors.As(err, &herr))
}

func TestBatchGetEvents_KeepsOrder(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/events/")
		if id == "missing" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Event not found"})
			return
		}
		writeJSON(w, http.StatusOK, Event{ID: id, Name: "Event " + id})
	})

	ids := []string{"evt003", "missing", "evt001", "evt002", "evt101", "evt102", "evt103"}
	events, err := c.BatchGetEvents(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, events, len(ids))
	for i, id := range ids {
		if id == "missing" {
			assert.Nil(t, events[i])
			continue
		}
		require.NotNil(t, events[i])
		assert.Equal(t, id, events[i].ID)
	}
}

func TestBatchGetEvents_AbortsOn401(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	})

	_, err := c.BatchGetEvents(context.Background(), []string{"evt001", "evt002"})
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestGetOverview(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/membership/plans":
			writeJSON(w, http.StatusOK, []Plan{{ID: "basic"}, {ID: "premium"}})
		case "/api/events":
			assert.Equal(t, "upcoming", r.URL.Query().Get("status_filter"))
			writeJSON(w, http.StatusOK, []Event{{ID: "evt001"}})
		case "/api/membership/stats":
			writeJSON(w, http.StatusOK, MembershipStats{TotalMembers: 3})
		default:
			http.NotFound(w, r)
		}
	})

	ov, err := c.GetOverview(context.Background())
	require.NoError(t, err)
	assert.Len(t, ov.Plans, 2)
	assert.Len(t, ov.Upcoming, 1)
	assert.Equal(t, 3, ov.Stats.TotalMembers)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"Invalid credentials"}`, "Invalid credentials"},
		{`{"detail":[{"msg":"field required"}]}`, "field required"},
		{`{"error":"nope"}`, "nope"},
		{`{"message":"later"}`, "later"},
		{"  plain text \n", "plain text"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorMessage([]byte(tt.body)), tt.body)
	}
}
