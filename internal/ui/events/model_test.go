package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fragmede/trackside/internal/api"
	"github.com/fragmede/trackside/internal/cache"
	"github.com/fragmede/trackside/internal/config"
	"github.com/fragmede/trackside/internal/mockapi"
	"github.com/fragmede/trackside/internal/ui/messages"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.paths = append(r.paths, req.URL.Path)
		r.mu.Unlock()
		next.ServeHTTP(w, req)
	})
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.paths
	r.paths = nil
	return out
}

func newModel(t *testing.T) (Model, *api.Client, *cache.DB, *recorder) {
	t.Helper()
	mock, err := mockapi.New(mockapi.Config{Secret: "test-secret", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	rec := &recorder{}
	srv := httptest.NewServer(rec.wrap(mock.Handler()))
	t.Cleanup(srv.Close)

	db, err := cache.Open(filepath.Join(t.TempDir(), "trackside.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := cache.NewTokenStore(db, nil)
	client := api.NewClient(srv.URL+"/api", store)
	m := New(config.Default(), client, db, func() bool { return false })
	return m, client, db, rec
}

func TestLoadEvents_RefetchesOnlyInvalidatedEvent(t *testing.T) {
	m, client, db, rec := newModel(t)

	upcoming, err := client.GetEvents(context.Background(), api.EventsUpcoming)
	require.NoError(t, err)
	require.NotEmpty(t, upcoming)
	require.NoError(t, db.PutEventList(api.EventsUpcoming, upcoming))
	target := upcoming[0].ID
	require.NoError(t, db.InvalidateEvent(target))
	rec.take()

	msg := m.loadEvents(false)()
	loaded, ok := msg.(messages.EventsLoadedMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, loaded.Err)
	assert.Len(t, loaded.Events, len(upcoming))
	assert.Equal(t, []string{"/api/events/" + target}, rec.take())

	stale, err := db.StaleEventIDs(api.EventsUpcoming, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestLoadEvents_FreshCacheNoRequests(t *testing.T) {
	m, client, db, rec := newModel(t)

	upcoming, err := client.GetEvents(context.Background(), api.EventsUpcoming)
	require.NoError(t, err)
	require.NoError(t, db.PutEventList(api.EventsUpcoming, upcoming))
	rec.take()

	loaded := m.loadEvents(false)().(messages.EventsLoadedMsg)
	assert.Len(t, loaded.Events, len(upcoming))
	assert.Empty(t, rec.take())

	loaded = m.loadEvents(true)().(messages.EventsLoadedMsg)
	assert.Len(t, loaded.Events, len(upcoming))
	assert.Equal(t, []string{"/api/events"}, rec.take())
}
