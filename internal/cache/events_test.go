package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/trackside/internal/api"
)

func TestEventList_RoundTrip(t *testing.T) {
	db, _ := openTestDB(t)

	events := []api.Event{
		{ID: "evt001", Name: "Summer Athletics Championship", MaxCapacity: 200},
		{ID: "evt002", Name: "Youth Development Program", MemberOnly: true},
	}
	require.NoError(t, db.PutEventList(api.EventsUpcoming, events))

	got, fresh, err := db.GetEvents(api.EventsUpcoming, time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
	require.Len(t, got, 2)
	assert.Equal(t, "evt001", got[0].ID)
	assert.True(t, got[1].MemberOnly)

	_, fresh, err = db.GetEvents(api.EventsUpcoming, 0)
	require.NoError(t, err)
	assert.False(t, fresh, "zero TTL is never fresh")

	require.NoError(t, db.InvalidateEventList(api.EventsUpcoming))
	got, _, err = db.GetEvents(api.EventsUpcoming, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvalidateEvent_ReportsStale(t *testing.T) {
	db, _ := openTestDB(t)
	require.NoError(t, db.PutEventList(api.EventsAll, []api.Event{
		{ID: "evt001", Registrations: 145},
		{ID: "evt002", Registrations: 32},
		{ID: "evt003", Registrations: 78},
	}))

	stale, err := db.StaleEventIDs(api.EventsAll, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, stale)

	require.NoError(t, db.InvalidateEvent("evt002"))
	stale, err = db.StaleEventIDs(api.EventsAll, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []string{"evt002"}, stale)

	got, fresh, err := db.GetEvents(api.EventsAll, time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Len(t, got, 2)

	require.NoError(t, db.PutEvent(&api.Event{ID: "evt002", Registrations: 33}))
	stale, err = db.StaleEventIDs(api.EventsAll, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, stale)

	stale, err = db.StaleEventIDs(api.EventsUpcoming, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, stale, "no list cached for the filter")
}

func TestGetEvent_Miss(t *testing.T) {
	db, _ := openTestDB(t)
	ev, fresh, err := db.GetEvent("nope", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, ev)
	assert.False(t, fresh)
}

func TestPlans_ReplaceKeepsOrder(t *testing.T) {
	db, _ := openTestDB(t)

	require.NoError(t, db.PutPlans([]api.Plan{{ID: "old", Name: "Old"}}))
	require.NoError(t, db.PutPlans([]api.Plan{
		{ID: "basic", Name: "Basic Membership", Price: 50},
		{ID: "premium", Name: "Premium Membership", Price: 120, Popular: true},
		{ID: "elite", Name: "Elite Membership", Price: 200},
	}))

	plans, fresh, err := db.GetPlans(time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)
	require.Len(t, plans, 3)
	assert.Equal(t, []string{"basic", "premium", "elite"}, []string{plans[0].ID, plans[1].ID, plans[2].ID})
	assert.True(t, plans[1].Popular)
}
