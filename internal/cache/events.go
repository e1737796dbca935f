package cache

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/fragmede/trackside/internal/api"
)

// GetEvent retrieves a cached event. Returns (event, isFresh, error).
// Returns nil event on cache miss.
func (d *DB) GetEvent(id string, ttl time.Duration) (*api.Event, bool, error) {
	row := d.db.QueryRow(`SELECT data, fetched_at FROM events WHERE id = ?`, id)

	var data string
	var fetchedAt int64
	err := row.Scan(&data, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ev api.Event
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return nil, false, err
	}
	isFresh := time.Since(time.Unix(fetchedAt, 0)) < ttl
	return &ev, isFresh, nil
}

// PutEvent stores an event in the cache.
func (d *DB) PutEvent(ev *api.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO events (id, data, fetched_at) VALUES (?, ?, ?)`,
		ev.ID, string(data), time.Now().Unix())
	return err
}

// GetEventList retrieves the cached event IDs for a filter.
// Returns (ids, isFresh, error). ids is nil on cache miss.
func (d *DB) GetEventList(filter api.EventFilter, ttl time.Duration) ([]string, bool, error) {
	row := d.db.QueryRow(`SELECT event_ids, fetched_at FROM event_lists WHERE filter = ?`, string(filter))

	var idsJSON string
	var fetchedAt int64
	err := row.Scan(&idsJSON, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
		return nil, false, err
	}
	isFresh := time.Since(time.Unix(fetchedAt, 0)) < ttl
	return ids, isFresh, nil
}

// PutEventList stores the events of a filter and their ID list.
func (d *DB) PutEventList(filter api.EventFilter, events []api.Event) error {
	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
		if err := d.PutEvent(&events[i]); err != nil {
			return err
		}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO event_lists (filter, event_ids, fetched_at) VALUES (?, ?, ?)`,
		string(filter), string(idsJSON), time.Now().Unix())
	return err
}

// InvalidateEventList forces the next read of filter to miss.
func (d *DB) InvalidateEventList(filter api.EventFilter) error {
	_, err := d.db.Exec(`DELETE FROM event_lists WHERE filter = ?`, string(filter))
	return err
}

// GetEvents returns the cached events of a filter in list order. Events
// missing from the cache are skipped. isFresh reflects the list's age.
func (d *DB) GetEvents(filter api.EventFilter, ttl time.Duration) ([]api.Event, bool, error) {
	ids, fresh, err := d.GetEventList(filter, ttl)
	if err != nil || ids == nil {
		return nil, false, err
	}
	events := make([]api.Event, 0, len(ids))
	for _, id := range ids {
		ev, _, err := d.GetEvent(id, ttl)
		if err != nil {
			return nil, false, err
		}
		if ev != nil {
			events = append(events, *ev)
		}
	}
	return events, fresh, nil
}

// InvalidateEvent drops one cached event. Lists that include it keep their
// order and report it through StaleEventIDs.
func (d *DB) InvalidateEvent(id string) error {
	_, err := d.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	return err
}

// StaleEventIDs returns the IDs in filter's cached list whose event is
// missing or older than ttl, in list order.
func (d *DB) StaleEventIDs(filter api.EventFilter, ttl time.Duration) ([]string, error) {
	ids, _, err := d.GetEventList(filter, ttl)
	if err != nil || ids == nil {
		return nil, err
	}
	var stale []string
	for _, id := range ids {
		ev, fresh, err := d.GetEvent(id, ttl)
		if err != nil {
			return nil, err
		}
		if ev == nil || !fresh {
			stale = append(stale, id)
		}
	}
	return stale, nil
}
