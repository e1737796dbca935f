package api

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"
)

const maxConcurrent = 5

// GetEvents lists events matching filter.
func (c *Client) GetEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	if filter == "" {
		filter = EventsAll
	}
	var events []Event
	path := "/events?status_filter=" + url.QueryEscape(string(filter))
	if err := c.get(ctx, path, &events); err != nil {
		return nil, fmt.Errorf("fetching %s events: %w", filter, err)
	}
	return events, nil
}

// GetEvent fetches a single event by ID.
func (c *Client) GetEvent(ctx context.Context, id string) (*Event, error) {
	var ev Event
	if err := c.get(ctx, "/events/"+url.PathEscape(id), &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// BatchGetEvents fetches several events concurrently. Results keep the
// order of ids; failed fetches are nil. A 401 aborts the batch.
func (c *Client) BatchGetEvents(ctx context.Context, ids []string) ([]*Event, error) {
	results := make([]*Event, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, id := range ids {
		g.Go(func() error {
			ev, err := c.GetEvent(ctx, id)
			if err != nil {
				if isUnauthorized(err) {
					return err
				}
				// Non-fatal: individual events can fail.
				return nil
			}
			mu.Lock()
			results[i] = ev
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RegisterForEvent signs the current member up for an event.
func (c *Client) RegisterForEvent(ctx context.Context, id string) error {
	return c.post(ctx, "/events/"+url.PathEscape(id)+"/register", nil, nil)
}

// UnregisterFromEvent withdraws the current member from an event.
func (c *Client) UnregisterFromEvent(ctx context.Context, id string) error {
	return c.delete(ctx, "/events/"+url.PathEscape(id)+"/register", nil)
}
