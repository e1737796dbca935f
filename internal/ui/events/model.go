package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/trackside/internal/api"
	"github.com/fragmede/trackside/internal/cache"
	"github.com/fragmede/trackside/internal/config"
	"github.com/fragmede/trackside/internal/ui/messages"
)

var filterOrder = []api.EventFilter{api.EventsUpcoming, api.EventsPrevious, api.EventsAll}

// Model is the event list view.
type Model struct {
	list    list.Model
	filter  api.EventFilter
	client  *api.Client
	cache   *cache.DB
	cfg     config.Config
	authed  func() bool
	loading bool
	width   int
	height  int
}

// New creates the event list. authed reports whether a member is signed in.
func New(cfg config.Config, client *api.Client, db *cache.DB, authed func() bool) Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.Title = filterTitle(api.EventsUpcoming)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return Model{
		list:   l,
		filter: api.EventsUpcoming,
		client: client,
		cache:  db,
		cfg:    cfg,
		authed: authed,
	}
}

// Init loads the initial list.
func (m Model) Init() tea.Cmd {
	return m.loadEvents(false)
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h)
}

// Filter returns the active filter.
func (m Model) Filter() api.EventFilter {
	return m.filter
}

// Filtering reports whether the list's filter input has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.EventsLoadedMsg:
		if msg.Filter != m.filter {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Error: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.Events))
		for _, ev := range msg.Events {
			items = append(items, EventItem{Event: ev})
		}
		m.list.Title = filterTitle(m.filter)
		cmd := m.list.SetItems(items)
		return m, cmd

	case messages.EventRegistrationMsg:
		if msg.Err == nil {
			return m, m.reloadEvent(msg.EventID)
		}
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "f":
			m.filter = nextFilter(m.filter)
			m.list.Title = filterTitle(m.filter) + " (loading...)"
			m.loading = true
			return m, m.loadEvents(false)
		case "r", "ctrl+r":
			m.loading = true
			m.list.Title = filterTitle(m.filter) + " (refreshing...)"
			return m, m.loadEvents(true)
		case "enter":
			if item, ok := m.list.SelectedItem().(EventItem); ok && item.Results == nil {
				return m, m.setRegistration(item.ID, true)
			}
		case "x":
			if item, ok := m.list.SelectedItem().(EventItem); ok && item.Results == nil {
				return m, m.setRegistration(item.ID, false)
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list.
func (m Model) View() string {
	return m.list.View()
}

func (m Model) setRegistration(id string, register bool) tea.Cmd {
	if !m.authed() {
		return func() tea.Msg { return messages.OpenLoginMsg{} }
	}
	client := m.client
	return func() tea.Msg {
		var err error
		if register {
			err = client.RegisterForEvent(context.Background(), id)
		} else {
			err = client.UnregisterFromEvent(context.Background(), id)
		}
		return messages.EventRegistrationMsg{EventID: id, Registered: register, Err: err}
	}
}

// reloadEvent drops one event from the cache after its registrations
// changed, then reloads the list, which refetches just that event.
func (m Model) reloadEvent(id string) tea.Cmd {
	db := m.cache
	load := m.loadEvents(false)
	return func() tea.Msg {
		if err := db.InvalidateEvent(id); err != nil {
			slog.Warn("invalidating event", "event_id", id, "error", err)
		}
		return load()
	}
}

// loadEvents serves a fresh cached list when there is one, otherwise
// fetches and caches. A failed fetch falls back to stale cache.
func (m Model) loadEvents(force bool) tea.Cmd {
	filter := m.filter
	client := m.client
	db := m.cache
	ttl := m.cfg.EventTTL

	return func() tea.Msg {
		if force {
			if err := db.InvalidateEventList(filter); err != nil {
				slog.Warn("invalidating event list", "filter", filter, "error", err)
			}
		}
		cached, fresh, err := db.GetEvents(filter, ttl)
		if err != nil {
			slog.Warn("reading cached events", "filter", filter, "error", err)
		}
		if fresh {
			if repaired, ok := refreshStale(client, db, filter, ttl); ok {
				cached = repaired
			}
			if len(cached) > 0 {
				return messages.EventsLoadedMsg{Filter: filter, Events: cached}
			}
		}

		events, err := client.GetEvents(context.Background(), filter)
		if err != nil {
			if len(cached) > 0 {
				return messages.EventsLoadedMsg{Filter: filter, Events: cached}
			}
			return messages.EventsLoadedMsg{Filter: filter, Err: err}
		}
		if err := db.PutEventList(filter, events); err != nil {
			slog.Warn("caching events", "filter", filter, "error", err)
		}
		return messages.EventsLoadedMsg{Filter: filter, Events: events}
	}
}

// refreshStale refetches the events of a fresh cached list that are
// missing or expired, and returns the repaired list. ok is false when
// nothing was refreshed.
func refreshStale(client *api.Client, db *cache.DB, filter api.EventFilter, ttl time.Duration) ([]api.Event, bool) {
	stale, err := db.StaleEventIDs(filter, ttl)
	if err != nil {
		slog.Warn("checking cached events", "filter", filter, "error", err)
		return nil, false
	}
	if len(stale) == 0 {
		return nil, false
	}

	fetched, err := client.BatchGetEvents(context.Background(), stale)
	if err != nil {
		slog.Warn("refreshing events", "filter", filter, "count", len(stale), "error", err)
		return nil, false
	}
	for _, ev := range fetched {
		if ev == nil {
			continue
		}
		if err := db.PutEvent(ev); err != nil {
			slog.Warn("caching event", "event_id", ev.ID, "error", err)
		}
	}
	events, _, err := db.GetEvents(filter, ttl)
	if err != nil {
		slog.Warn("reading cached events", "filter", filter, "error", err)
		return nil, false
	}
	return events, true
}

func nextFilter(f api.EventFilter) api.EventFilter {
	for i, candidate := range filterOrder {
		if candidate == f {
			return filterOrder[(i+1)%len(filterOrder)]
		}
	}
	return filterOrder[0]
}

func filterTitle(f api.EventFilter) string {
	switch f {
	case api.EventsUpcoming:
		return "Upcoming Events"
	case api.EventsPrevious:
		return "Previous Events"
	default:
		return "All Events"
	}
}
