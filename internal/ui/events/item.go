package events

import (
	"fmt"
	"strings"

	"github.com/fragmede/trackside/internal/api"
)

// EventItem wraps an API event for the bubbles list.
type EventItem struct {
	api.Event
}

func (e EventItem) Title() string {
	return e.Event.Name
}

// Badge is the short marker in front of the title.
func (e EventItem) Badge() string {
	switch {
	case e.Results != nil && e.Results.Completed:
		return "done"
	case e.MemberOnly:
		return "members"
	case e.MaxCapacity > 0 && e.Registrations >= e.MaxCapacity:
		return "full"
	default:
		return e.Type
	}
}

func (e EventItem) Description() string {
	parts := make([]string, 0, 4)
	when := e.Date
	if e.Time != "" {
		when += ", " + e.Time
	}
	parts = append(parts, when)
	if e.Location != "" {
		parts = append(parts, e.Location)
	}

	if r := e.Results; r != nil {
		parts = append(parts, fmt.Sprintf("%d participants", r.Participants))
		if r.Winner != "" {
			parts = append(parts, "winner "+r.Winner)
		}
	} else {
		if e.MaxCapacity > 0 {
			parts = append(parts, fmt.Sprintf("%d/%d registered", e.Registrations, e.MaxCapacity))
		}
		if e.Price > 0 {
			parts = append(parts, fmt.Sprintf("$%.0f", e.Price))
		} else {
			parts = append(parts, "free")
		}
	}
	return strings.Join(parts, " | ")
}

func (e EventItem) FilterValue() string {
	return e.Event.Name + " " + e.Type + " " + e.Location
}
