package mockapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/fragmede/trackside/internal/api"
)

// Seed member, usable for logging in against the mock API.
const (
	SeedEmail    = "sarah.johnson@email.com"
	SeedPassword = "password123"
)

type userRecord struct {
	api.User
	passwordHash []byte
}

type eventRecord struct {
	api.Event
	baseRegistrations int
	registrants       map[string]struct{}
}

func (e *eventRecord) view() api.Event {
	ev := e.Event
	ev.Registrations = e.baseRegistrations + len(e.registrants)
	if ev.Results != nil {
		r := *ev.Results
		ev.Results = &r
	}
	return ev
}

type postRecord struct {
	api.Post
	createdAt time.Time
	baseLikes int
	likedBy   map[string]struct{}
}

func (p *postRecord) view(now time.Time) api.Post {
	post := p.Post
	post.Likes = p.baseLikes + len(p.likedBy)
	post.Timestamp = timeAgo(now.Sub(p.createdAt))
	return post
}

func seedEvents() []*eventRecord {
	completed := func(winner string, participants int) *api.EventResults {
		return &api.EventResults{Winner: winner, Participants: participants, Completed: true}
	}
	events := []api.Event{
		{
			ID: "evt101", Name: "New Year Sprint Challenge", Date: "January 20, 2025", Type: "Sprint",
			Description: "High-energy sprint competition to kick off the new athletics season.",
			Status:      "completed", Results: completed("Michael Thompson", 89),
		},
		{
			ID: "evt102", Name: "Endurance Training Camp", Date: "February 10-12, 2025", Type: "Training Camp",
			Description: "Intensive 3-day endurance training camp for long-distance runners.",
			Status:      "completed", Results: completed("", 45),
		},
		{
			ID: "evt103", Name: "Field Events Showcase", Date: "February 25, 2025", Type: "Field Events",
			Description: "Showcase of throwing and jumping events with expert coaching tips.",
			Status:      "completed", Results: completed("Lisa Anderson", 67),
		},
		{
			ID: "evt001", Name: "Summer Athletics Championship", Date: "March 15, 2025",
			Time: "9:00 AM - 5:00 PM", Type: "Championship",
			Description: "Annual summer athletics championship featuring track and field events for all age groups.",
			Location:    "Darwin Athletics Stadium", Registrations: 145, MaxCapacity: 200,
			RegistrationDeadline: "March 10, 2025", Price: 25, Status: "upcoming",
		},
		{
			ID: "evt002", Name: "Youth Development Program", Date: "March 22, 2025",
			Time: "4:00 PM - 6:00 PM", Type: "Training",
			Description: "Specialized training program for young athletes aged 12-18 years.",
			Location:    "NT Athletics Training Ground", Registrations: 32, MaxCapacity: 40,
			RegistrationDeadline: "March 20, 2025", MemberOnly: true, Status: "upcoming",
		},
		{
			ID: "evt003", Name: "Masters Athletics Meet", Date: "April 5, 2025",
			Time: "10:00 AM - 4:00 PM", Type: "Competition",
			Description: "Competitive meet for athletes aged 35 and above across various disciplines.",
			Location:    "Alice Springs Athletic Center", Registrations: 78, MaxCapacity: 100,
			RegistrationDeadline: "April 1, 2025", Price: 20, Status: "upcoming",
		},
	}

	out := make([]*eventRecord, len(events))
	for i, ev := range events {
		out[i] = &eventRecord{
			Event:             ev,
			baseRegistrations: ev.Registrations,
			registrants:       make(map[string]struct{}),
		}
	}
	return out
}

func seedPlans() []api.Plan {
	return []api.Plan{
		{
			ID: "basic", Name: "Basic Membership", Price: 50, Duration: "Annual",
			Features: []string{
				"Access to regular training sessions",
				"Basic event participation",
				"Monthly newsletter",
				"Community forum access",
			},
		},
		{
			ID: "premium", Name: "Premium Membership", Price: 120, Duration: "Annual", Popular: true,
			Features: []string{
				"All Basic features",
				"Priority event registration",
				"Free coaching sessions (2/month)",
				"Equipment discounts",
				"Exclusive member events",
				"Digital reward card",
			},
		},
		{
			ID: "elite", Name: "Elite Membership", Price: 200, Duration: "Annual",
			Features: []string{
				"All Premium features",
				"Personal coaching sessions",
				"Competition entry fees included",
				"Advanced performance analytics",
				"VIP event access",
				"Custom training programs",
			},
		},
	}
}

func seedPosts(now time.Time) []*postRecord {
	return []*postRecord{
		{
			Post: api.Post{
				ID: "post001", Author: "Alex Chen", AuthorID: "mem001",
				Title:    "Tips for Improving Your Sprint Start",
				Content:  "The key to a powerful sprint start is all in the positioning and explosive drive...",
				Comments: 8,
			},
			createdAt: now.Add(-2 * time.Hour),
			baseLikes: 23,
			likedBy:   make(map[string]struct{}),
		},
		{
			Post: api.Post{
				ID: "post002", Author: "Maria Rodriguez", AuthorID: "mem002",
				Title:    "Marathon Training Schedule for Beginners",
				Content:  "Starting your marathon journey can be overwhelming. Here's a structured 16-week plan...",
				Comments: 12,
			},
			createdAt: now.Add(-26 * time.Hour),
			baseLikes: 45,
			likedBy:   make(map[string]struct{}),
		},
	}
}

func seedUser(hash []byte) *userRecord {
	return &userRecord{
		User: api.User{
			ID:               "user123",
			Name:             "Sarah Johnson",
			Email:            SeedEmail,
			MemberID:         "2024001",
			MembershipType:   api.MembershipPremium,
			MembershipStatus: api.StatusActive,
			JoinDate:         api.NewTimestamp(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)),
			QRCode:           qrData("2024001", api.MembershipPremium),
		},
		passwordHash: hash,
	}
}

func qrData(memberID string, tier api.MembershipType) string {
	return fmt.Sprintf("NT-MEMBER-%s-%s", memberID, strings.ToUpper(string(tier)))
}

// timeAgo renders an age the way the forum shows it.
func timeAgo(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	switch {
	case d >= 24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d > time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d > time.Minute:
		return plural(int(d/time.Minute), "minute")
	default:
		return "Just now"
	}
}
