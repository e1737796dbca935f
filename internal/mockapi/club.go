package mockapi

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/fragmede/trackside/internal/api"
)

func newID() string {
	return uuid.NewString()
}

// Events

func (s *Server) listEvents(c fiber.Ctx) error {
	filter := api.EventFilter(c.Query("status_filter"))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Event, 0, len(s.events))
	for _, e := range s.events {
		switch filter {
		case api.EventsUpcoming:
			if e.Status != "upcoming" {
				continue
			}
		case api.EventsPrevious:
			if e.Status != "completed" && e.Status != "cancelled" {
				continue
			}
		}
		out = append(out, e.view())
	}
	return c.JSON(out)
}

func (s *Server) findEvent(id string) *eventRecord {
	for _, e := range s.events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (s *Server) getEvent(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.findEvent(c.Params("id"))
	if e == nil {
		return detail(c, fiber.StatusNotFound, "Event not found")
	}
	return c.JSON(e.view())
}

func (s *Server) registerForEvent(c fiber.Ctx) error {
	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(c.Params("id"))
	switch {
	case e == nil:
		return detail(c, fiber.StatusNotFound, "Event not found")
	case e.MemberOnly && u.MembershipType == api.MembershipBasic:
		return detail(c, fiber.StatusForbidden, "This event requires premium or elite membership")
	case e.baseRegistrations+len(e.registrants) >= e.MaxCapacity:
		return detail(c, fiber.StatusBadRequest, "Event is full")
	}
	if _, ok := e.registrants[u.ID]; ok {
		return detail(c, fiber.StatusBadRequest, "Already registered for this event")
	}
	e.registrants[u.ID] = struct{}{}

	return c.JSON(fiber.Map{
		"message":          "Successfully registered for event",
		"eventName":        e.Name,
		"registrationDate": s.now().UTC(),
	})
}

func (s *Server) unregisterFromEvent(c fiber.Ctx) error {
	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(c.Params("id"))
	if e == nil {
		return detail(c, fiber.StatusNotFound, "Registration not found or event not found")
	}
	if _, ok := e.registrants[u.ID]; !ok {
		return detail(c, fiber.StatusNotFound, "Registration not found or event not found")
	}
	delete(e.registrants, u.ID)
	return c.JSON(fiber.Map{"message": "Successfully unregistered from event"})
}

// Community

func (s *Server) listPosts(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 10)
	if err != nil || limit < 1 || limit > 50 {
		return invalid(c, "limit must be between 1 and 50")
	}
	skip, err := queryInt(c, "skip", 0)
	if err != nil || skip < 0 {
		return invalid(c, "skip must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := make([]*postRecord, len(s.posts))
	copy(sorted, s.posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].createdAt.After(sorted[j].createdAt)
	})

	now := s.now()
	out := make([]api.Post, 0, limit)
	for i := skip; i < len(sorted) && len(out) < limit; i++ {
		out = append(out, sorted[i].view(now))
	}
	return c.JSON(out)
}

func (s *Server) createPost(c fiber.Ctx) error {
	var body api.NewPost
	if err := c.Bind().JSON(&body); err != nil {
		return invalid(c, "Invalid request body")
	}
	body.Title = strings.TrimSpace(body.Title)
	body.Content = strings.TrimSpace(body.Content)
	if body.Title == "" || body.Content == "" {
		return invalid(c, "Title and content are required")
	}

	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &postRecord{
		Post: api.Post{
			ID:       newID(),
			Author:   u.Name,
			AuthorID: u.ID,
			Title:    body.Title,
			Content:  body.Content,
		},
		createdAt: s.now(),
		likedBy:   make(map[string]struct{}),
	}
	s.posts = append(s.posts, p)
	return c.JSON(p.view(s.now()))
}

// likePost toggles the caller's like.
func (s *Server) likePost(c fiber.Ctx) error {
	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	var p *postRecord
	for _, candidate := range s.posts {
		if candidate.ID == c.Params("id") {
			p = candidate
			break
		}
	}
	if p == nil {
		return detail(c, fiber.StatusNotFound, "Post not found")
	}

	_, liked := p.likedBy[u.ID]
	if liked {
		delete(p.likedBy, u.ID)
	} else {
		p.likedBy[u.ID] = struct{}{}
	}
	return c.JSON(fiber.Map{
		"liked": !liked,
		"likes": p.baseLikes + len(p.likedBy),
	})
}

func (s *Server) communityStats(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := api.CommunityStats{
		TotalMembers: len(s.users),
		TotalPosts:   len(s.posts),
	}
	for _, p := range s.posts {
		stats.TotalComments += p.Comments
		stats.TotalLikes += p.baseLikes + len(p.likedBy)
	}
	return c.JSON(stats)
}

// Membership

func (s *Server) listPlans(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(s.plans)
}

func (s *Server) membershipStats(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := api.MembershipStats{TotalMembers: len(s.users)}
	for _, e := range s.events {
		switch e.Status {
		case "upcoming":
			stats.ActiveEvents++
		case "completed":
			stats.CompletedEvents++
		}
	}
	stats.TrainingHours = stats.TotalMembers*10 + stats.CompletedEvents*5
	return c.JSON(stats)
}

func (s *Server) myCard(c fiber.Ctx) error {
	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	details := api.PlanDetails{Name: "Basic Membership", Features: []string{}}
	if p := s.findPlan(string(u.MembershipType)); p != nil {
		details = api.PlanDetails{Name: p.Name, Features: p.Features, Price: p.Price}
	}
	return c.JSON(api.MemberCard{
		MemberID:         u.MemberID,
		Name:             u.Name,
		Email:            u.Email,
		MembershipType:   u.MembershipType,
		MembershipStatus: u.MembershipStatus,
		JoinDate:         u.JoinDate,
		QRCode:           u.QRCode,
		PlanDetails:      details,
		ValidUntil:       u.JoinDate.AddDate(1, 0, 0).Format("2006-01-02"),
	})
}

func (s *Server) findPlan(id string) *api.Plan {
	for i := range s.plans {
		if s.plans[i].ID == id {
			return &s.plans[i]
		}
	}
	return nil
}

// subscribe switches the caller to a plan and reissues their card code.
func (s *Server) subscribe(c fiber.Ctx) error {
	var req api.SubscribeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalid(c, "Invalid request body")
	}
	if req.PlanID == "" {
		return detail(c, fiber.StatusBadRequest, "Plan ID is required")
	}

	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPlan(req.PlanID)
	if p == nil || !api.MembershipType(p.ID).Valid() {
		return detail(c, fiber.StatusNotFound, "Membership plan not found")
	}
	u.MembershipType = api.MembershipType(p.ID)
	u.MembershipStatus = api.StatusActive
	u.QRCode = qrData(u.MemberID, u.MembershipType)

	s.logger.Info("mock api subscription", "user_id", u.ID, "plan", p.ID)
	return c.JSON(api.Subscription{
		Message:  "Successfully subscribed to " + p.Name,
		PlanName: p.Name,
		PlanID:   p.ID,
		Price:    p.Price,
		QRCode:   u.QRCode,
	})
}

func (s *Server) generateCard(c fiber.Ctx) error {
	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	u.QRCode = qrData(u.MemberID, u.MembershipType)
	return c.JSON(api.CardRenewal{
		Message:  "New membership card generated successfully",
		QRCode:   u.QRCode,
		MemberID: u.MemberID,
	})
}

func queryInt(c fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
