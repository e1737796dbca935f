package mockapi

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/fragmede/trackside/internal/api"
)

func (s *Server) login(c fiber.Ctx) error {
	var req api.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalid(c, "Invalid request body")
	}

	s.mu.Lock()
	u, ok := s.users[normalizeEmail(req.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		return detail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	return s.authResponse(c, u)
}

func (s *Server) register(c fiber.Ctx) error {
	var req api.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalid(c, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if req.MembershipType == "" {
		req.MembershipType = api.MembershipBasic
	}
	switch {
	case req.Name == "":
		return invalid(c, "Name is required")
	case email == "" || !strings.Contains(email, "@"):
		return invalid(c, "A valid email is required")
	case req.Password == "":
		return invalid(c, "Password is required")
	case !req.MembershipType.Valid():
		return invalid(c, "Unknown membership type")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create account")
	}

	s.mu.Lock()
	if _, taken := s.users[email]; taken {
		s.mu.Unlock()
		return detail(c, fiber.StatusBadRequest, "Email already registered")
	}
	memberID := strconv.Itoa(s.nextMember)
	s.nextMember++
	u := &userRecord{
		User: api.User{
			ID:               newID(),
			Name:             req.Name,
			Email:            email,
			MemberID:         memberID,
			MembershipType:   req.MembershipType,
			MembershipStatus: api.StatusActive,
			JoinDate:         api.NewTimestamp(s.now().UTC()),
			QRCode:           qrData(memberID, req.MembershipType),
		},
		passwordHash: hash,
	}
	s.users[email] = u
	s.mu.Unlock()

	s.logger.Info("mock api registered member", "user_id", u.ID, "membership", u.MembershipType)
	return s.authResponse(c, u)
}

func (s *Server) authResponse(c fiber.Ctx, u *userRecord) error {
	token, err := s.tokens.issue(u.Email)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not issue token")
	}
	s.mu.Lock()
	user := u.User
	s.mu.Unlock()
	return c.JSON(api.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

func (s *Server) me(c fiber.Ctx) error {
	u := currentUser(c)
	s.mu.Lock()
	user := u.User
	s.mu.Unlock()
	return c.JSON(user)
}

// updateProfile applies the non-nil fields. Tokens are keyed by email, so
// changing it invalidates tokens issued for the old address.
func (s *Server) updateProfile(c fiber.Ctx) error {
	var upd api.ProfileUpdate
	if err := c.Bind().JSON(&upd); err != nil {
		return invalid(c, "Invalid request body")
	}
	if upd.MembershipType != nil && !upd.MembershipType.Valid() {
		return invalid(c, "Unknown membership type")
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return invalid(c, "Name cannot be empty")
	}

	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if email != u.Email {
			if _, taken := s.users[email]; taken {
				return detail(c, fiber.StatusBadRequest, "Email already registered")
			}
			delete(s.users, u.Email)
			u.Email = email
			s.users[email] = u
		}
	}
	if upd.Name != nil {
		u.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.MembershipType != nil {
		u.MembershipType = *upd.MembershipType
		u.QRCode = qrData(u.MemberID, u.MembershipType)
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	return c.JSON(u.User)
}

// accessCode returns the member's check-in code.
func (s *Server) accessCode(c fiber.Ctx) error {
	u := currentUser(c)
	s.mu.Lock()
	data := qrData(u.MemberID, u.MembershipType)
	s.mu.Unlock()
	return c.JSON(api.AccessCode{
		QRCode:  data,
		Data:    data,
		Message: "QR code generated successfully",
	})
}
