package mockapi

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/fragmede/trackside/internal/api"
)

type accessLog struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId,omitempty"`
	MemberID   string        `json:"memberId,omitempty"`
	QRCode     string        `json:"qrCode"`
	AccessType string        `json:"accessType"`
	Timestamp  api.Timestamp `json:"timestamp"`
	Valid      bool          `json:"valid"`
	VerifiedBy string        `json:"verifiedById,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Codes look like NT-MEMBER-<memberId>-<TIER> or NT-ACCESS-<memberId>.
func parseCode(code string) (memberID string, ok bool) {
	if !strings.HasPrefix(code, "NT-ACCESS-") && !strings.HasPrefix(code, "NT-MEMBER-") {
		return "", false
	}
	parts := strings.Split(code, "-")
	if len(parts) < 3 || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

// memberByID must be called with s.mu held.
func (s *Server) memberByID(memberID string) *userRecord {
	for _, u := range s.users {
		if u.MemberID == memberID {
			return u
		}
	}
	return nil
}

// logAccess must be called with s.mu held.
func (s *Server) logAccess(c fiber.Ctx, entry accessLog) {
	entry.ID = newID()
	entry.Timestamp = api.NewTimestamp(s.now().UTC())
	if by := currentUser(c); by != nil {
		entry.VerifiedBy = by.ID
	}
	s.accessLogs = append(s.accessLogs, entry)
}

func (s *Server) scan(c fiber.Ctx) error {
	var req api.ScanRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalid(c, "Invalid request body")
	}
	memberID, ok := parseCode(req.QRCode)
	if !ok {
		return c.JSON(api.ScanResult{Message: "Invalid QR code format"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.memberByID(memberID)
	switch {
	case u == nil:
		return c.JSON(api.ScanResult{Message: "User not found"})
	case u.MembershipStatus != api.StatusActive:
		return c.JSON(api.ScanResult{Message: "Membership is not active"})
	}

	s.logAccess(c, accessLog{UserID: u.ID, MemberID: u.MemberID, QRCode: req.QRCode, AccessType: "qr_scan", Valid: true})
	user := u.User
	return c.JSON(api.ScanResult{
		Valid:   true,
		Message: "Access granted! Welcome " + u.Name,
		User:    &user,
	})
}

func (s *Server) verify(c fiber.Ctx) error {
	var req api.VerifyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalid(c, "Invalid request body")
	}
	if req.MemberID == "" {
		return detail(c, fiber.StatusBadRequest, "Member ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.memberByID(req.MemberID)
	switch {
	case u == nil:
		return c.JSON(api.AccessCheck{Message: "Member not found"})
	case u.MembershipStatus != api.StatusActive:
		return c.JSON(api.AccessCheck{Message: "Membership is not active"})
	}

	s.logAccess(c, accessLog{UserID: u.ID, MemberID: u.MemberID, QRCode: "N/A", AccessType: "facility", Valid: true})
	return c.JSON(api.AccessCheck{
		Valid:          true,
		Message:        "Access granted for " + u.Name,
		MembershipType: u.MembershipType,
		Name:           u.Name,
	})
}

// listAccessLogs returns the newest entries first.
func (s *Server) listAccessLogs(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil || limit < 1 {
		return invalid(c, "limit must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	logs := make([]accessLog, 0, limit)
	for i := len(s.accessLogs) - 1; i >= 0 && len(logs) < limit; i-- {
		logs = append(logs, s.accessLogs[i])
	}
	return c.JSON(fiber.Map{"totalLogs": len(logs), "logs": logs})
}
