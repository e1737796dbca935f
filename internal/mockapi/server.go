// Package mockapi is an in-process stand-in for the club backend. It serves
// the same REST surface under /api with seeded members, events, plans and
// forum posts, so the client can run without the real service.
package mockapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"golang.org/x/crypto/bcrypt"

	"github.com/fragmede/trackside/internal/api"
)

const msgBadCredentials = "Could not validate credentials"

// Config configures the mock server.
type Config struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int              // defaults to bcrypt.DefaultCost
	Now        func() time.Time // defaults to time.Now
	Logger     *slog.Logger
}

// Server holds the mock dataset and the fiber app serving it.
type Server struct {
	app    *fiber.App
	tokens *tokenIssuer
	cost   int
	now    func() time.Time
	logger *slog.Logger

	mu         sync.Mutex
	users      map[string]*userRecord // by lowercased email
	events     []*eventRecord
	posts      []*postRecord
	plans      []api.Plan
	accessLogs []accessLog
	nextMember int
}

// New seeds the dataset and registers the routes.
func New(cfg Config) (*Server, error) {
	if cfg.Secret == "" {
		return nil, errors.New("mockapi: secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing seed password: %w", err)
	}
	seed := seedUser(hash)

	s := &Server{
		tokens:     newTokenIssuer(cfg.Secret, cfg.TokenTTL, cfg.Now),
		cost:       cfg.BcryptCost,
		now:        cfg.Now,
		logger:     cfg.Logger,
		users:      map[string]*userRecord{normalizeEmail(seed.Email): seed},
		events:     seedEvents(),
		posts:      seedPosts(cfg.Now()),
		plans:      seedPlans(),
		nextMember: 2024002,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "trackside-mock",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.app.Group("/api")

	r.Post("/auth/login", s.login)
	r.Post("/auth/register", s.register)
	r.Get("/auth/me", s.requireAuth, s.me)
	r.Put("/auth/profile", s.requireAuth, s.updateProfile)
	r.Post("/auth/qr-generate", s.requireAuth, s.accessCode)

	r.Get("/events", s.listEvents)
	r.Get("/events/:id", s.getEvent)
	r.Post("/events/:id/register", s.requireAuth, s.registerForEvent)
	r.Delete("/events/:id/register", s.requireAuth, s.unregisterFromEvent)

	r.Get("/community/posts", s.listPosts)
	r.Post("/community/posts", s.requireAuth, s.createPost)
	r.Post("/community/posts/:id/like", s.requireAuth, s.likePost)
	r.Get("/community/stats", s.communityStats)

	r.Get("/membership/plans", s.listPlans)
	r.Get("/membership/stats", s.membershipStats)
	r.Get("/membership/my-card", s.requireAuth, s.myCard)
	r.Post("/membership/subscribe", s.requireAuth, s.subscribe)
	r.Post("/membership/generate-card", s.requireAuth, s.generateCard)

	r.Post("/qr/scan", s.optionalAuth, s.scan)
	r.Post("/qr/verify", s.optionalAuth, s.verify)
	r.Get("/qr/access-logs", s.requireAuth, s.listAccessLogs)
}

// Handler exposes the app as a net/http handler.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("mock api listening", "addr", addr)
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops a server started with Listen.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Revoke invalidates an issued token, so the next request made with it is
// answered with 401.
func (s *Server) Revoke(token string) error {
	return s.tokens.revoke(token)
}

// detail writes an error body in the shape the client parses.
func detail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}

// invalid writes a validation failure as a list of {msg} entries.
func invalid(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"detail": []fiber.Map{{"msg": msg}},
	})
}

func errorHandler(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		msg = fe.Message
	}
	return detail(c, status, msg)
}

func (s *Server) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("mock api request",
		"method", c.Method(), "path", c.Path(),
		"status", c.Response().StatusCode(), "elapsed", time.Since(start))
	return err
}

// requireAuth resolves the bearer token to a member and stores it in the
// request locals.
func (s *Server) requireAuth(c fiber.Ctx) error {
	u, err := s.bearerUser(c)
	if err != nil {
		s.logger.Debug("rejecting token", "error", err)
		c.Set("WWW-Authenticate", "Bearer")
		return detail(c, fiber.StatusUnauthorized, msgBadCredentials)
	}
	c.Locals("user", u)
	return c.Next()
}

// optionalAuth is requireAuth for routes that also serve anonymous
// callers. A missing or bad token leaves the locals empty.
func (s *Server) optionalAuth(c fiber.Ctx) error {
	if u, err := s.bearerUser(c); err == nil {
		c.Locals("user", u)
	}
	return c.Next()
}

func (s *Server) bearerUser(c fiber.Ctx) (*userRecord, error) {
	parts := strings.SplitN(c.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return nil, errors.New("no bearer token")
	}
	email, err := s.tokens.verify(parts[1])
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	u, ok := s.users[normalizeEmail(email)]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown subject %q", email)
	}
	return u, nil
}

func currentUser(c fiber.Ctx) *userRecord {
	u, _ := c.Locals("user").(*userRecord)
	return u
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
