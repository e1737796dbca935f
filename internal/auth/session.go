package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/fragmede/trackside/internal/api"
)

// User-facing failure messages.
const (
	msgUnexpected  = "An unexpected error occurred. Please try again."
	msgUnreachable = "Unable to reach the server. Please try again."
	msgBadResponse = "Unexpected response from the server."
	msgExpired     = "Your session has expired. Please log in again."
	msgStale       = "Your session changed while the request was in flight."
	msgNotSignedIn = "You are not logged in."
	msgSaveFailed  = "Could not save your session."
)

// ExpiredMessage is shown when the server stops accepting the session token.
const ExpiredMessage = msgExpired

// Backend is the subset of the API client the session depends on.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Me(ctx context.Context) (*api.User, error)
	UpdateProfile(ctx context.Context, upd api.ProfileUpdate) (*api.User, error)
	OnSessionExpired(fn func(api.SessionExpired))
}

// Session owns the signed-in user and the stored token.
//
// Every state change (login, register, logout, expiry) advances a
// generation counter. A response is only applied if the generation it was
// requested under is still current, so a slow login that finishes after a
// logout is dropped instead of resurrecting the session.
type Session struct {
	backend Backend
	store   api.CredentialStore
	logger  *slog.Logger

	mu   sync.Mutex
	gen  uint64
	user *api.User
}

// NewSession creates an anonymous session and subscribes it to the
// backend's expiry events.
func NewSession(backend Backend, store api.CredentialStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		backend: backend,
		store:   store,
		logger:  logger,
	}
	backend.OnSessionExpired(s.expire)
	return s
}

// Login authenticates with email and password.
func (s *Session) Login(ctx context.Context, email, password string) Result {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Failure("Email and password are required.")
	}

	gen := s.generation()
	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.logger.Info("login failed", "email", email, "error", err)
		return Failure(describe(err, "Login failed."))
	}
	return s.establish(gen, resp)
}

// Register creates an account and signs it in. Password confirmation is the
// caller's job (see RegistrationForm).
func (s *Session) Register(ctx context.Context, name, email, password string, tier api.MembershipType) Result {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return Failure("Name, email and password are required.")
	}
	if !tier.Valid() {
		return Failure("Unknown membership type " + string(tier) + ".")
	}

	gen := s.generation()
	resp, err := s.backend.Register(ctx, api.RegisterRequest{
		Name:           name,
		Email:          email,
		Password:       password,
		MembershipType: tier,
	})
	if err != nil {
		s.logger.Info("registration failed", "email", email, "error", err)
		return Failure(describe(err, "Registration failed."))
	}
	return s.establish(gen, resp)
}

// Logout clears the token and user. It never fails and needs no network.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if err := s.store.Clear(); err != nil {
		s.logger.Error("clearing credentials on logout", "error", err)
	}
	if s.user != nil {
		s.logger.Info("logged out", "user_id", s.user.ID)
	}
	s.user = nil
}

// CurrentUser returns a copy of the signed-in user. A user whose token has
// already been cleared by the pipeline is reported as absent.
func (s *Session) CurrentUser() (*api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, false
	}
	if _, ok := s.store.Get(); !ok {
		return nil, false
	}
	u := *s.user
	return &u, true
}

// IsAuthenticated reports whether a token is stored and a user is loaded.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.store.Get()
	return ok && s.user != nil
}

// Restore loads the profile for a token persisted by an earlier run.
func (s *Session) Restore(ctx context.Context) Result {
	if _, ok := s.store.Get(); !ok {
		return Failure(msgNotSignedIn)
	}
	return s.RefreshProfile(ctx)
}

// RefreshProfile re-reads the profile from GET /auth/me.
func (s *Session) RefreshProfile(ctx context.Context) Result {
	if _, ok := s.store.Get(); !ok {
		return Failure(msgNotSignedIn)
	}
	gen := s.generation()
	user, err := s.backend.Me(ctx)
	if err != nil {
		return Failure(describeAuthed(err, "Could not load your profile."))
	}
	return s.applyUser(gen, user)
}

// UpdateProfile sends a partial update and stores the returned profile.
func (s *Session) UpdateProfile(ctx context.Context, upd api.ProfileUpdate) Result {
	if !s.IsAuthenticated() {
		return Failure(msgNotSignedIn)
	}
	if upd.MembershipType != nil && !upd.MembershipType.Valid() {
		return Failure("Unknown membership type " + string(*upd.MembershipType) + ".")
	}
	gen := s.generation()
	user, err := s.backend.UpdateProfile(ctx, upd)
	if err != nil {
		return Failure(describeAuthed(err, "Could not update your profile."))
	}
	return s.applyUser(gen, user)
}

func (s *Session) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Session) establish(gen uint64, resp *api.AuthResponse) Result {
	if resp == nil || resp.AccessToken == "" || resp.User.ID == "" {
		return Failure(msgBadResponse)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Info("discarding stale sign-in", "user_id", resp.User.ID)
		return Failure(msgStale)
	}
	if err := s.store.Set(resp.AccessToken); err != nil {
		s.logger.Error("storing token", "error", err)
		return Failure(msgSaveFailed)
	}
	s.gen++
	u := resp.User
	s.user = &u
	s.logger.Info("signed in", "user_id", u.ID, "membership", u.MembershipType)

	out := u
	return Success(&out)
}

func (s *Session) applyUser(gen uint64, user *api.User) Result {
	if user == nil || user.ID == "" {
		return Failure(msgBadResponse)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return Failure(msgStale)
	}
	if _, ok := s.store.Get(); !ok {
		return Failure(msgNotSignedIn)
	}
	u := *user
	s.user = &u

	out := u
	return Success(&out)
}

// expire runs on the request goroutine after the pipeline cleared the
// token for a 401.
func (s *Session) expire(ev api.SessionExpired) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if err := s.store.Clear(); err != nil {
		s.logger.Error("clearing credentials on expiry", "error", err)
	}
	s.user = nil
	s.logger.Info("session expired", "path", ev.Path)
}

// describe maps a client error to a message for the user. fallback is used
// for HTTP errors without a server-provided message.
func describe(err error, fallback string) string {
	var herr *api.HTTPError
	var derr *api.DecodeError
	switch {
	case errors.As(err, &herr):
		if herr.Message != "" {
			return herr.Message
		}
		if errors.Is(err, api.ErrUnauthorized) {
			return msgExpired
		}
		return fallback
	case errors.As(err, &derr):
		return msgBadResponse
	default:
		return msgUnreachable
	}
}

// describeAuthed is describe for calls that need a token, where a 401 means
// the session ran out rather than bad credentials.
func describeAuthed(err error, fallback string) string {
	if errors.Is(err, api.ErrUnauthorized) {
		return msgExpired
	}
	return describe(err, fallback)
}
