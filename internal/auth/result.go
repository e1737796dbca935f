package auth

import "github.com/fragmede/trackside/internal/api"

// Result is the outcome of a session operation: either a user or a
// human-readable failure message, never both.
type Result struct {
	user    *api.User
	failure string
}

// Success wraps a user.
func Success(u *api.User) Result {
	return Result{user: u}
}

// Failure wraps a message. An empty message is replaced with a generic one
// so callers always have something to show.
func Failure(msg string) Result {
	if msg == "" {
		msg = msgUnexpected
	}
	return Result{failure: msg}
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.failure == "" && r.user != nil }

// User returns the user of a successful result, or nil.
func (r Result) User() *api.User { return r.user }

// Message returns the failure message, or "" on success.
func (r Result) Message() string { return r.failure }
