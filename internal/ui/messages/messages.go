package messages

import (
	"github.com/fragmede/trackside/internal/api"
	"github.com/fragmede/trackside/internal/auth"
)

// View transition messages.
type (
	GoBackMsg      struct{}
	OpenLoginMsg   struct{}
	OpenProfileMsg struct{}
	LoggedOutMsg   struct{}
)

// Data messages.
type (
	OverviewLoadedMsg struct {
		Overview *api.Overview
		Err      error
	}

	EventsLoadedMsg struct {
		Filter api.EventFilter
		Events []api.Event
		Err    error
	}

	EventRegistrationMsg struct {
		EventID    string
		Registered bool
		Err        error
	}

	PostsLoadedMsg struct {
		Posts []api.Post
		Stats *api.CommunityStats
		Err   error
	}

	PostLikedMsg struct {
		PostID string
		Err    error
	}

	PostCreatedMsg struct {
		Post *api.Post
		Err  error
	}

	MembershipLoadedMsg struct {
		Plans []api.Plan
		Card  *api.MemberCard
		Err   error
	}

	SubscribedMsg struct {
		Subscription *api.Subscription
		Err          error
	}

	CardRenewedMsg struct {
		Renewal *api.CardRenewal
		Err     error
	}

	// CheckInMsg is the outcome of scanning the member's own access code.
	CheckInMsg struct {
		Result *api.ScanResult
		Err    error
	}

	AccessCheckedMsg struct {
		Result *api.AccessCheck
		Err    error
	}

	// LoginResultMsg carries the outcome of a login or registration.
	LoginResultMsg struct {
		Result auth.Result
	}

	ProfileLoadedMsg struct {
		Result auth.Result
	}

	ProfileUpdatedMsg struct {
		Result auth.Result
	}

	SessionRestoredMsg struct {
		Result auth.Result
	}

	// SessionExpiredMsg is sent when the server rejected the stored token.
	SessionExpiredMsg struct {
		Path string
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
