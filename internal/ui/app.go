package ui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/trackside/internal/api"
	"github.com/fragmede/trackside/internal/auth"
	"github.com/fragmede/trackside/internal/cache"
	"github.com/fragmede/trackside/internal/config"
	"github.com/fragmede/trackside/internal/ui/community"
	"github.com/fragmede/trackside/internal/ui/events"
	"github.com/fragmede/trackside/internal/ui/home"
	"github.com/fragmede/trackside/internal/ui/login"
	"github.com/fragmede/trackside/internal/ui/membership"
	"github.com/fragmede/trackside/internal/ui/messages"
	"github.com/fragmede/trackside/internal/ui/profile"
	"github.com/fragmede/trackside/internal/ui/statusbar"
)

// ViewType identifies the active view. The first five match
// statusbar.Tabs.
type ViewType int

const (
	ViewHome ViewType = iota
	ViewEvents
	ViewCommunity
	ViewMembership
	ViewProfile
	ViewLogin
)

const tabCount = int(ViewProfile) + 1

// App is the root Bubble Tea model.
type App struct {
	// View state
	activeView    ViewType
	previousViews []ViewType
	initialized   map[ViewType]bool

	// Child models
	home       home.Model
	events     events.Model
	community  community.Model
	membership membership.Model
	profile    profile.Model
	loginForm  login.Model
	statusBar  statusbar.Model

	// Shared state
	cfg     config.Config
	session *auth.Session
	logger  *slog.Logger

	// Dimensions
	width  int
	height int
}

// NewApp creates the root application model.
func NewApp(cfg config.Config, client *api.Client, db *cache.DB, session *auth.Session, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	authed := session.IsAuthenticated
	return &App{
		activeView:  ViewHome,
		initialized: map[ViewType]bool{ViewHome: true},
		home:        home.New(client, authed),
		events:      events.New(cfg, client, db, authed),
		community:   community.New(client, cfg.FetchPageSize, authed),
		membership:  membership.New(cfg, client, db, authed),
		profile:     profile.New(session),
		loginForm:   login.New(session),
		statusBar:   statusbar.New(),
		cfg:         cfg,
		session:     session,
		logger:      logger,
	}
}

// ForwardSessionExpiry delivers the client's expiry events to the program
// through send, normally (*tea.Program).Send.
func ForwardSessionExpiry(client *api.Client, send func(tea.Msg)) {
	client.OnSessionExpired(func(ev api.SessionExpired) {
		send(messages.SessionExpiredMsg{Path: ev.Path})
	})
}

// Init starts the application.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.home.Init(), a.restoreSession())
}

// ActiveView returns the view on screen.
func (a *App) ActiveView() ViewType {
	return a.activeView
}

func (a *App) restoreSession() tea.Cmd {
	session := a.session
	return func() tea.Msg {
		return messages.SessionRestoredMsg{Result: session.Restore(context.Background())}
	}
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentHeight := msg.Height - 1 // Reserve 1 line for status bar.
		a.home.SetSize(msg.Width, contentHeight)
		a.events.SetSize(msg.Width, contentHeight)
		a.community.SetSize(msg.Width, contentHeight)
		a.membership.SetSize(msg.Width, contentHeight)
		a.profile.SetSize(msg.Width, contentHeight)
		a.loginForm.SetSize(msg.Width, contentHeight)
		a.statusBar.SetSize(msg.Width)
		return a, nil

	case tea.KeyMsg:
		if a.activeView == ViewLogin {
			switch msg.String() {
			case "esc":
				return a, a.goBack()
			case "ctrl+c":
				return a, tea.Quit
			}
			break
		}
		if a.formHasKeys() {
			break
		}
		switch {
		case key.Matches(msg, Keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, Keys.Back):
			if len(a.previousViews) > 0 {
				return a, a.goBack()
			}
			if a.activeView != ViewHome {
				return a, a.switchView(ViewHome)
			}
			return a, nil
		case key.Matches(msg, Keys.NextView):
			return a, a.switchView(ViewType((int(a.activeView) + 1) % tabCount))
		case key.Matches(msg, Keys.PrevView):
			return a, a.switchView(ViewType((int(a.activeView) - 1 + tabCount) % tabCount))
		case key.Matches(msg, Keys.Home):
			return a, a.switchView(ViewHome)
		case key.Matches(msg, Keys.Events):
			return a, a.switchView(ViewEvents)
		case key.Matches(msg, Keys.Community):
			return a, a.switchView(ViewCommunity)
		case key.Matches(msg, Keys.Membership):
			return a, a.switchView(ViewMembership)
		case key.Matches(msg, Keys.ProfileTab), key.Matches(msg, Keys.Profile):
			return a, a.switchView(ViewProfile)
		case key.Matches(msg, Keys.Login):
			if !a.session.IsAuthenticated() {
				a.openLogin("")
			}
			return a, nil
		}

	case messages.OpenLoginMsg:
		a.openLogin("")
		return a, nil

	case messages.OpenProfileMsg:
		return a, a.switchView(ViewProfile)

	case messages.GoBackMsg:
		return a, a.goBack()

	case messages.LoginResultMsg:
		a.loginForm, _ = a.loginForm.Update(msg)
		if !msg.Result.OK() {
			return a, nil
		}
		u := msg.Result.User()
		a.signedIn(u)
		a.statusBar.SetStatus("Welcome, "+u.Name, false)
		if a.activeView == ViewLogin {
			a.goBack()
		}
		return a, a.membership.Init()

	case messages.SessionRestoredMsg:
		if msg.Result.OK() {
			a.signedIn(msg.Result.User())
		}
		return a, nil

	case messages.ProfileLoadedMsg:
		if msg.Result.OK() {
			a.signedIn(msg.Result.User())
		}
		a.profile, _ = a.profile.Update(msg)
		return a, nil

	case messages.LoggedOutMsg:
		a.signedOut()
		a.statusBar.SetStatus("Logged out", false)
		return a, nil

	case messages.SessionExpiredMsg:
		a.signedOut()
		// A rejected login already shows its own error on the form.
		if a.activeView != ViewLogin {
			a.logger.Info("redirecting to login", "route", a.cfg.LoginRoute, "path", msg.Path)
			a.openLogin(auth.ExpiredMessage)
			a.statusBar.SetStatus(auth.ExpiredMessage, true)
		}
		return a, nil

	case messages.EventRegistrationMsg:
		switch {
		case msg.Err == nil && msg.Registered:
			a.statusBar.SetStatus("Registered for event", false)
		case msg.Err == nil:
			a.statusBar.SetStatus("Registration cancelled", false)
		default:
			a.reportError(msg.Err)
		}
		var cmd tea.Cmd
		a.events, cmd = a.events.Update(msg)
		return a, cmd

	case messages.PostLikedMsg:
		if msg.Err != nil {
			a.reportError(msg.Err)
		}
		var cmd tea.Cmd
		a.community, cmd = a.community.Update(msg)
		return a, cmd

	case messages.PostCreatedMsg:
		if msg.Err == nil {
			a.statusBar.SetStatus("Post published", false)
		} else {
			a.reportError(msg.Err)
		}
		var cmd tea.Cmd
		a.community, cmd = a.community.Update(msg)
		return a, cmd

	case messages.ProfileUpdatedMsg:
		if msg.Result.OK() {
			a.signedIn(msg.Result.User())
			a.statusBar.SetStatus("Profile updated", false)
		}
		a.profile, _ = a.profile.Update(msg)
		return a, nil

	case messages.SubscribedMsg:
		a.membership, _ = a.membership.Update(msg)
		if msg.Err != nil {
			a.reportError(msg.Err)
			return a, nil
		}
		a.statusBar.SetStatus(msg.Subscription.Message, false)
		return a, tea.Batch(a.membership.Init(), a.profile.Init())

	case messages.CardRenewedMsg:
		a.membership, _ = a.membership.Update(msg)
		if msg.Err != nil {
			a.reportError(msg.Err)
			return a, nil
		}
		a.statusBar.SetStatus(msg.Renewal.Message, false)
		return a, a.membership.Init()

	case messages.AccessCheckedMsg:
		a.membership, _ = a.membership.Update(msg)
		if msg.Err != nil {
			a.reportError(msg.Err)
			return a, nil
		}
		a.statusBar.SetStatus(msg.Result.Message, !msg.Result.Valid)
		return a, nil

	case messages.CheckInMsg:
		if msg.Err != nil {
			a.reportError(msg.Err)
			return a, nil
		}
		a.statusBar.SetStatus(msg.Result.Message, !msg.Result.Valid)
		return a, nil

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
		return a, nil

	// Data messages go to their owner whichever view is active.
	case messages.OverviewLoadedMsg:
		a.home, _ = a.home.Update(msg)
		return a, nil
	case messages.EventsLoadedMsg:
		var cmd tea.Cmd
		a.events, cmd = a.events.Update(msg)
		return a, cmd
	case messages.PostsLoadedMsg:
		a.community, _ = a.community.Update(msg)
		return a, nil
	case messages.MembershipLoadedMsg:
		a.membership, _ = a.membership.Update(msg)
		return a, nil
	}

	// Route to active view.
	var cmd tea.Cmd
	switch a.activeView {
	case ViewHome:
		a.home, cmd = a.home.Update(msg)
	case ViewEvents:
		a.events, cmd = a.events.Update(msg)
	case ViewCommunity:
		a.community, cmd = a.community.Update(msg)
	case ViewMembership:
		a.membership, cmd = a.membership.Update(msg)
	case ViewProfile:
		a.profile, cmd = a.profile.Update(msg)
	case ViewLogin:
		a.loginForm, cmd = a.loginForm.Update(msg)
	}
	cmds = append(cmds, cmd)

	a.statusBar, cmd = a.statusBar.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View renders the application.
func (a *App) View() string {
	var content string
	switch a.activeView {
	case ViewHome:
		content = a.home.View() + "\n\n" + helpLine()
	case ViewEvents:
		content = a.events.View()
	case ViewCommunity:
		content = a.community.View()
	case ViewMembership:
		content = a.membership.View()
	case ViewProfile:
		content = a.profile.View()
	case ViewLogin:
		content = a.loginForm.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

// formHasKeys reports whether the active view is capturing text input, so
// global keys must not fire.
func (a *App) formHasKeys() bool {
	switch a.activeView {
	case ViewEvents:
		return a.events.Filtering()
	case ViewCommunity:
		return a.community.Composing()
	case ViewProfile:
		return a.profile.Editing()
	}
	return false
}

// reportError shows err in the status bar. A 401 is left to the expiry
// redirect.
func (a *App) reportError(err error) {
	if !errors.Is(err, api.ErrUnauthorized) {
		a.statusBar.SetStatus(errorText(err), true)
	}
}

func (a *App) signedIn(u *api.User) {
	if u == nil {
		return
	}
	a.statusBar.SetUser(u.Name, string(u.MembershipType))
	a.home.SetMember(u.Name)
}

func (a *App) signedOut() {
	a.statusBar.SetUser("", "")
	a.home.SetMember("")
	a.membership.ClearCard()
}

// openLogin pushes a fresh login form, optionally showing msg.
func (a *App) openLogin(msg string) {
	if a.activeView != ViewLogin {
		a.pushView(ViewLogin)
	}
	a.loginForm = login.NewWithMessage(a.session, msg)
	a.loginForm.SetSize(a.width, a.height-1)
}

// switchView jumps to a top-level view, loading it on first use.
func (a *App) switchView(v ViewType) tea.Cmd {
	a.activeView = v
	a.previousViews = nil
	if int(v) < tabCount {
		a.statusBar.SetActiveTab(int(v))
	}
	if a.initialized[v] && v != ViewProfile {
		return nil
	}
	a.initialized[v] = true
	switch v {
	case ViewHome:
		return a.home.Init()
	case ViewEvents:
		return a.events.Init()
	case ViewCommunity:
		return a.community.Init()
	case ViewMembership:
		return a.membership.Init()
	case ViewProfile:
		if a.session.IsAuthenticated() {
			return a.profile.Init()
		}
	}
	return nil
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
}

func (a *App) goBack() tea.Cmd {
	if len(a.previousViews) > 0 {
		a.activeView = a.previousViews[len(a.previousViews)-1]
		a.previousViews = a.previousViews[:len(a.previousViews)-1]
	}
	if int(a.activeView) < tabCount {
		a.statusBar.SetActiveTab(int(a.activeView))
	}
	return nil
}

func errorText(err error) string {
	var herr *api.HTTPError
	if errors.As(err, &herr) && herr.Message != "" {
		return herr.Message
	}
	return err.Error()
}
