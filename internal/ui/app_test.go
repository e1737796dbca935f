package ui

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fragmede/trackside/internal/api"
	"github.com/fragmede/trackside/internal/auth"
	"github.com/fragmede/trackside/internal/cache"
	"github.com/fragmede/trackside/internal/config"
	"github.com/fragmede/trackside/internal/mockapi"
	"github.com/fragmede/trackside/internal/ui/messages"
)

type fixture struct {
	app     *App
	client  *api.Client
	session *auth.Session
	mock    *mockapi.Server
	store   *cache.TokenStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock, err := mockapi.New(mockapi.Config{Secret: "test-secret", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.CacheDir = dir
	cfg.DBPath = filepath.Join(dir, "trackside.db")

	db, err := cache.Open(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := cache.NewTokenStore(db, nil)
	client := api.NewClient(srv.URL+"/api", store)
	session := auth.NewSession(client, store, nil)
	return &fixture{
		app:     NewApp(cfg, client, db, session, nil),
		client:  client,
		session: session,
		mock:    mock,
		store:   store,
	}
}

func TestApp_SessionExpiredOpensLogin(t *testing.T) {
	f := newFixture(t)
	f.app.statusBar.SetUser("Sarah Johnson", "premium")

	f.app.Update(messages.SessionExpiredMsg{Path: "/membership/my-card"})

	assert.Equal(t, ViewLogin, f.app.ActiveView())
	assert.Equal(t, auth.ExpiredMessage, f.app.loginForm.Err())
	assert.Empty(t, f.app.statusBar.User())

	// Esc returns to where the member was.
	f.app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewHome, f.app.ActiveView())
}

func TestApp_ExpiryOnLoginViewKeepsFormError(t *testing.T) {
	f := newFixture(t)
	f.app.Update(messages.OpenLoginMsg{})
	require.Equal(t, ViewLogin, f.app.ActiveView())

	f.app.Update(messages.LoginResultMsg{Result: auth.Failure("Invalid credentials")})
	f.app.Update(messages.SessionExpiredMsg{Path: "/auth/login"})

	assert.Equal(t, ViewLogin, f.app.ActiveView())
	assert.Equal(t, "Invalid credentials", f.app.loginForm.Err())
	assert.Len(t, f.app.previousViews, 1)
}

func TestApp_LoginSuccessGoesBack(t *testing.T) {
	f := newFixture(t)
	f.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	require.Equal(t, ViewEvents, f.app.ActiveView())
	f.app.Update(messages.OpenLoginMsg{})
	require.Equal(t, ViewLogin, f.app.ActiveView())

	res := f.session.Login(context.Background(), mockapi.SeedEmail, mockapi.SeedPassword)
	require.True(t, res.OK(), res.Message())
	_, cmd := f.app.Update(messages.LoginResultMsg{Result: res})

	assert.NotNil(t, cmd)
	assert.Equal(t, ViewEvents, f.app.ActiveView())
	assert.Equal(t, "Sarah Johnson", f.app.statusBar.User())
}

func TestForwardSessionExpiry(t *testing.T) {
	f := newFixture(t)

	var mu sync.Mutex
	var sent []tea.Msg
	ForwardSessionExpiry(f.client, func(msg tea.Msg) {
		mu.Lock()
		sent = append(sent, msg)
		mu.Unlock()
	})

	ctx := context.Background()
	require.True(t, f.session.Login(ctx, mockapi.SeedEmail, mockapi.SeedPassword).OK())
	token, ok := f.store.Get()
	require.True(t, ok)
	require.NoError(t, f.mock.Revoke(token))

	_, err := f.client.GetMyCard(ctx)
	require.Error(t, err)

	mu.Lock()
	require.Len(t, sent, 1)
	msg := sent[0]
	mu.Unlock()
	assert.Equal(t, messages.SessionExpiredMsg{Path: "/membership/my-card"}, msg)
	assert.False(t, f.session.IsAuthenticated())

	f.app.Update(msg)
	assert.Equal(t, ViewLogin, f.app.ActiveView())
	assert.Contains(t, f.app.View(), "Your session has expired")
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	res := f.session.Login(context.Background(), mockapi.SeedEmail, mockapi.SeedPassword)
	require.True(t, res.OK(), res.Message())
	f.app.Update(messages.LoginResultMsg{Result: res})
}

func TestApp_ComposePost(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.app.Update(runes("3"))
	require.Equal(t, ViewCommunity, f.app.ActiveView())

	f.app.Update(runes("n"))
	require.True(t, f.app.community.Composing())

	// Digits and tab belong to the form while composing.
	f.app.Update(runes("Track night 2"))
	f.app.Update(tea.KeyMsg{Type: tea.KeyTab})
	f.app.Update(runes("Bring spikes"))
	assert.Equal(t, ViewCommunity, f.app.ActiveView())

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg := cmd()
	created, ok := msg.(messages.PostCreatedMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, created.Err)
	assert.Equal(t, "Track night 2", created.Post.Title)

	f.app.Update(created)
	assert.False(t, f.app.community.Composing())
	status, isErr := f.app.statusBar.Status()
	assert.Equal(t, "Post published", status)
	assert.False(t, isErr)

	posts, err := f.client.GetPosts(context.Background(), 50, 0)
	require.NoError(t, err)
	var titles []string
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	assert.Contains(t, titles, "Track night 2")
}

func TestApp_ComposeRequiresLogin(t *testing.T) {
	f := newFixture(t)
	f.app.Update(runes("3"))

	_, cmd := f.app.Update(runes("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.OpenLoginMsg{}, cmd())
	assert.False(t, f.app.community.Composing())
}

func TestApp_ComposeEmptyNoRequest(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.app.Update(runes("3"))
	f.app.Update(runes("n"))

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Equal(t, "Title and content are required.", f.app.community.ComposeErr())

	f.app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, f.app.community.Composing())
	assert.Equal(t, ViewCommunity, f.app.ActiveView())
}

func TestApp_EditProfile(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.app.Update(runes("5"))
	require.Equal(t, ViewProfile, f.app.ActiveView())

	f.app.Update(runes("e"))
	require.True(t, f.app.profile.Editing())

	// "q" and "2" are typed into the name instead of quitting or switching.
	f.app.Update(runes(" q2"))
	assert.Equal(t, ViewProfile, f.app.ActiveView())

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	updated, ok := msg.(messages.ProfileUpdatedMsg)
	require.True(t, ok, "got %T", msg)
	require.True(t, updated.Result.OK(), updated.Result.Message())

	f.app.Update(updated)
	assert.False(t, f.app.profile.Editing())
	assert.Equal(t, "Sarah Johnson q2", f.app.statusBar.User())
	status, _ := f.app.statusBar.Status()
	assert.Equal(t, "Profile updated", status)

	me, err := f.client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson q2", me.Name)
}

func TestApp_EditProfileUnchangedSkipsRequest(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.app.Update(runes("5"))
	f.app.Update(runes("e"))

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, f.app.profile.Editing())
}

func TestApp_Subscribe(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	plans, err := f.client.GetPlans(context.Background())
	require.NoError(t, err)
	f.app.Update(runes("4"))
	f.app.Update(messages.MembershipLoadedMsg{Plans: plans})
	require.Equal(t, ViewMembership, f.app.ActiveView())

	for i := 0; i < len(plans)-1; i++ {
		f.app.Update(runes("l"))
	}
	sel, ok := f.app.membership.Selected()
	require.True(t, ok)
	require.Equal(t, plans[len(plans)-1].ID, sel.ID)

	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	// A second press while the request is out is ignored.
	_, again := f.app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	msg := cmd()
	sub, ok := msg.(messages.SubscribedMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, sub.Err)

	_, cmd = f.app.Update(sub)
	assert.NotNil(t, cmd)
	status, _ := f.app.statusBar.Status()
	assert.Equal(t, sub.Subscription.Message, status)

	me, err := f.client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.MembershipType(sel.ID), me.MembershipType)
}

func TestApp_CheckIn(t *testing.T) {
	f := newFixture(t)

	_, cmd := f.app.Update(runes("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.OpenLoginMsg{}, cmd())

	f.login(t)
	_, cmd = f.app.Update(runes("s"))
	require.NotNil(t, cmd)
	msg := cmd()
	in, ok := msg.(messages.CheckInMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, in.Err)
	assert.True(t, in.Result.Valid)

	f.app.Update(in)
	status, isErr := f.app.statusBar.Status()
	assert.Equal(t, "Access granted! Welcome Sarah Johnson", status)
	assert.False(t, isErr)
}

func TestApp_SubscribeExpiredSessionLeavesStatus(t *testing.T) {
	f := newFixture(t)
	f.app.statusBar.SetStatus("", false)

	f.app.Update(messages.SubscribedMsg{Err: &api.HTTPError{Status: 401}})
	status, _ := f.app.statusBar.Status()
	assert.Empty(t, status)

	f.app.Update(messages.SubscribedMsg{Err: &api.HTTPError{Status: 404, Message: "Membership plan not found"}})
	status, isErr := f.app.statusBar.Status()
	assert.Equal(t, "Membership plan not found", status)
	assert.True(t, isErr)
}
