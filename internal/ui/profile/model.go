package profile

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/trackside/internal/auth"
	"github.com/fragmede/trackside/internal/ui/messages"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0B8457")).Bold(true).Padding(1, 0)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Bold(true)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// Model is the signed-in member's profile.
type Model struct {
	session *auth.Session
	loading bool
	err     string
	width   int
	height  int

	editing bool
	saving  bool
	focus   int
	inputs  [2]textinput.Model // name, email
}

// New creates a profile view for the session's current user.
func New(session *auth.Session) Model {
	m := Model{session: session}
	for i, placeholder := range []string{"full name", "email"} {
		in := textinput.New()
		in.Placeholder = placeholder
		in.Width = 30
		m.inputs[i] = in
	}
	return m
}

// Editing reports whether the profile editor has the keyboard.
func (m Model) Editing() bool { return m.editing }

// Err returns the message shown under the profile.
func (m Model) Err() string { return m.err }

// Init re-reads the profile from the server.
func (m Model) Init() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return messages.ProfileLoadedMsg{Result: session.RefreshProfile(context.Background())}
	}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ProfileLoadedMsg:
		m.loading = false
		m.err = msg.Result.Message()
	case messages.ProfileUpdatedMsg:
		m.saving = false
		m.err = msg.Result.Message()
		if msg.Result.OK() {
			m.editing = false
		}
	case tea.KeyMsg:
		if m.editing {
			return m.updateEdit(msg)
		}
		switch msg.String() {
		case "e":
			u, ok := m.session.CurrentUser()
			if !ok {
				return m, nil
			}
			m.editing = true
			m.err = ""
			m.inputs[0].SetValue(u.Name)
			m.inputs[1].SetValue(u.Email)
			cmd := m.setFocus(0)
			return m, cmd
		case "r":
			m.loading = true
			return m, m.Init()
		case "o":
			m.session.Logout()
			return m, func() tea.Msg { return messages.LoggedOutMsg{} }
		}
	}
	return m, nil
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	m.inputs[1-i].Blur()
	return m.inputs[i].Focus()
}

func (m Model) updateEdit(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.err = ""
		return m, nil
	case "tab", "shift+tab", "up", "down":
		cmd := m.setFocus(1 - m.focus)
		return m, cmd
	case "enter":
		return m.save()
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) save() (Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	form := auth.ProfileForm{Name: m.inputs[0].Value(), Email: m.inputs[1].Value()}
	if msg := form.Validate(); msg != "" {
		m.err = msg
		return m, nil
	}
	u, ok := m.session.CurrentUser()
	if !ok {
		m.editing = false
		return m, nil
	}
	upd, changed := form.Changes(*u)
	if !changed {
		m.editing = false
		m.err = ""
		return m, nil
	}
	m.saving = true
	m.err = ""
	session := m.session
	return m, func() tea.Msg {
		return messages.ProfileUpdatedMsg{Result: session.UpdateProfile(context.Background(), upd)}
	}
}

// View renders the profile.
func (m Model) View() string {
	u, ok := m.session.CurrentUser()
	if !ok {
		return titleStyle.Render("Not logged in") + "\n" + labelStyle.Render("Press L to log in.")
	}

	row := func(label, value string) string {
		return labelStyle.Render(label+": ") + valueStyle.Render(value) + "\n"
	}

	var sb strings.Builder
	if m.editing {
		sb.WriteString(titleStyle.Render("Edit profile"))
		sb.WriteString("\n")
		sb.WriteString(labelStyle.Render("Name: ") + m.inputs[0].View() + "\n")
		sb.WriteString(labelStyle.Render("Email: ") + m.inputs[1].View() + "\n")
		if m.saving {
			sb.WriteString("\nSaving...")
		}
		if m.err != "" {
			sb.WriteString("\n" + errorStyle.Render(m.err))
		}
		sb.WriteString("\n\n" + labelStyle.Render("tab switch field  enter save  esc cancel"))
		sb.WriteString("\n" + labelStyle.Render("A new email address needs a fresh login."))
		return sb.String()
	}

	sb.WriteString(titleStyle.Render(u.Name))
	sb.WriteString("\n")
	sb.WriteString(row("Email", u.Email))
	sb.WriteString(row("Member", u.MemberID))
	sb.WriteString(row("Membership", string(u.MembershipType)+" ("+string(u.MembershipStatus)+")"))
	if !u.JoinDate.IsZero() {
		sb.WriteString(row("Joined", u.JoinDate.Format("January 2, 2006")))
	}
	if u.QRCode != "" {
		sb.WriteString(row("Access code", u.QRCode))
	}
	if m.loading {
		sb.WriteString("\nRefreshing...")
	}
	if m.err != "" {
		sb.WriteString("\n" + errorStyle.Render(m.err))
	}
	sb.WriteString("\n\n" + labelStyle.Render("e edit  r refresh  o log out"))
	return sb.String()
}
