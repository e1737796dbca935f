package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/trackside/internal/api"
	"github.com/fragmede/trackside/internal/auth"
	"github.com/fragmede/trackside/internal/ui/messages"
)

var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0B8457"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0B8457")).Bold(true).
			Padding(1, 0)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4A300")).Bold(true).Underline(true).Padding(0, 1)
)

// Authenticator signs members in. *auth.Session satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) auth.Result
	Register(ctx context.Context, name, email, password string, tier api.MembershipType) auth.Result
}

// Mode selects the login or the registration form.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// Input order per mode. The tier selector follows the last input in
// register mode.
const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	fieldCount
)

// Model is the login and registration view.
type Model struct {
	inputs     [fieldCount]textinput.Model
	mode       Mode
	focus      int
	tier       int
	err        string
	submitting bool
	auth       Authenticator
	width      int
	height     int
}

// New creates a login form.
func New(a Authenticator) Model {
	newInput := func(placeholder string, secret bool) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.Width = 30
		if secret {
			in.EchoMode = textinput.EchoPassword
		}
		return in
	}

	m := Model{auth: a}
	m.inputs[fieldName] = newInput("full name", false)
	m.inputs[fieldEmail] = newInput("email", false)
	m.inputs[fieldPassword] = newInput("password", true)
	m.inputs[fieldConfirm] = newInput("confirm password", true)
	m.setFocus(0)
	return m
}

// NewWithMessage creates a login form that already shows msg, used when the
// session expired.
func NewWithMessage(a Authenticator, msg string) Model {
	m := New(a)
	m.err = msg
	return m
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Mode returns the active form.
func (m Model) Mode() Mode { return m.mode }

// Err returns the message shown under the form.
func (m Model) Err() string { return m.err }

// Submitting reports whether a request is in flight.
func (m Model) Submitting() bool { return m.submitting }

// fields lists the inputs of the active mode in focus order.
func (m Model) fields() []int {
	if m.mode == ModeRegister {
		return []int{fieldName, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldEmail, fieldPassword}
}

// stops is the number of focus positions: the inputs plus the tier
// selector in register mode.
func (m Model) stops() int {
	n := len(m.fields())
	if m.mode == ModeRegister {
		n++
	}
	return n
}

func (m *Model) setFocus(i int) {
	m.focus = i
	fields := m.fields()
	for _, f := range []int{fieldName, fieldEmail, fieldPassword, fieldConfirm} {
		m.inputs[f].Blur()
	}
	if i < len(fields) {
		m.inputs[fields[i]].Focus()
	}
}

func (m Model) onTier() bool {
	return m.mode == ModeRegister && m.focus == len(m.fields())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % m.stops())
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus - 1 + m.stops()) % m.stops())
			return m, nil
		case "ctrl+t":
			if m.submitting {
				return m, nil
			}
			if m.mode == ModeLogin {
				m.mode = ModeRegister
			} else {
				m.mode = ModeLogin
			}
			m.err = ""
			m.setFocus(0)
			return m, nil
		case "left", "right":
			if m.onTier() {
				n := len(api.MembershipTypes)
				if msg.String() == "right" {
					m.tier = (m.tier + 1) % n
				} else {
					m.tier = (m.tier - 1 + n) % n
				}
				return m, nil
			}
		case "enter":
			return m.submit()
		}

	case messages.LoginResultMsg:
		m.submitting = false
		if !msg.Result.OK() {
			m.err = msg.Result.Message()
		} else {
			m.err = ""
		}
		return m, nil
	}

	if m.onTier() {
		return m, nil
	}
	fields := m.fields()
	var cmd tea.Cmd
	f := fields[m.focus]
	m.inputs[f], cmd = m.inputs[f].Update(msg)
	return m, cmd
}

// submit validates the active form and, if it passes, returns the command
// that performs the request. A form that fails validation yields no command.
func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	a := m.auth

	if m.mode == ModeLogin {
		if msg := (auth.LoginForm{Email: email, Password: password}).Validate(); msg != "" {
			m.err = msg
			return m, nil
		}
		m.submitting = true
		m.err = ""
		return m, func() tea.Msg {
			return messages.LoginResultMsg{Result: a.Login(context.Background(), email, password)}
		}
	}

	form := auth.RegistrationForm{
		Name:            strings.TrimSpace(m.inputs[fieldName].Value()),
		Email:           email,
		Password:        password,
		ConfirmPassword: m.inputs[fieldConfirm].Value(),
		MembershipType:  api.MembershipTypes[m.tier],
	}
	if msg := form.Validate(); msg != "" {
		m.err = msg
		return m, nil
	}
	m.submitting = true
	m.err = ""
	return m, func() tea.Msg {
		return messages.LoginResultMsg{
			Result: a.Register(context.Background(), form.Name, form.Email, form.Password, form.MembershipType),
		}
	}
}

// View renders the form.
func (m Model) View() string {
	var sb strings.Builder

	loginTab, registerTab := activeTabStyle, tabStyle
	title := "Log in to Trackside"
	if m.mode == ModeRegister {
		loginTab, registerTab = tabStyle, activeTabStyle
		title = "Join the club"
	}
	sb.WriteString(loginTab.Render("Login") + registerTab.Render("Register"))
	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	labels := map[int]string{
		fieldName:     "Name:",
		fieldEmail:    "Email:",
		fieldPassword: "Password:",
		fieldConfirm:  "Confirm password:",
	}
	for _, f := range m.fields() {
		sb.WriteString(labelStyle.Render(labels[f]))
		sb.WriteString("\n")
		sb.WriteString(m.inputs[f].View())
		sb.WriteString("\n\n")
	}

	if m.mode == ModeRegister {
		sb.WriteString(labelStyle.Render("Membership:"))
		sb.WriteString("\n")
		for i, t := range api.MembershipTypes {
			label := string(t)
			if i == m.tier {
				label = "[" + label + "]"
				if m.onTier() {
					label = focusedStyle.Render(label)
				}
			}
			sb.WriteString(label + " ")
		}
		sb.WriteString("\n\n")
	}

	if m.err != "" {
		sb.WriteString(errorStyle.Render(m.err))
		sb.WriteString("\n\n")
	}

	if m.submitting {
		sb.WriteString("Signing in...")
	} else {
		sb.WriteString(focusedStyle.Render("Enter") + " to submit, " +
			focusedStyle.Render("Ctrl+T") + " to switch form, " +
			focusedStyle.Render("Esc") + " to cancel")
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
