package home

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/trackside/internal/api"
	"github.com/fragmede/trackside/internal/ui/messages"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0B8457")).Bold(true).Padding(1, 0)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Bold(true)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	cardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#0B8457")).Padding(0, 1)
)

// Model is the landing view: club totals, upcoming events and plans.
type Model struct {
	overview *api.Overview
	err      string
	loading  bool
	client   *api.Client
	authed   func() bool
	greeting string
	width    int
	height   int
}

func New(client *api.Client, authed func() bool) Model {
	return Model{client: client, authed: authed, loading: true}
}

// Init fetches the overview.
func (m Model) Init() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ov, err := client.GetOverview(context.Background())
		return messages.OverviewLoadedMsg{Overview: ov, Err: err}
	}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetMember personalises the header; "" resets it.
func (m *Model) SetMember(name string) {
	m.greeting = name
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.OverviewLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.overview = msg.Overview
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.Init()
		case "s":
			return m, m.checkIn()
		}
	}
	return m, nil
}

// checkIn issues a fresh access code for the member and scans it at the
// front desk endpoint.
func (m Model) checkIn() tea.Cmd {
	if !m.authed() {
		return func() tea.Msg { return messages.OpenLoginMsg{} }
	}
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()
		code, err := client.GenerateAccessCode(ctx)
		if err != nil {
			return messages.CheckInMsg{Err: err}
		}
		res, err := client.ScanQR(ctx, code.Data)
		return messages.CheckInMsg{Result: res, Err: err}
	}
}

// View renders the overview.
func (m Model) View() string {
	var sb strings.Builder
	title := "Athletics Northern Territory"
	if m.greeting != "" {
		title = "Welcome back, " + m.greeting
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	switch {
	case m.loading && m.overview == nil:
		sb.WriteString("Loading...")
		return sb.String()
	case m.err != "":
		sb.WriteString("Error: " + m.err)
		return sb.String()
	case m.overview == nil:
		return sb.String()
	}

	st := m.overview.Stats
	stat := func(label string, n int) string {
		return cardStyle.Render(valueStyle.Render(fmt.Sprintf("%d", n)) + "\n" + labelStyle.Render(label))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		stat("members", st.TotalMembers),
		stat("active events", st.ActiveEvents),
		stat("completed", st.CompletedEvents),
		stat("training hours", st.TrainingHours),
	))
	sb.WriteString("\n\n")

	sb.WriteString(labelStyle.Render("Upcoming"))
	sb.WriteString("\n")
	for _, ev := range m.overview.Upcoming {
		sb.WriteString(valueStyle.Render(ev.Name) + "  " + labelStyle.Render(ev.Date))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(labelStyle.Render("Memberships"))
	sb.WriteString("\n")
	for _, p := range m.overview.Plans {
		line := fmt.Sprintf("%s  $%.0f %s", p.Name, p.Price, strings.ToLower(p.Duration))
		if p.Popular {
			line += "  (most popular)"
		}
		sb.WriteString(valueStyle.Render(line))
		sb.WriteString("\n")
	}
	return sb.String()
}
