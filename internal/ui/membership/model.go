package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/trackside/internal/api"
	"github.com/fragmede/trackside/internal/cache"
	"github.com/fragmede/trackside/internal/config"
	"github.com/fragmede/trackside/internal/ui/messages"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0B8457")).Bold(true).Padding(1, 0)
	planStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(34)
	popularStyle = planStyle.BorderForeground(lipgloss.Color("#F4A300"))
	chosenStyle  = planStyle.BorderForeground(lipgloss.Color("#0B8457")).BorderStyle(lipgloss.ThickBorder())
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#0B8457")).Padding(0, 2)
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
)

// Model shows the plans and, for a signed-in member, their card.
type Model struct {
	plans   []api.Plan
	card    *api.MemberCard
	cursor  int
	busy    bool
	err     string
	loading bool
	client  *api.Client
	cache   *cache.DB
	cfg     config.Config
	authed  func() bool
	width   int
	height  int
}

func New(cfg config.Config, client *api.Client, db *cache.DB, authed func() bool) Model {
	return Model{cfg: cfg, client: client, cache: db, authed: authed, loading: true}
}

// Init loads plans (cache first) and the member card.
func (m Model) Init() tea.Cmd {
	client := m.client
	db := m.cache
	ttl := m.cfg.PlanTTL
	withCard := m.authed()

	return func() tea.Msg {
		ctx := context.Background()
		var out messages.MembershipLoadedMsg

		plans, fresh, err := db.GetPlans(ttl)
		if err != nil {
			slog.Warn("reading cached plans", "error", err)
		}
		if !fresh || len(plans) == 0 {
			fetched, ferr := client.GetPlans(ctx)
			switch {
			case ferr == nil:
				plans = fetched
				if err := db.PutPlans(plans); err != nil {
					slog.Warn("caching plans", "error", err)
				}
			case len(plans) == 0:
				out.Err = ferr
			}
		}
		out.Plans = plans

		if withCard {
			card, err := client.GetMyCard(ctx)
			if err != nil && !errors.Is(err, api.ErrUnauthorized) && out.Err == nil {
				out.Err = err
			}
			out.Card = card
		}
		return out
	}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// ClearCard drops the member card after logout or expiry.
func (m *Model) ClearCard() {
	m.card = nil
}

// Selected returns the highlighted plan, if any.
func (m Model) Selected() (api.Plan, bool) {
	if m.cursor < 0 || m.cursor >= len(m.plans) {
		return api.Plan{}, false
	}
	return m.plans[m.cursor], true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.MembershipLoadedMsg:
		m.loading = false
		m.plans = msg.Plans
		m.card = msg.Card
		m.err = ""
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		if m.cursor >= len(m.plans) {
			m.cursor = 0
		}
	case messages.SubscribedMsg:
		m.busy = false
	case messages.CardRenewedMsg:
		m.busy = false
	case messages.AccessCheckedMsg:
		m.busy = false
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.Init()
		case "h", "left":
			if m.cursor > 0 {
				m.cursor--
			}
		case "l", "right":
			if m.cursor < len(m.plans)-1 {
				m.cursor++
			}
		case "enter":
			if p, ok := m.Selected(); ok {
				return m.member(func(ctx context.Context, c *api.Client) tea.Msg {
					sub, err := c.Subscribe(ctx, p.ID)
					return messages.SubscribedMsg{Subscription: sub, Err: err}
				})
			}
		case "g":
			return m.member(func(ctx context.Context, c *api.Client) tea.Msg {
				renewal, err := c.GenerateCard(ctx)
				return messages.CardRenewedMsg{Renewal: renewal, Err: err}
			})
		case "v":
			if m.card != nil {
				memberID := m.card.MemberID
				return m.member(func(ctx context.Context, c *api.Client) tea.Msg {
					res, err := c.VerifyAccess(ctx, memberID)
					return messages.AccessCheckedMsg{Result: res, Err: err}
				})
			}
		}
	}
	return m, nil
}

// member runs call for a signed-in member, one at a time. Guests are sent
// to the login form.
func (m Model) member(call func(context.Context, *api.Client) tea.Msg) (Model, tea.Cmd) {
	if !m.authed() {
		return m, func() tea.Msg { return messages.OpenLoginMsg{} }
	}
	if m.busy {
		return m, nil
	}
	m.busy = true
	client := m.client
	return m, func() tea.Msg { return call(context.Background(), client) }
}

// View renders plans side by side with the card underneath.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Membership"))
	sb.WriteString("\n")
	if m.loading && m.plans == nil {
		return sb.String() + "Loading..."
	}
	if m.err != "" {
		sb.WriteString("Error: " + m.err + "\n\n")
	}

	boxes := make([]string, 0, len(m.plans))
	for i, p := range m.plans {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("%s\n$%.0f / %s\n\n", p.Name, p.Price, strings.ToLower(p.Duration)))
		for _, f := range p.Features {
			b.WriteString("- " + f + "\n")
		}
		style := planStyle
		switch {
		case i == m.cursor:
			style = chosenStyle
		case p.Popular:
			style = popularStyle
		}
		boxes = append(boxes, style.Render(strings.TrimRight(b.String(), "\n")))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	sb.WriteString("\n\n")

	if c := m.card; c != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "%s\nMember #%s  %s (%s)\n", c.Name, c.MemberID,
			strings.ToUpper(string(c.MembershipType)), c.MembershipStatus)
		if c.PlanDetails.Name != "" {
			fmt.Fprintf(&b, "%s  $%.0f\n", c.PlanDetails.Name, c.PlanDetails.Price)
		}
		b.WriteString(c.QRCode)
		if c.ValidUntil != "" {
			b.WriteString("\n" + metaStyle.Render("valid until "+c.ValidUntil))
		}
		sb.WriteString(cardStyle.Render(b.String()))
		sb.WriteString("\n\n" + metaStyle.Render("h/l choose plan  enter subscribe  g new card  v verify access  r refresh"))
	} else {
		sb.WriteString(metaStyle.Render("Log in (L) to see your membership card and subscribe."))
	}
	return sb.String()
}
