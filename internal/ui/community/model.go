package community

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/trackside/internal/api"
	"github.com/fragmede/trackside/internal/ui/messages"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0B8457")).Bold(true).Padding(1, 0)
	postStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#0B8457")).
			PaddingLeft(1)
	plainStyle = lipgloss.NewStyle().PaddingLeft(2)
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

const msgComposeEmpty = "Title and content are required."

// Model is the forum view.
type Model struct {
	posts    []api.Post
	stats    *api.CommunityStats
	cursor   int
	err      string
	loading  bool
	pageSize int
	client   *api.Client
	authed   func() bool
	width    int
	height   int

	// Compose form
	composing  bool
	submitting bool
	title      textinput.Model
	body       textarea.Model
	composeErr string
}

func New(client *api.Client, pageSize int, authed func() bool) Model {
	title := textinput.New()
	title.Placeholder = "title"
	title.Width = 50
	body := textarea.New()
	body.Placeholder = "What's happening at the track?"
	body.SetWidth(60)
	body.SetHeight(5)
	return Model{
		client:   client,
		pageSize: pageSize,
		authed:   authed,
		loading:  true,
		title:    title,
		body:     body,
	}
}

// Composing reports whether the new-post form has the keyboard.
func (m Model) Composing() bool { return m.composing }

// ComposeErr returns the message shown under the new-post form.
func (m Model) ComposeErr() string { return m.composeErr }

// Init loads the first page and the forum totals together.
func (m Model) Init() tea.Cmd {
	client := m.client
	limit := m.pageSize
	return func() tea.Msg {
		var out messages.PostsLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			posts, err := client.GetPosts(ctx, limit, 0)
			out.Posts = posts
			return err
		})
		g.Go(func() error {
			stats, err := client.GetCommunityStats(ctx)
			out.Stats = stats
			return err
		})
		out.Err = g.Wait()
		return out
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
	case messages.PostsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.posts = msg.Posts
		m.stats = msg.Stats
		if m.cursor >= len(m.posts) {
			m.cursor = 0
		}

	case messages.PostLikedMsg:
		if msg.Err == nil {
			return m, m.Init()
		}

	case messages.PostCreatedMsg:
		m.submitting = false
		if msg.Err != nil {
			m.composeErr = msg.Err.Error()
			return m, nil
		}
		m.closeCompose()
		return m, m.Init()

	case tea.KeyMsg:
		if m.composing {
			return m.updateCompose(msg)
		}
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.posts)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.loading = true
			return m, m.Init()
		case "l":
			if m.cursor < len(m.posts) {
				return m, m.like(m.posts[m.cursor].ID)
			}
		case "n":
			if !m.authed() {
				return m, func() tea.Msg { return messages.OpenLoginMsg{} }
			}
			m.composing = true
			m.composeErr = ""
			m.body.Blur()
			cmd := m.title.Focus()
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateCompose(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeCompose()
		return m, nil
	case "tab", "shift+tab":
		if m.title.Focused() {
			m.title.Blur()
			cmd := m.body.Focus()
			return m, cmd
		}
		m.body.Blur()
		cmd := m.title.Focus()
		return m, cmd
	case "ctrl+s":
		return m.submit()
	}

	var cmd tea.Cmd
	if m.title.Focused() {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	post := api.NewPost{
		Title:   strings.TrimSpace(m.title.Value()),
		Content: strings.TrimSpace(m.body.Value()),
	}
	if post.Title == "" || post.Content == "" {
		m.composeErr = msgComposeEmpty
		return m, nil
	}
	m.submitting = true
	m.composeErr = ""
	client := m.client
	return m, func() tea.Msg {
		created, err := client.CreatePost(context.Background(), post)
		return messages.PostCreatedMsg{Post: created, Err: err}
	}
}

func (m *Model) closeCompose() {
	m.composing = false
	m.submitting = false
	m.composeErr = ""
	m.title.Reset()
	m.title.Blur()
	m.body.Reset()
	m.body.Blur()
}

func (m Model) like(id string) tea.Cmd {
	if !m.authed() {
		return func() tea.Msg { return messages.OpenLoginMsg{} }
	}
	client := m.client
	return func() tea.Msg {
		return messages.PostLikedMsg{PostID: id, Err: client.LikePost(context.Background(), id)}
	}
}

// View renders the posts.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Community"))
	sb.WriteString("\n")
	if m.loading && m.posts == nil {
		return sb.String() + "Loading..."
	}
	if m.composing {
		sb.WriteString(postStyle.Render("New post"))
		sb.WriteString("\n")
		sb.WriteString(m.title.View() + "\n" + m.body.View() + "\n")
		switch {
		case m.submitting:
			sb.WriteString(metaStyle.Render("Publishing..."))
		case m.composeErr != "":
			sb.WriteString(errorStyle.Render(m.composeErr))
		}
		sb.WriteString("\n" + metaStyle.Render("tab switch field  ctrl+s publish  esc cancel"))
		return sb.String()
	}
	if m.err != "" {
		return sb.String() + "Error: " + m.err
	}
	if m.stats != nil {
		sb.WriteString(metaStyle.Render(fmt.Sprintf("%d members | %d posts | %d comments | %d likes",
			m.stats.TotalMembers, m.stats.TotalPosts, m.stats.TotalComments, m.stats.TotalLikes)))
		sb.WriteString("\n\n")
	}
	for i, p := range m.posts {
		body := postStyle.Render(p.Title) + "\n" + p.Content + "\n" +
			metaStyle.Render(fmt.Sprintf("%s | %s | %d likes | %d comments", p.Author, p.Timestamp, p.Likes, p.Comments))
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render(body))
		} else {
			sb.WriteString(plainStyle.Render(body))
		}
		sb.WriteString("\n\n")
	}
	sb.WriteString(metaStyle.Render("j/k move  l like  n new post  r refresh"))
	return sb.String()
}
