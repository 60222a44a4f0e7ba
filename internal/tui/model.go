// Package tui is the terminal rendition of the inventory login page.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/loginform"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
)

// SessionReader reads the persisted session artifact.
type SessionReader interface {
	Get(ctx context.Context, key string) (string, error)
}

const (
	focusEmail = iota
	focusPassword
	focusButton
	focusCount
)

const msgMissingCredentials = "Email and password are required"

type submitDoneMsg struct {
	err error
}

type sessionMsg struct {
	token string
	user  *models.User
	err   error
}

// Model is the bubbletea model of the login form and the dashboard it leads to.
type Model struct {
	ctx      context.Context
	form     *loginform.Form
	router   *Router
	sessions SessionReader
	dashPath string

	email    textinput.Model
	password textinput.Model
	focus    int
	spinner  spinner.Model

	pending  bool
	errMsg   string
	token    string
	user     *models.User
	width    int
	quitting bool

	styles Styles
}

// New creates the model. The form must navigate through router.
func New(ctx context.Context, form *loginform.Form, router *Router, sessions SessionReader, dashboardPath string) Model {
	email := textinput.New()
	email.Placeholder = "you@flordegrace.edu.ph"
	email.Prompt = ""
	email.CharLimit = 254
	email.Width = 36
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 36

	if dashboardPath == "" {
		dashboardPath = loginform.DefaultDashboardPath
	}

	return Model{
		ctx:      ctx,
		form:     form,
		router:   router,
		sessions: sessions,
		dashPath: dashboardPath,
		email:    email,
		password: password,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:   DefaultStyles(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case submitDoneMsg:
		if errors.Is(msg.err, loginform.ErrSubmissionInFlight) {
			return m, nil
		}
		m.pending = false
		if msg.err != nil {
			m.errMsg = m.form.Error()
			if m.errMsg == "" {
				m.errMsg = msg.err.Error()
			}
			return m, nil
		}
		m.errMsg = ""
		m.password.SetValue("")
		return m, m.loadSession()

	case sessionMsg:
		m.token, m.user = msg.token, msg.user
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.onDashboard() {
			switch msg.String() {
			case "q", "esc":
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		if m.submitting() {
			return m, nil
		}
		return m.updateForm(msg)
	}

	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit
	case "tab", "down":
		return m.setFocus((m.focus + 1) % focusCount), nil
	case "shift+tab", "up":
		return m.setFocus((m.focus + focusCount - 1) % focusCount), nil
	case "enter":
		if m.focus == focusEmail {
			return m.setFocus(focusPassword), nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusEmail:
		m.email, cmd = m.email.Update(msg)
	case focusPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) setFocus(focus int) Model {
	m.focus = focus
	m.email.Blur()
	m.password.Blur()
	switch focus {
	case focusEmail:
		m.email.Focus()
	case focusPassword:
		m.password.Focus()
	}
	return m
}

// submit starts one form submission in a command goroutine.
func (m Model) submit() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.errMsg = msgMissingCredentials
		if email == "" {
			return m.setFocus(focusEmail), nil
		}
		return m.setFocus(focusPassword), nil
	}

	m.form.SetEmail(email)
	m.form.SetPassword(password)
	m.errMsg = ""
	m.pending = true

	form, ctx := m.form, m.ctx
	run := func() tea.Msg {
		return submitDoneMsg{err: form.Submit(ctx)}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m Model) loadSession() tea.Cmd {
	sessions, ctx := m.sessions, m.ctx
	return func() tea.Msg {
		if sessions == nil {
			return sessionMsg{}
		}
		if raw, err := sessions.Get(ctx, loginform.KeyUser); err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(raw), &user); err == nil {
				return sessionMsg{user: &user}
			}
		}
		token, err := sessions.Get(ctx, loginform.KeyToken)
		if err != nil {
			return sessionMsg{err: fmt.Errorf("read stored session: %w", err)}
		}
		return sessionMsg{token: token}
	}
}

// submitting is true from Enter until the submission result arrives.
func (m Model) submitting() bool {
	return m.pending
}

func (m Model) onDashboard() bool {
	return m.router.Current() == m.dashPath
}

// Err returns the error line currently shown.
func (m Model) Err() string {
	return m.errMsg
}

// LoggedIn reports whether the form navigated to the dashboard.
func (m Model) LoggedIn() bool {
	return m.onDashboard()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.onDashboard() {
		return m.dashboardView()
	}
	return m.loginView()
}

func (m Model) loginView() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.School.Render("Flor de Grace School, Inc") + "\n")
	b.WriteString(s.System.Render("INVENTORY MANAGEMENT SYSTEM") + "\n\n")

	b.WriteString(m.label("Email", focusEmail) + "\n")
	b.WriteString(m.email.View() + "\n\n")
	b.WriteString(m.label("Password", focusPassword) + "\n")
	b.WriteString(m.password.View() + "\n\n")

	if m.submitting() {
		b.WriteString(m.spinner.View() + " Signing in...\n")
	} else if m.focus == focusButton {
		b.WriteString(s.ButtonOn.Render("Login") + "\n")
	} else {
		b.WriteString(s.Button.Render("Login") + "\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + s.Error.Render(m.errMsg) + "\n")
	}

	b.WriteString("\n" + s.Muted.Render("Forgot Password?") + "\n")
	b.WriteString(s.Label.Render("tab: next field • enter: submit • esc: quit"))

	return m.center(s.Card.Render(b.String()))
}

func (m Model) dashboardView() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.School.Render("Inventory Dashboard") + "\n\n")
	switch {
	case m.user != nil:
		b.WriteString(s.Notice.Render("Welcome, "+m.user.Username) + "\n")
		b.WriteString(s.Label.Render("Email: ") + m.user.Email + "\n")
		b.WriteString(s.Label.Render("Role:  ") + string(m.user.Role) + "\n")
	case m.token != "":
		b.WriteString(s.Notice.Render("Signed in") + "\n")
		b.WriteString(s.Label.Render("Session token: ") + tokenHint(m.token) + "\n")
	default:
		b.WriteString(s.Notice.Render("Signed in") + "\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + s.Error.Render(m.errMsg) + "\n")
	}
	b.WriteString("\n" + s.Label.Render("q: quit"))

	return m.center(s.Card.Render(b.String()))
}

func (m Model) label(text string, field int) string {
	if m.focus == field {
		return m.styles.Focused.Render(text)
	}
	return m.styles.Label.Render(text)
}

func (m Model) center(view string) string {
	if m.width == 0 {
		return view
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, view)
}

func tokenHint(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
