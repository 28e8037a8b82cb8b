package login

import (
	"errors"
	"regexp"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/mailbox"
)

// SubmitMsg carries the entered credentials back to the root model.
type SubmitMsg struct {
	Credentials mailbox.Credentials

	// Remember asks the app to keep the password in the OS keyring.
	Remember bool
}

// CancelMsg signals the login form was dismissed.
type CancelMsg struct{}

// emailPattern is a basic shape check, not full address validation.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Model is the credential entry form.
type Model struct {
	form     *huh.Form
	username string
	password string
	remember bool
	width    int
	height   int
}

// New creates a login form, prefilled with the given username.
func New(username string, width, height int) Model {
	m := Model{
		username: username,
		width:    width,
		height:   height,
	}
	m.form = m.buildForm()
	return m
}

// buildForm constructs the huh form bound to the model's fields.
func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.username).
				Validate(func(s string) error {
					if !ValidEmail(s) {
						return errors.New("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Remember password in system keyring?").
				Value(&m.remember),
		),
	).WithWidth(min(60, m.width))
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update drives the form and emits SubmitMsg on completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		creds := mailbox.Credentials{
			Username: m.username,
			Password: m.password,
		}
		remember := m.remember

		// Rebuild so the form can be shown again later.
		m.form = m.buildForm()

		return m, func() tea.Msg {
			return SubmitMsg{Credentials: creds, Remember: remember}
		}
	}

	return m, cmd
}

// View renders the login form.
func (m Model) View() string {
	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
