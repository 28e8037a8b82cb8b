package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mail-triage/internal/credential"
	"github.com/nhle/mail-triage/internal/mailbox"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/pipeline"
	"github.com/nhle/mail-triage/internal/ui"
	"github.com/nhle/mail-triage/internal/ui/detail"
	"github.com/nhle/mail-triage/internal/ui/login"
	"github.com/nhle/mail-triage/internal/ui/maillist"
)

// refreshTimeout bounds a single fetch-and-enrich pass, including the
// per-message summarization calls.
const refreshTimeout = 5 * time.Minute

// fetchResultMsg carries the outcome of a refresh back to the UI.
type fetchResultMsg struct {
	result pipeline.Result
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewLogin
)

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the pipeline session.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	session      *pipeline.Session
	config       *model.AppConfig
	configPath   string
	log          *zap.Logger
	keys         *KeyMap

	listView   maillist.Model
	detailView detail.Model
	loginView  login.Model

	spinner  spinner.Model
	fetching bool

	// creds is zero until the user logs in.
	creds    mailbox.Credentials
	hasCreds bool

	// fetchAfterLogin triggers a refresh as soon as credentials arrive,
	// for the "press r without being logged in" path.
	fetchAfterLogin bool

	ready         bool
	statusMessage string
}

// New creates the root application model.
func New(session *pipeline.Session, cfg *model.AppConfig, configPath string, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	keys := DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		currentView: ViewList,
		session:     session,
		config:      cfg,
		configPath:  configPath,
		log:         log,
		keys:        keys,
		listView:    maillist.New(keys, 80, 24),
		detailView:  detail.New(keys, 80, 24),
		loginView:   login.New(cfg.Mailbox.Username, 80, 24),
		spinner:     sp,
	}

	m.creds, m.hasCreds = loadSavedCredentials(cfg)
	return m
}

// loadSavedCredentials pairs the configured username with a password
// from the system keyring, when both are present.
func loadSavedCredentials(cfg *model.AppConfig) (mailbox.Credentials, bool) {
	if cfg.Mailbox.Username == "" {
		return mailbox.Credentials{}, false
	}
	password, err := credential.Get(credential.KeyMailboxPassword)
	if err != nil || password == "" {
		return mailbox.Credentials{}, false
	}
	return mailbox.Credentials{
		Username: cfg.Mailbox.Username,
		Password: password,
	}, true
}

// Init seeds the list from the cached snapshot so the dashboard has
// content before any network call.
func (m Model) Init() tea.Cmd {
	return m.listView.SetRecords(m.session.Cached())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.listView.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.loginView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case spinner.TickMsg:
		if !m.fetching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchResultMsg:
		return m.handleFetchResult(msg.result)

	case maillist.SelectedEmailMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detailView.SetRecord(msg.Record)
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case login.SubmitMsg:
		m.creds = msg.Credentials
		m.hasCreds = true
		m.currentView = ViewList
		m.config.Mailbox.Username = msg.Credentials.Username
		m.persistCredentials(msg)
		if m.fetchAfterLogin {
			m.fetchAfterLogin = false
			return m.startFetch()
		}
		m.statusMessage = "Logged in as " + msg.Credentials.Username
		return m, nil

	case login.CancelMsg:
		m.fetchAfterLogin = false
		m.currentView = ViewList
		return m, nil

	case tea.KeyMsg:
		// Global keys that work regardless of current view
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.currentView == ViewList {
				return m, tea.Quit
			}

		case "r":
			if m.currentView == ViewList {
				if !m.hasCreds {
					m.fetchAfterLogin = true
					m.previousView = m.currentView
					m.currentView = ViewLogin
					return m, m.loginView.Init()
				}
				return m.startFetch()
			}

		case "l":
			if m.currentView == ViewList {
				m.previousView = m.currentView
				m.currentView = ViewLogin
				return m, m.loginView.Init()
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// startFetch kicks off an asynchronous refresh unless one is already
// running.
func (m Model) startFetch() (tea.Model, tea.Cmd) {
	if m.fetching {
		m.statusMessage = "A fetch is already in progress."
		return m, nil
	}

	m.fetching = true
	m.statusMessage = ""

	session := m.session
	creds := m.creds
	folder := m.config.Mailbox.Folder
	limit := m.config.Mailbox.Limit

	fetchCmd := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return fetchResultMsg{
			result: session.Refresh(ctx, creds, folder, limit),
		}
	}

	return m, tea.Batch(m.spinner.Tick, fetchCmd)
}

// handleFetchResult updates the list and status line from a completed
// refresh.
func (m Model) handleFetchResult(result pipeline.Result) (tea.Model, tea.Cmd) {
	m.fetching = false

	switch result.Status {
	case pipeline.StatusOK:
		m.statusMessage = fmt.Sprintf("Fetched %d emails.", len(result.Records))
		return m, m.listView.SetRecords(result.Records)

	case pipeline.StatusEmpty:
		m.statusMessage = "No emails fetched. Mailbox may be empty."
		return m, m.listView.SetRecords(result.Records)

	case pipeline.StatusAuthFailed:
		// Cached records stay on screen; drop the bad credentials.
		m.hasCreds = false
		m.statusMessage = "Login failed. Press 'l' to re-enter credentials."
		return m, nil

	case pipeline.StatusUnavailable:
		m.statusMessage = "Mail server unreachable. Check your connection and retry."
		return m, nil

	case pipeline.StatusBusy:
		m.statusMessage = "A fetch is already in progress."
		return m, nil

	default:
		m.statusMessage = "Fetch failed. See the log file for details."
		return m, nil
	}
}

// persistCredentials saves the password to the keyring when asked, and
// always writes the username back to the config file.
func (m Model) persistCredentials(msg login.SubmitMsg) {
	if msg.Remember {
		if err := credential.Set(credential.KeyMailboxPassword, msg.Credentials.Password); err != nil {
			m.log.Warn("storing password in keyring", zap.Error(err))
		}
	}
	if err := model.SaveConfig(m.configPath, m.config); err != nil {
		m.log.Warn("saving config", zap.Error(err))
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.listView, cmd = m.listView.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Mail Triage", m.fetchStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.listView.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewLogin:
		return m.loginView.View()
	default:
		return ""
	}
}

// fetchStatus returns a short string for the header's right side.
func (m Model) fetchStatus() string {
	if m.fetching {
		return m.spinner.View() + " fetching"
	}
	if m.hasCreds {
		return m.creds.Username
	}
	return "not logged in"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	// Show the most recent fetch outcome prominently when present.
	if m.statusMessage != "" && m.currentView == ViewList {
		return m.statusMessage
	}

	switch m.currentView {
	case ViewDetail:
		return "esc back | j/k scroll"
	case ViewLogin:
		return "enter submit | esc cancel"
	default:
		return "q quit | r fetch | l login | enter open | tab category"
	}
}
