package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/keys"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/theme"
)

// BackMsg signals the detail view should close.
type BackMsg struct{}

// Model is the single-email detail view: headers, category, summary,
// and the full body in a scrollable viewport.
type Model struct {
	viewport viewport.Model
	keys     *keys.KeyMap
	record   model.EmailRecord
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// SetRecord loads an email into the view and resets the scroll position.
func (m *Model) SetRecord(rec model.EmailRecord) {
	m.record = rec
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	return m.viewport.View()
}

// renderContent builds the full detail text for the viewport.
func (m Model) renderContent() string {
	label := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	badge := theme.CategoryStyle(m.record.Category).Render(string(m.record.Category))

	var sb strings.Builder
	sb.WriteString(label.Render("Subject: "))
	sb.WriteString(m.record.Subject)
	sb.WriteString("\n")
	sb.WriteString(label.Render("From: "))
	sb.WriteString(m.record.From)
	sb.WriteString("\n")
	sb.WriteString(label.Render("Date: "))
	sb.WriteString(m.record.Date)
	sb.WriteString("\n")
	sb.WriteString(label.Render("Category: "))
	sb.WriteString(badge)
	sb.WriteString("\n\n")
	sb.WriteString(label.Render("Summary"))
	sb.WriteString("\n")
	sb.WriteString(m.record.Summary)
	sb.WriteString("\n\n")
	sb.WriteString(label.Render(fmt.Sprintf("Full content (message %d)", m.record.ID)))
	sb.WriteString("\n")
	sb.WriteString(m.record.Content)

	return theme.DetailPanelStyle.Width(m.width - 4).Render(sb.String())
}

// SetSize updates the dimensions of the viewport.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.record.Enriched() {
		m.viewport.SetContent(m.renderContent())
	}
}
