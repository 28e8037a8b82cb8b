package maillist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/keys"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/theme"
)

// SelectedEmailMsg is sent when a user opens an email from the list.
type SelectedEmailMsg struct {
	Record model.EmailRecord
}

// filterAll is the pseudo-category shown before any filter is applied.
const filterAll = "All"

// filterOptions is the radio order: All first, then the closed label set.
var filterOptions = func() []string {
	opts := []string{filterAll}
	for _, c := range model.Categories {
		opts = append(opts, string(c))
	}
	return opts
}()

// Model is the filterable email list view. The category filter is
// purely client-side over the records handed to SetRecords.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	records     []model.EmailRecord
	filterIndex int
	width       int
	height      int
}

// New creates a new email list model.
func New(k *keys.KeyMap, width, height int) Model {
	delegate := ItemDelegate{}
	l := list.New([]list.Item{}, delegate, width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetRecords replaces the record set shown in the list and reapplies
// the active category filter.
func (m *Model) SetRecords(records []model.EmailRecord) tea.Cmd {
	m.records = records
	return m.applyFilter()
}

// Update handles messages for the email list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Select):
			item, ok := m.list.SelectedItem().(EmailItem)
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return SelectedEmailMsg{Record: item.Record}
			}

		case key.Matches(keyMsg, m.keys.NextFilter):
			m.filterIndex = (m.filterIndex + 1) % len(filterOptions)
			return m, m.applyFilter()

		case key.Matches(keyMsg, m.keys.PrevFilter):
			m.filterIndex = (m.filterIndex - 1 + len(filterOptions)) % len(filterOptions)
			return m, m.applyFilter()
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// applyFilter rebuilds the visible items from the active filter.
func (m *Model) applyFilter() tea.Cmd {
	selected := filterOptions[m.filterIndex]

	var items []list.Item
	for _, rec := range m.records {
		if selected != filterAll && string(rec.Category) != selected {
			continue
		}
		items = append(items, EmailItem{Record: rec})
	}

	m.list.Title = fmt.Sprintf("Inbox — %s", selected)
	return m.list.SetItems(items)
}

// View renders the email list view.
func (m Model) View() string {
	filterBar := m.renderFilterBar()

	if len(m.list.Items()) == 0 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			filterBar,
			m.renderEmptyState(),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, filterBar, m.list.View())
}

// renderFilterBar draws the category radio row.
func (m Model) renderFilterBar() string {
	var rendered []string
	for i, opt := range filterOptions {
		style := theme.HelpStyle
		if i == m.filterIndex {
			style = lipgloss.NewStyle().
				Foreground(theme.ColorBlue).
				Bold(true).
				Underline(true)
		}
		rendered = append(rendered, style.Render(opt))
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(rendered)...))
}

// joinWithGap interleaves two spaces between rendered segments.
func joinWithGap(segments []string) []string {
	out := make([]string, 0, len(segments)*2)
	for i, s := range segments {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, s)
	}
	return out
}

// renderEmptyState shows guidance text when no emails are available.
func (m Model) renderEmptyState() string {
	msg := "No emails to display."
	if len(m.records) > 0 {
		msg = "No emails in this category."
	}

	return lipgloss.NewStyle().
		Padding(2, 4).
		Foreground(theme.ColorGray).
		Render(msg + "\n\n" + theme.HelpStyle.Render("press 'r' to fetch emails, 'l' to log in"))
}

// SetSize updates the dimensions of the list.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
