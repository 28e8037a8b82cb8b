package maillist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/theme"
)

// EmailItem wraps a model.EmailRecord so it can be used in a bubbles/list.
type EmailItem struct {
	Record model.EmailRecord
}

// FilterValue returns the string used for fuzzy filtering.
func (i EmailItem) FilterValue() string { return i.Record.Subject }

// Title returns the subject for the list.
func (i EmailItem) Title() string { return i.Record.Subject }

// Description returns a short summary line for the list.
func (i EmailItem) Description() string {
	parts := []string{
		string(i.Record.Category),
		i.Record.From,
		i.Record.Date,
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering email rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single email row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	emailItem, ok := item.(EmailItem)
	if !ok {
		return
	}

	rec := emailItem.Record
	isSelected := index == m.Index()

	badge := theme.CategoryStyle(rec.Category).Render(categoryBadge(rec.Category))
	from := theme.HelpStyle.Render(truncate(rec.From, 28))

	line := fmt.Sprintf("● %s %s  %s", badge, truncate(rec.Subject, 60), from)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// categoryBadge returns a fixed-width label for the category column.
func categoryBadge(c model.Category) string {
	switch c {
	case model.CategoryFinance:
		return "FIN"
	case model.CategoryWork:
		return "WRK"
	case model.CategoryPromotions:
		return "PRO"
	default:
		return "OTH"
	}
}

// truncate shortens s to at most n runes, appending an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
