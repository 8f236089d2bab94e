package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/onair/internal/core"
	"github.com/tessro/onair/internal/tui/styles"
)

// MaxHistory is the number of entries History keeps.
const MaxHistory = 50

// HistoryEntry is a source that reached playing.
type HistoryEntry struct {
	Source   core.Source
	PlayedAt time.Time
}

// History displays recently played sources
type History struct {
	entries []HistoryEntry
	now     func() time.Time
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{now: time.Now}
}

// Add records src at the front of the history. Replaying the most recent
// source only refreshes its timestamp.
func (h *History) Add(src core.Source) {
	entry := HistoryEntry{Source: src, PlayedAt: h.now()}
	if len(h.entries) > 0 && sameSource(h.entries[0].Source, src) {
		h.entries[0] = entry
		return
	}
	h.entries = append([]HistoryEntry{entry}, h.entries...)
	if len(h.entries) > MaxHistory {
		h.entries = h.entries[:MaxHistory]
	}
}

// Entries returns the history, most recent first.
func (h *History) Entries() []HistoryEntry {
	return h.entries
}

// Render renders the history panel
func (h *History) Render(width, height int, focused bool) string {
	title := styles.PanelTitle("Recent", focused)

	var content string
	if len(h.entries) == 0 {
		content = styles.Muted.Render("Nothing played yet")
	} else {
		content = h.renderHistory(width-4, height-4)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (h *History) renderHistory(width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, entry := range h.entries {
		if i >= maxLines {
			break
		}

		timeAgo := formatTimeAgo(h.now().Sub(entry.PlayedAt), entry.PlayedAt)

		icon := "♪"
		if entry.Source.IsLive() {
			icon = styles.Live.Render("●")
		}

		// icon + space, then a space before the time
		available := width - 3 - len(timeAgo)
		info := truncate(entry.Source.DisplayTitle(), available)

		padding := width - 2 - lipgloss.Width(info) - len(timeAgo)
		if padding < 1 {
			padding = 1
		}

		lines = append(lines, fmt.Sprintf("%s %s%s%s",
			icon,
			info,
			styles.Repeat(" ", padding),
			styles.Dim.Render(timeAgo)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// sameSource compares sources ignoring the cache-busting query, which differs
// on every resolve of the same episode.
func sameSource(a, b core.Source) bool {
	if a.IsLive() || b.IsLive() {
		return a.IsLive() == b.IsLive()
	}
	if a.Slug != "" || b.Slug != "" {
		return a.Slug == b.Slug
	}
	return a.URL == b.URL
}

func formatTimeAgo(d time.Duration, t time.Time) string {
	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
