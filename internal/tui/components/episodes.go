package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/onair/internal/core"
	"github.com/tessro/onair/internal/tui/styles"
)

// Episodes displays the catalog as a scrollable list.
type Episodes struct {
	items    []core.Episode
	offset   int
	selected int
	now      func() time.Time
}

// NewEpisodes creates a new Episodes component
func NewEpisodes() *Episodes {
	return &Episodes{now: time.Now}
}

// SetItems replaces the list, keeping the selection on the same slug
// when it is still present.
func (e *Episodes) SetItems(items []core.Episode) {
	var keep string
	if ep, ok := e.Selected(); ok {
		keep = ep.Slug
	}
	e.items = items
	e.selected, e.offset = 0, 0
	for i, ep := range items {
		if ep.Slug == keep {
			e.selected = i
			break
		}
	}
}

// Items returns the episodes in display order.
func (e *Episodes) Items() []core.Episode {
	return e.items
}

// SelectNext moves the cursor down
func (e *Episodes) SelectNext() {
	if e.selected < len(e.items)-1 {
		e.selected++
	}
}

// SelectPrev moves the cursor up
func (e *Episodes) SelectPrev() {
	if e.selected > 0 {
		e.selected--
	}
}

// Selected returns the episode under the cursor.
func (e *Episodes) Selected() (core.Episode, bool) {
	if e.selected < 0 || e.selected >= len(e.items) {
		return core.Episode{}, false
	}
	return e.items[e.selected], true
}

// Render renders the episode panel. current is the slug of the playing
// episode, if any.
func (e *Episodes) Render(current string, width, height int, focused bool, emptyText string) string {
	title := styles.PanelTitle("Episodes", focused)

	var content string
	if len(e.items) == 0 {
		if emptyText == "" {
			emptyText = "No episodes"
		}
		content = styles.Muted.Render(emptyText)
	} else {
		content = e.renderList(current, width-4, height-4)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (e *Episodes) renderList(current string, width, maxLines int) string {
	visible := maxLines - 1 // room for the "more" indicator
	if visible < 1 {
		visible = 1
	}

	// Keep the cursor on screen
	if e.selected < e.offset {
		e.offset = e.selected
	}
	if e.selected >= e.offset+visible {
		e.offset = e.selected - visible + 1
	}

	end := e.offset + visible
	if end > len(e.items) {
		end = len(e.items)
	}

	lines := make([]string, 0, end-e.offset+1)
	for i := e.offset; i < end; i++ {
		ep := e.items[i]

		marker := "  "
		if ep.Slug != "" && ep.Slug == current {
			marker = styles.Playing.Render("▶ ")
		}

		meta := e.meta(ep)
		available := width - 2 - len(meta) - 1
		line := marker + truncate(ep.Title, available)
		pad := width - lipgloss.Width(line) - len(meta)
		if pad < 1 {
			pad = 1
		}
		line += styles.Repeat(" ", pad) + styles.Dim.Render(meta)

		if i == e.selected {
			line = styles.Selected.Render(line)
		}
		lines = append(lines, line)
	}

	if end < len(e.items) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("  ... and %d more", len(e.items)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (e *Episodes) meta(ep core.Episode) string {
	var meta string
	if ep.DurationHint != "" {
		meta = ep.DurationHint
	}
	if !ep.Published.IsZero() {
		ago := humanize.RelTime(ep.Published, e.now(), "ago", "from now")
		if meta != "" {
			meta += " · "
		}
		meta += ago
	}
	return meta
}
