package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/onair/internal/core"
	"github.com/tessro/onair/internal/tui/styles"
)

// FooterInfo is the shell state rendered next to the playback state.
type FooterInfo struct {
	Station   string
	LiveTitle string

	// Notice is the active user-facing message, if any.
	Notice      string
	NoticeIsErr bool
}

// Footer displays the current source and transport controls.
type Footer struct{}

// NewFooter creates a new Footer component
func NewFooter() *Footer {
	return &Footer{}
}

// Render renders the footer player.
func (f *Footer) Render(state core.PlaybackState, info FooterInfo, width int) string {
	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	lines := []string{
		styles.StatusIcon(state.Status) + " " + SourceLine(state.Source, info, inner-2),
		f.renderTransport(state, inner),
	}
	if info.Notice != "" {
		style := styles.Notice
		if info.NoticeIsErr {
			style = styles.Failed
		}
		lines = append(lines, style.Render(truncate(info.Notice, inner)))
	}

	return styles.Panel(false).
		Width(width - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SourceLine is the one-line description of the current source.
func SourceLine(src core.Source, info FooterInfo, width int) string {
	if src.IsLive() {
		line := styles.Live.Render("● " + src.DisplayTitle())
		if info.LiveTitle != "" {
			line += " — " + styles.Title.Render(truncate(info.LiveTitle, width-14))
		} else if info.Station != "" {
			line += " — " + styles.Subtitle.Render(info.Station)
		}
		return line
	}

	title := src.DisplayTitle()
	if src.Artist == "" {
		return styles.Title.Render(truncate(title, width))
	}
	artistSpace := width / 3
	if len(src.Artist) < artistSpace {
		artistSpace = len(src.Artist)
	}
	return styles.Title.Render(truncate(title, width-artistSpace-3)) +
		styles.Muted.Render(" · "+truncate(src.Artist, artistSpace))
}

func (f *Footer) renderTransport(state core.PlaybackState, width int) string {
	volume := styles.Muted.Render(fmt.Sprintf("%s %3d%%", styles.VolumeIcon(state.VolumePercent), state.VolumePercent))
	status := statusLabel(state)

	if !state.HasDuration() {
		// Unbounded source, no progress to show
		return status + "  " + volume
	}

	current := FormatSeconds(state.PositionSeconds())
	total := FormatSeconds(state.DurationSeconds)
	barWidth := width - len(current) - len(total) - 16
	if barWidth < 10 {
		barWidth = 10
	}
	return fmt.Sprintf("%s %s %s  %s", current, styles.ProgressBar(state.Progress(), barWidth), total, volume)
}

func statusLabel(state core.PlaybackState) string {
	switch state.Status {
	case core.StatusLoading:
		if state.RetryCount > 0 {
			return styles.Notice.Render("reconnecting")
		}
		return styles.Notice.Render("loading")
	case core.StatusPlaying:
		return styles.Playing.Render("playing")
	case core.StatusPaused:
		return styles.Paused.Render("paused")
	case core.StatusError:
		return styles.Failed.Render("error")
	default:
		return styles.Dim.Render("stopped")
	}
}

// FormatSeconds renders a position as m:ss, or h:mm:ss past an hour.
func FormatSeconds(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	total := int(sec + 0.5)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
