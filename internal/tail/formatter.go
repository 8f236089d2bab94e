package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/onair/internal/core"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// ParseTemplate reports whether tmpl is a valid format template.
func ParseTemplate(tmpl string) error {
	_, err := template.New("format").Parse(tmpl)
	return err
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      EventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Message:   e.Message,
	}

	if e.Current != nil {
		data.Title = e.Current.Source.DisplayTitle()
		data.Artist = e.Current.Source.Artist
		data.Live = e.Current.Source.IsLive()
		data.Status = string(e.Current.Status)
		data.Volume = e.Current.VolumePercent
		data.Error = e.Current.ErrorMessage
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Title     string
	Artist    string
	Live      bool
	Status    string
	Volume    int
	Error     string
	Message   string
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventSourceChange:
		if e.Current != nil {
			return "Source: " + sourceLabel(e.Current.Source)
		}
		return "Source changed"

	case EventLoading:
		return "Loading..."

	case EventReconnecting:
		if e.Current != nil {
			return fmt.Sprintf("Reconnecting (attempt %d)", e.Current.RetryCount)
		}
		return "Reconnecting"

	case EventPlaying:
		if e.Current != nil {
			return "Playing: " + sourceLabel(e.Current.Source)
		}
		return "Playing"

	case EventPaused:
		return "Paused"

	case EventFinished:
		if e.Current != nil {
			return "Finished: " + sourceLabel(e.Current.Source)
		}
		return "Finished"

	case EventError:
		if e.Current != nil && e.Current.ErrorMessage != "" {
			return "Error: " + e.Current.ErrorMessage
		}
		return "Playback error"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", e.Current.VolumePercent)
		}
		return "Volume changed"

	case EventLiveTitle:
		return "On air: " + e.Message

	case EventNotice:
		return e.Message

	default:
		return "Unknown event"
	}
}

func sourceLabel(s core.Source) string {
	if s.Artist != "" {
		return s.Artist + " - " + s.DisplayTitle()
	}
	return s.DisplayTitle()
}

// EventTypeName returns the stable name of t, as used in templates and JSON.
func EventTypeName(t EventType) string {
	switch t {
	case EventSourceChange:
		return "source"
	case EventLoading:
		return "loading"
	case EventReconnecting:
		return "reconnecting"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventFinished:
		return "finished"
	case EventError:
		return "error"
	case EventVolumeChange:
		return "volume"
	case EventLiveTitle:
		return "title"
	case EventNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventSourceChange:
		return "📻"
	case EventLoading:
		return "⏳"
	case EventReconnecting:
		return "🔄"
	case EventPlaying:
		return "▶️"
	case EventPaused:
		return "⏸️"
	case EventFinished:
		return "✅"
	case EventError:
		return "❌"
	case EventVolumeChange:
		return "🔊"
	case EventLiveTitle:
		return "🎵"
	case EventNotice:
		return "💬"
	default:
		return "❓"
	}
}
