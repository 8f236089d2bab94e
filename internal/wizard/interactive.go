package wizard

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/tessro/onair/internal/core"
)

// LiveChoice is the picker value for the live stream.
const LiveChoice = "live"

// ErrCancelled is returned when the user dismisses the picker.
var ErrCancelled = errors.New("selection cancelled")

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled bool
	station string
	// run shows the form. Swapped out in tests.
	run func(*huh.Form) error
}

// NewInteractive creates a new interactive handler. station labels the live
// option.
func NewInteractive(station string) *Interactive {
	return &Interactive{
		enabled: true,
		station: station,
		run:     func(f *huh.Form) error { return f.Run() },
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PickSource asks for the live stream or one of episodes and returns
// LiveChoice or the episode slug.
func (i *Interactive) PickSource(episodes []core.Episode) (string, error) {
	if !i.CanInteract() {
		return "", fmt.Errorf("no terminal to pick from: pass live, a URL or an episode slug")
	}

	choice := LiveChoice
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What do you want to hear?").
				Options(Options(i.station, episodes, time.Now())...).
				Value(&choice),
		),
	)

	if err := i.run(form); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return choice, nil
}

// Options builds the picker entries: the live stream first, then episodes
// in catalog order.
func Options(station string, episodes []core.Episode, now time.Time) []huh.Option[string] {
	live := "● " + core.LiveSource().DisplayTitle()
	if station != "" {
		live += " — " + station
	}

	options := make([]huh.Option[string], 0, len(episodes)+1)
	options = append(options, huh.NewOption(live, LiveChoice))
	for _, ep := range episodes {
		options = append(options, huh.NewOption(Label(ep, now), ep.Slug))
	}
	return options
}

// Label is the picker text for an episode.
func Label(ep core.Episode, now time.Time) string {
	label := ep.Title
	if ep.FeedName != "" {
		label += " · " + ep.FeedName
	}
	if !ep.Published.IsZero() {
		label += " (" + humanize.RelTime(ep.Published, now, "ago", "from now") + ")"
	}
	return label
}

// NeedsSource returns true if a source argument is required but missing.
func NeedsSource(args []string) bool {
	return len(args) == 0
}
