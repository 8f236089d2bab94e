// Package keys maps keyboard input to playback operations.
package keys

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/onair/internal/core"
	"github.com/tessro/onair/internal/resolver"
)

const (
	// VolumeStep is the volume change per key press, in percent.
	VolumeStep = 5
	// SeekStep is the seek distance per key press, in percent.
	SeekStep = 5.0
)

// Action is a playback operation triggered by a key.
type Action int

const (
	ActionNone Action = iota
	ActionToggle
	ActionVolumeUp
	ActionVolumeDown
	ActionSeekBack
	ActionSeekForward
	ActionNext
	ActionPrevious
	ActionLive
)

func (a Action) String() string {
	switch a {
	case ActionToggle:
		return "toggle"
	case ActionVolumeUp:
		return "volume-up"
	case ActionVolumeDown:
		return "volume-down"
	case ActionSeekBack:
		return "seek-back"
	case ActionSeekForward:
		return "seek-forward"
	case ActionNext:
		return "next"
	case ActionPrevious:
		return "previous"
	case ActionLive:
		return "live"
	default:
		return "none"
	}
}

// KeyMap holds the playback bindings.
type KeyMap struct {
	Toggle      key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	Next        key.Binding
	Previous    key.Binding
	Live        key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		VolumeUp:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "volume +")),
		VolumeDown:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "volume -")),
		SeekBack:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back")),
		SeekForward: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "forward")),
		Next:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next episode")),
		Previous:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous episode")),
		Live:        key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "live")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.VolumeUp, k.VolumeDown, k.Live}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Live},
		{k.VolumeUp, k.VolumeDown},
		{k.SeekBack, k.SeekForward},
		{k.Next, k.Previous},
	}
}

// Map resolves msg to an action. Nothing matches while a text input has focus.
func (k KeyMap) Map(msg tea.KeyMsg, editing bool) (Action, bool) {
	if editing {
		return ActionNone, false
	}
	switch {
	case key.Matches(msg, k.Toggle):
		return ActionToggle, true
	case key.Matches(msg, k.VolumeUp):
		return ActionVolumeUp, true
	case key.Matches(msg, k.VolumeDown):
		return ActionVolumeDown, true
	case key.Matches(msg, k.SeekBack):
		return ActionSeekBack, true
	case key.Matches(msg, k.SeekForward):
		return ActionSeekForward, true
	case key.Matches(msg, k.Next):
		return ActionNext, true
	case key.Matches(msg, k.Previous):
		return ActionPrevious, true
	case key.Matches(msg, k.Live):
		return ActionLive, true
	}
	return ActionNone, false
}

var defaultKeyMap = DefaultKeyMap()

// Map resolves msg with the default bindings.
func Map(msg tea.KeyMsg, editing bool) (Action, bool) {
	return defaultKeyMap.Map(msg, editing)
}

// Target is the playback operation set actions are applied to.
type Target interface {
	SwitchSource(next core.Source) error
	Toggle()
	Seek(percent float64)
	SetVolume(percent int)
	State() core.PlaybackState
}

// Controller applies actions to a Target.
type Controller struct {
	Target Target
	// Episodes returns the navigable episode list, in display order.
	Episodes func() []core.Episode
	// Resolver builds sources for episodes. Nil uses the default.
	Resolver *resolver.Resolver
}

// Handle applies a. Only navigation actions can fail.
func (c *Controller) Handle(a Action) error {
	s := c.Target.State()
	switch a {
	case ActionToggle:
		c.Target.Toggle()
	case ActionVolumeUp:
		c.Target.SetVolume(s.VolumePercent + VolumeStep)
	case ActionVolumeDown:
		c.Target.SetVolume(s.VolumePercent - VolumeStep)
	case ActionSeekBack:
		c.Target.Seek(s.ProgressPercent - SeekStep)
	case ActionSeekForward:
		c.Target.Seek(s.ProgressPercent + SeekStep)
	case ActionLive:
		return c.Target.SwitchSource(core.LiveSource())
	case ActionNext, ActionPrevious:
		return c.navigate(s, a == ActionNext)
	}
	return nil
}

func (c *Controller) navigate(s core.PlaybackState, forward bool) error {
	if c.Episodes == nil {
		return nil
	}
	episodes := c.Episodes()
	if len(episodes) == 0 {
		return nil
	}

	var target *core.Episode
	if s.Source.IsLive() || s.Source.Slug == "" {
		if !forward {
			return nil
		}
		target = &episodes[0]
	} else {
		prev, next := resolver.Neighbors(episodes, s.Source.Slug)
		target = prev
		if forward {
			target = next
		}
	}
	if target == nil {
		return nil
	}

	src, err := c.Resolver.Resolve(resolver.ForEpisode(*target))
	if err != nil {
		return fmt.Errorf("episode %q: %w", target.Slug, err)
	}
	return c.Target.SwitchSource(src)
}
