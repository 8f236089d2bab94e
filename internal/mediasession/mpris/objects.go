package mpris

import (
	"github.com/godbus/dbus/v5"

	"github.com/tessro/onair/internal/mediasession"
)

// rootObject implements org.mpris.MediaPlayer2.
type rootObject struct{}

func (rootObject) Raise() *dbus.Error { return nil }
func (rootObject) Quit() *dbus.Error  { return nil }

// playerObject implements org.mpris.MediaPlayer2.Player. Every exported
// method is published on the bus.
type playerObject struct {
	session *Session
}

func (p *playerObject) Play() *dbus.Error {
	return p.session.call(func(h mediasession.Handlers) func() { return h.Play })
}

func (p *playerObject) Pause() *dbus.Error {
	return p.session.call(func(h mediasession.Handlers) func() { return h.Pause })
}

func (p *playerObject) PlayPause() *dbus.Error {
	return p.session.call(func(h mediasession.Handlers) func() { return h.Toggle })
}

func (p *playerObject) Stop() *dbus.Error {
	return p.session.call(func(h mediasession.Handlers) func() { return h.Pause })
}

func (p *playerObject) Next() *dbus.Error     { return nil }
func (p *playerObject) Previous() *dbus.Error { return nil }

func (p *playerObject) Seek(offset int64) *dbus.Error { return nil }

func (p *playerObject) SetPosition(track dbus.ObjectPath, position int64) *dbus.Error {
	return nil
}

func (p *playerObject) OpenUri(uri string) *dbus.Error { return nil }
