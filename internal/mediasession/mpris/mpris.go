// Package mpris exposes the player on the D-Bus session bus as an MPRIS
// media player, which desktop shells use for media keys and now-playing
// widgets.
package mpris

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/mediasession"
)

const (
	busNamePrefix = "org.mpris.MediaPlayer2."
	objectPath    = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootIface     = "org.mpris.MediaPlayer2"
	playerIface   = "org.mpris.MediaPlayer2.Player"

	trackPathPrefix = "/org/onair/track/"
	livePath        = dbus.ObjectPath("/org/onair/live")
)

// Session is an MPRIS implementation of mediasession.Session.
type Session struct {
	conn    *dbus.Conn
	props   *prop.Properties
	busName string
	log     zerolog.Logger

	mu       sync.RWMutex
	handlers mediasession.Handlers
}

// New connects to the session bus and claims org.mpris.MediaPlayer2.<name>.
func New(name, identity string, log zerolog.Logger) (*Session, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	s := &Session{
		conn:    conn,
		busName: busNamePrefix + name,
		log:     log.With().Str("component", "mpris").Logger(),
	}
	if err := s.export(identity); err != nil {
		_ = conn.Close()
		return nil, err
	}

	reply, err := conn.RequestName(s.busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("request name %s: %w", s.busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		_ = conn.Close()
		return nil, fmt.Errorf("bus name %s already taken", s.busName)
	}

	s.log.Debug().Str("name", s.busName).Msg("mpris session ready")
	return s, nil
}

func (s *Session) export(identity string) error {
	root := &rootObject{}
	player := &playerObject{session: s}

	if err := s.conn.Export(root, objectPath, rootIface); err != nil {
		return fmt.Errorf("export root: %w", err)
	}
	if err := s.conn.Export(player, objectPath, playerIface); err != nil {
		return fmt.Errorf("export player: %w", err)
	}

	props, err := prop.Export(s.conn, objectPath, propertySpec(identity))
	if err != nil {
		return fmt.Errorf("export properties: %w", err)
	}
	s.props = props

	node := &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       rootIface,
				Methods:    introspect.Methods(root),
				Properties: props.Introspection(rootIface),
			},
			{
				Name:       playerIface,
				Methods:    introspect.Methods(player),
				Properties: props.Introspection(playerIface),
			},
		},
	}
	if err := s.conn.Export(introspect.NewIntrospectable(node), objectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("export introspection: %w", err)
	}
	return nil
}

func propertySpec(identity string) prop.Map {
	readOnly := func(v interface{}) *prop.Prop {
		return &prop.Prop{Value: v, Writable: false, Emit: prop.EmitTrue}
	}
	return prop.Map{
		rootIface: {
			"CanQuit":             readOnly(false),
			"CanRaise":            readOnly(false),
			"HasTrackList":        readOnly(false),
			"Identity":            readOnly(identity),
			"SupportedUriSchemes": readOnly([]string{"http", "https"}),
			"SupportedMimeTypes":  readOnly([]string{"audio/mpeg", "audio/aac", "audio/ogg"}),
		},
		playerIface: {
			"PlaybackStatus": readOnly(string(mediasession.StatusStopped)),
			"Metadata":       readOnly(map[string]dbus.Variant{}),
			"Rate":           readOnly(1.0),
			"MinimumRate":    readOnly(1.0),
			"MaximumRate":    readOnly(1.0),
			"Volume":         readOnly(1.0),
			"Position":       {Value: int64(0), Emit: prop.EmitFalse},
			"CanGoNext":      readOnly(false),
			"CanGoPrevious":  readOnly(false),
			"CanPlay":        readOnly(true),
			"CanPause":       readOnly(true),
			"CanSeek":        readOnly(false),
			"CanControl":     readOnly(true),
		},
	}
}

func (s *Session) SetHandlers(h mediasession.Handlers) {
	s.mu.Lock()
	s.handlers = h
	s.mu.Unlock()
}

func (s *Session) SetMetadata(md mediasession.Metadata) error {
	s.props.SetMust(playerIface, "Metadata", metadataMap(md))
	return nil
}

func (s *Session) SetStatus(st mediasession.Status) error {
	s.props.SetMust(playerIface, "PlaybackStatus", string(st))
	return nil
}

// Close releases the bus name and the connection.
func (s *Session) Close() error {
	if _, err := s.conn.ReleaseName(s.busName); err != nil {
		s.log.Debug().Err(err).Msg("release name failed")
	}
	return s.conn.Close()
}

func (s *Session) call(pick func(mediasession.Handlers) func()) *dbus.Error {
	s.mu.RLock()
	fn := pick(s.handlers)
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
	return nil
}

// metadataMap converts metadata to the MPRIS xesam/mpris dictionary.
func metadataMap(md mediasession.Metadata) map[string]dbus.Variant {
	m := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackPath(md)),
		"xesam:title":   dbus.MakeVariant(md.Title),
	}
	if md.Artist != "" {
		m["xesam:artist"] = dbus.MakeVariant([]string{md.Artist})
	}
	if md.ArtworkURL != "" {
		m["mpris:artUrl"] = dbus.MakeVariant(md.ArtworkURL)
	}
	if md.Length > 0 {
		m["mpris:length"] = dbus.MakeVariant(md.Length.Microseconds())
	}
	return m
}

func trackPath(md mediasession.Metadata) dbus.ObjectPath {
	if md.Live {
		return livePath
	}
	return dbus.ObjectPath(trackPathPrefix + strconv.FormatUint(md.ID, 16))
}

var _ mediasession.Session = (*Session)(nil)
