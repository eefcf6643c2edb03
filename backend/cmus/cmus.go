package cmus

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	idbus "github.com/b0bbywan/go-odio-relay/backend/internal/dbus"
	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// CmusBackend reads the status of cmus through its D-Bus bridge.
type CmusBackend struct {
	conn  idbus.SignalConn
	bus   idbus.Caller
	obj   idbus.Caller
	iface string
}

// New binds the backend to conn. The connection stays owned by the caller.
func New(conn *dbus.Conn, cfg *config.CmusConfig) (*CmusBackend, error) {
	if conn == nil {
		return nil, fmt.Errorf("cmus: nil connection")
	}
	if cfg == nil || cfg.Service == "" || cfg.Path == "" || cfg.Interface == "" {
		return nil, fmt.Errorf("cmus: incomplete configuration")
	}
	logger.Debug("[cmus] using %s at %s", cfg.Service, cfg.Path)
	return &CmusBackend{
		conn:  conn,
		bus:   conn.BusObject(),
		obj:   idbus.GetObject(conn, cfg.Service, cfg.Path),
		iface: cfg.Interface,
	}, nil
}

func (c *CmusBackend) Name() string { return sourceName }

func (c *CmusBackend) method(name string) string {
	return c.iface + "." + name
}

// wrap turns "no such service" replies into a NotRunningError.
func (c *CmusBackend) wrap(err error) error {
	if idbus.IsServiceUnknown(err) {
		return &player.NotRunningError{Source: sourceName, Err: err}
	}
	return err
}

func (c *CmusBackend) callString(ctx context.Context, name string) (string, error) {
	s, err := idbus.CallString(ctx, c.obj, c.method(name))
	return s, c.wrap(err)
}

func (c *CmusBackend) callBool(ctx context.Context, name string) (bool, error) {
	b, err := idbus.CallBool(ctx, c.obj, c.method(name))
	return b, c.wrap(err)
}

func (c *CmusBackend) callSeconds(ctx context.Context, name string) (time.Duration, error) {
	n, err := idbus.CallInt64(ctx, c.obj, c.method(name))
	if err != nil {
		return 0, c.wrap(err)
	}
	return time.Duration(n) * time.Second, nil
}

// Status fetches a full snapshot. Track fields are only queried when a
// track is selected.
func (c *CmusBackend) Status(ctx context.Context) (*player.Status, error) {
	state, err := c.callString(ctx, METHOD_STATUS)
	if err != nil {
		return nil, err
	}
	hasTrack, err := c.callBool(ctx, METHOD_HAS_TRACK)
	if err != nil {
		return nil, err
	}

	status := player.Status{
		State:    player.ParseState(state),
		HasTrack: hasTrack,
	}

	if hasTrack {
		track, err := c.NowPlaying(ctx)
		if err != nil {
			return nil, err
		}
		status.Track = track
		if status.Position, err = c.callSeconds(ctx, METHOD_POSITION); err != nil {
			return nil, err
		}
	}

	if status.Shuffle, err = c.callBool(ctx, METHOD_SHUFFLE); err != nil {
		return nil, err
	}
	if status.Repeat, err = c.callBool(ctx, METHOD_REPEAT); err != nil {
		return nil, err
	}
	if status.Volume, err = c.Volume(ctx); err != nil {
		return nil, err
	}
	return &status, nil
}

// NowPlaying queries artist, title, album and duration, once each.
func (c *CmusBackend) NowPlaying(ctx context.Context) (player.Track, error) {
	var track player.Track
	var err error
	if track.Artist, err = c.callString(ctx, METHOD_ARTIST); err != nil {
		return player.Track{}, err
	}
	if track.Title, err = c.callString(ctx, METHOD_TITLE); err != nil {
		return player.Track{}, err
	}
	if track.Album, err = c.callString(ctx, METHOD_ALBUM); err != nil {
		return player.Track{}, err
	}
	if track.Duration, err = c.callSeconds(ctx, METHOD_DURATION); err != nil {
		return player.Track{}, err
	}
	return track, nil
}

func (c *CmusBackend) Volume(ctx context.Context) (int, error) {
	n, err := idbus.CallInt64(ctx, c.obj, c.method(METHOD_VOLUME))
	if err != nil {
		return 0, c.wrap(err)
	}
	return player.ClampVolume(int(n)), nil
}

// Subscribe listens for the requested signal types. An empty list
// subscribes to both.
func (c *CmusBackend) Subscribe(ctx context.Context, types []string, handler events.Handler) (*events.Subscription, error) {
	for _, t := range types {
		if t != events.TypeTrackChange && t != events.TypeVolumeChange {
			return nil, &player.UnsupportedError{Source: sourceName, Signal: t}
		}
	}

	var rules []string
	if events.Wants(types, events.TypeTrackChange) {
		rules = append(rules, idbus.SignalRule(c.iface, SIGNAL_TRACK_CHANGE, ""))
	}
	if events.Wants(types, events.TypeVolumeChange) {
		rules = append(rules, idbus.SignalRule(c.iface, SIGNAL_VOLUME_CHANGE, ""))
	}

	filter := events.FilterTypes(types)
	sub, err := idbus.Listen(ctx, c.conn, c.bus, rules, func(sig *dbus.Signal) {
		e, ok := c.translate(sig)
		if !ok {
			return
		}
		if filter != nil && !filter(e) {
			return
		}
		logger.Debug("[cmus] %s", e.Type)
		handler(e)
	})
	if err != nil {
		return nil, c.wrap(err)
	}
	logger.Info("[cmus] subscribed to %d signal(s)", len(rules))
	return sub, nil
}

// translate maps a cmus signal to an event. Signals from other interfaces
// are dropped since the connection is shared.
func (c *CmusBackend) translate(sig *dbus.Signal) (events.Event, bool) {
	if sig == nil {
		return events.Event{}, false
	}
	iface, member := idbus.SplitSignalName(sig.Name)
	if iface != c.iface {
		return events.Event{}, false
	}
	switch member {
	case SIGNAL_TRACK_CHANGE:
		return events.Event{Type: events.TypeTrackChange, Source: sourceName}, true
	case SIGNAL_VOLUME_CHANGE:
		return events.Event{Type: events.TypeVolumeChange, Source: sourceName}, true
	default:
		logger.Debug("[cmus] unhandled signal: %s", sig.Name)
		return events.Event{}, false
	}
}

// Close is a no-op: the bus connection belongs to the caller.
func (c *CmusBackend) Close() {}
