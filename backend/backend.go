package backend

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/b0bbywan/go-odio-relay/backend/cmus"
	idbus "github.com/b0bbywan/go-odio-relay/backend/internal/dbus"
	"github.com/b0bbywan/go-odio-relay/backend/mpd"
	"github.com/b0bbywan/go-odio-relay/backend/mpris"
	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/backend/pulseaudio"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// Backend holds the player source and the source of volume changes, which
// is either the player itself or the sound server.
type Backend struct {
	Player player.Source
	Volume player.VolumeSource

	// set when the volume comes from PulseAudio
	pulse *pulseaudio.PulseAudioBackend
}

// Connect opens the session bus and applies the per-call timeout. The
// returned connection is shared by every component of the process.
func Connect(cfg *config.DBusConfig) (*dbus.Conn, error) {
	if cfg != nil && cfg.Timeout > 0 {
		idbus.DefaultTimeout = cfg.Timeout
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return conn, nil
}

// New builds the sources selected by cfg. conn stays owned by the caller.
// The sound server is only contacted when volume is true; otherwise the
// player answers volume queries.
func New(ctx context.Context, conn *dbus.Conn, cfg *config.Config, volume bool) (*Backend, error) {
	src, err := newPlayer(ctx, conn, cfg.Player)
	if err != nil {
		return nil, err
	}
	b := Backend{Player: src, Volume: src}

	if volume && cfg.Volume != nil && cfg.Volume.Source == config.VolumeFromPulse {
		p, err := pulseaudio.New(cfg.Volume)
		if err != nil {
			src.Close()
			return nil, err
		}
		b.pulse = p
		b.Volume = p
	}

	logger.Info("[backend] player: %s, volume: %s", b.playerName(), b.volumeName())
	return &b, nil
}

func newPlayer(ctx context.Context, conn *dbus.Conn, cfg *config.PlayerConfig) (player.Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("backend: no player configuration")
	}
	switch cfg.Backend {
	case config.PlayerCmus:
		return cmus.New(conn, cfg.Cmus)
	case config.PlayerMPRIS:
		return mpris.New(ctx, conn, cfg.MPRIS)
	case config.PlayerMPD:
		return mpd.New(cfg.MPD)
	default:
		return nil, fmt.Errorf("backend: unknown player %q", cfg.Backend)
	}
}

// separateVolume reports whether volume changes come from another source
// than the player.
func (b *Backend) separateVolume() bool {
	return b.Volume != nil && b.Volume != player.VolumeSource(b.Player)
}

func (b *Backend) playerName() string {
	if m, ok := b.Player.(*mpris.MPRISBackend); ok {
		return fmt.Sprintf("%s (%s)", m.Name(), m.BusName())
	}
	return b.Player.Name()
}

func (b *Backend) volumeName() string {
	if b.pulse != nil {
		return string(b.pulse.Kind())
	}
	return b.Player.Name()
}

// Subscribe delivers track changes, and volume changes when volume is true,
// to handler. All sources feed a single goroutine so handler is never
// called concurrently.
func (b *Backend) Subscribe(ctx context.Context, volume bool, handler events.Handler) (*events.Subscription, error) {
	d := newDispatcher(ctx, handler)

	var subs []*events.Subscription
	release := func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
		d.stop()
	}

	separate := b.separateVolume()
	playerTypes := []string{events.TypeTrackChange}
	if volume && !separate {
		playerTypes = append(playerTypes, events.TypeVolumeChange)
	}
	s, err := b.Player.Subscribe(ctx, playerTypes, d.push)
	if err != nil {
		release()
		return nil, err
	}
	subs = append(subs, s)

	if volume && separate {
		s, err := b.Volume.Subscribe(ctx, []string{events.TypeVolumeChange}, d.push)
		if err != nil {
			release()
			return nil, err
		}
		subs = append(subs, s)
	}

	return events.NewSubscription(release), nil
}

func (b *Backend) Close() {
	if b.Player != nil {
		b.Player.Close()
	}
	if b.pulse != nil {
		b.pulse.Close()
	}
}
