package mpd

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fhs/gompd/mpd"

	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/logger"
)

const (
	sourceName = "mpd"

	SUBSYSTEM_PLAYER = "player"
	SUBSYSTEM_MIXER  = "mixer"

	keepAliveInterval = 30 * time.Second
)

// client is the part of *mpd.Client the backend uses.
type client interface {
	Status() (mpd.Attrs, error)
	CurrentSong() (mpd.Attrs, error)
	Ping() error
	Close() error
}

// idleWatcher carries the channels of an *mpd.Watcher.
type idleWatcher struct {
	Event <-chan string
	Error <-chan error
	close func() error
}

type MPDBackend struct {
	mu     sync.Mutex
	client client
	watch  func(subsystems ...string) (*idleWatcher, error)
}

// network picks "unix" for socket paths and "tcp" otherwise.
func network(addr string) string {
	if strings.HasPrefix(addr, "/") || strings.HasPrefix(addr, "@") {
		return "unix"
	}
	return "tcp"
}

// New connects to the MPD server described by cfg.
func New(cfg *config.MPDConfig) (*MPDBackend, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("mpd: no address configured")
	}
	netw := network(cfg.Address)

	var c *mpd.Client
	var err error
	if cfg.Password == "" {
		c, err = mpd.Dial(netw, cfg.Address)
	} else {
		c, err = mpd.DialAuthenticated(netw, cfg.Address, cfg.Password)
	}
	if err != nil {
		return nil, &player.NotRunningError{Source: sourceName, Err: err}
	}
	logger.Debug("[mpd] connected to %s (%s)", cfg.Address, netw)

	return &MPDBackend{
		client: c,
		watch: func(subsystems ...string) (*idleWatcher, error) {
			w, err := mpd.NewWatcher(netw, cfg.Address, cfg.Password, subsystems...)
			if err != nil {
				return nil, err
			}
			return &idleWatcher{Event: w.Event, Error: w.Error, close: w.Close}, nil
		},
	}, nil
}

func (m *MPDBackend) Name() string { return sourceName }

func (m *MPDBackend) status() (mpd.Attrs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client.Status()
}

func (m *MPDBackend) currentSong() (mpd.Attrs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client.CurrentSong()
}

func (m *MPDBackend) ping() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client.Ping()
}

// Status combines the "status" and "currentsong" replies.
func (m *MPDBackend) Status(ctx context.Context) (*player.Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	attrs, err := m.status()
	if err != nil {
		return nil, err
	}

	status := player.Status{
		State:    player.ParseState(attrs["state"]),
		HasTrack: attrs["songid"] != "",
		Shuffle:  attrs["random"] == "1",
		Repeat:   attrs["repeat"] == "1",
		Volume:   parseVolume(attrs["volume"]),
	}

	if status.HasTrack {
		track, err := m.NowPlaying(ctx)
		if err != nil {
			return nil, err
		}
		if d := parseSeconds(attrs["duration"]); d > 0 {
			track.Duration = d
		}
		status.Track = track
		status.Position = parseSeconds(attrs["elapsed"])
	}
	return &status, nil
}

// NowPlaying issues a single "currentsong" command.
func (m *MPDBackend) NowPlaying(ctx context.Context) (player.Track, error) {
	if err := ctx.Err(); err != nil {
		return player.Track{}, err
	}
	song, err := m.currentSong()
	if err != nil {
		return player.Track{}, err
	}
	return trackFromSong(song), nil
}

func (m *MPDBackend) Volume(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	attrs, err := m.status()
	if err != nil {
		return 0, err
	}
	return parseVolume(attrs["volume"]), nil
}

func (m *MPDBackend) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return
	}
	if err := m.client.Close(); err != nil {
		logger.Debug("[mpd] close: %v", err)
	}
	m.client = nil
}

func trackFromSong(song mpd.Attrs) player.Track {
	track := player.Track{
		Artist: song["Artist"],
		Title:  song["Title"],
		Album:  song["Album"],
	}
	if d := parseSeconds(song["duration"]); d > 0 {
		track.Duration = d
	} else {
		track.Duration = parseSeconds(song["Time"])
	}
	return track
}

// parseSeconds parses MPD's fractional second values, truncating to the
// millisecond. Invalid input yields 0.
func parseSeconds(s string) time.Duration {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return time.Duration(math.Floor(f*1000)) * time.Millisecond
}

// parseVolume maps MPD's volume to a percentage; -1 (no mixer) becomes 0.
func parseVolume(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return player.ClampVolume(v)
}
