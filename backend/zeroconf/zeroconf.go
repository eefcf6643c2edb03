package zeroconf

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/grandcat/zeroconf"

	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// maximum length of a single TXT string
const maxTxtLen = 255

// server is the part of *zeroconf.Server used by the beacon.
type server interface {
	SetText(text []string)
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, text []string) (server, error)

// ZeroConfBackend announces the current track over mDNS.
type ZeroConfBackend struct {
	Config *config.ZeroConfig

	register registerFunc
	server   server
	mu       sync.Mutex
}

// New prepares the beacon. The service is registered on the first track.
func New(cfg *config.ZeroConfig) (*ZeroConfBackend, error) {
	if cfg == nil || cfg.InstanceName == "" || cfg.ServiceType == "" {
		return nil, fmt.Errorf("zeroconf: incomplete configuration")
	}
	return &ZeroConfBackend{
		Config: cfg,
		register: func(instance, service, domain string, port int, text []string) (server, error) {
			return zeroconf.Register(instance, service, domain, port, text, nil)
		},
	}, nil
}

func (z *ZeroConfBackend) Name() string { return "zeroconf" }

// Publish registers the service on first use, then only refreshes its TXT
// records.
func (z *ZeroConfBackend) Publish(ctx context.Context, e events.Event) error {
	if e.Type != events.TypeNowPlaying {
		return nil
	}
	track, ok := e.Data.(player.Track)
	if !ok {
		return fmt.Errorf("zeroconf: unexpected payload %T", e.Data)
	}
	text := TxtRecords(track)

	z.mu.Lock()
	defer z.mu.Unlock()

	if z.server != nil {
		z.server.SetText(text)
		logger.Debug("[zeroconf] TXT updated: %v", text)
		return nil
	}

	srv, err := z.register(z.Config.InstanceName, z.Config.ServiceType, z.Config.Domain, z.Config.Port, text)
	if err != nil {
		return fmt.Errorf("zeroconf: register: %w", err)
	}
	z.server = srv
	logger.Info("[zeroconf] service '%s' published (type: %s, port: %d)",
		z.Config.InstanceName, z.Config.ServiceType, z.Config.Port)
	return nil
}

// Close withdraws the service.
func (z *ZeroConfBackend) Close() {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.server != nil {
		z.server.Shutdown()
		z.server = nil
		logger.Debug("[zeroconf] service '%s' stopped", z.Config.InstanceName)
	}
}

// TxtRecords renders the track as artist=, title= and album= strings.
func TxtRecords(t player.Track) []string {
	return []string{
		txt("artist", t.Artist),
		txt("title", t.Title),
		txt("album", t.Album),
	}
}

func txt(key, value string) string {
	s := key + "=" + value
	if len(s) <= maxTxtLen {
		return s
	}
	s = s[:maxTxtLen]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
