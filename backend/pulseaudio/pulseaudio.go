package pulseaudio

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/the-jonsey/pulseaudio"

	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/logger"
)

const sourceName = "pulseaudio"

// DefaultAddress is the native protocol socket of the user's sound server.
func DefaultAddress() string {
	return filepath.Join(xdg.RuntimeDir, "pulse", "native")
}

// New connects to the sound server. PipeWire's pulse compatibility layer is
// detected and reported but handled the same way.
func New(cfg *config.VolumeConfig) (*PulseAudioBackend, error) {
	address := DefaultAddress()
	if cfg != nil && cfg.PulseAddress != "" {
		address = cfg.PulseAddress
	}

	c, err := pulseaudio.NewClient(address)
	if err != nil {
		return nil, &player.NotRunningError{Source: sourceName, Err: err}
	}
	server, err := c.ServerInfo()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("pulseaudio: server info: %w", err)
	}
	kind := detectServerKind(server)
	logger.Info("[pulse] connected to %s %s at %s", kind, server.PackageVersion, address)

	return &PulseAudioBackend{client: c, kind: kind}, nil
}

func (pa *PulseAudioBackend) Name() string { return sourceName }

// Kind reports whether the server is PulseAudio or PipeWire.
func (pa *PulseAudioBackend) Kind() AudioServerKind { return pa.kind }

// Volume returns the default sink volume as a percentage.
func (pa *PulseAudioBackend) Volume(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pa.mu.Lock()
	defer pa.mu.Unlock()
	if pa.client == nil {
		return 0, fmt.Errorf("pulseaudio: client closed")
	}
	v, err := pa.client.Volume()
	if err != nil {
		return 0, fmt.Errorf("pulseaudio: get volume: %w", err)
	}
	return toPercent(v), nil
}

// Close closes the connection to the sound server.
func (pa *PulseAudioBackend) Close() {
	pa.mu.Lock()
	defer pa.mu.Unlock()
	if pa.client != nil {
		pa.client.Close()
		pa.client = nil
	}
}

func toPercent(v float32) int {
	return player.ClampVolume(int(math.Round(float64(v) * 100)))
}

func detectServerKind(s *pulseaudio.Server) AudioServerKind {
	if s != nil && strings.Contains(strings.ToLower(s.PackageName), "pipewire") {
		return ServerPipeWire
	}
	return ServerPulse
}
