package player

import (
	"context"
	"time"

	"github.com/b0bbywan/go-odio-relay/events"
)

// State is the playback state of a player.
type State string

const (
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// Track is the part of the status that identifies what is playing.
type Track struct {
	Artist   string
	Title    string
	Album    string
	Duration time.Duration
}

// Status is a point-in-time snapshot of a player. It is fetched fresh for
// every query and never cached.
type Status struct {
	State    State
	HasTrack bool
	Track    Track
	Position time.Duration
	Shuffle  bool
	Repeat   bool
	Volume   int // percent, 0..100
}

// VolumeSource answers volume queries and emits volume-change signals.
type VolumeSource interface {
	Volume(ctx context.Context) (int, error)
	Subscribe(ctx context.Context, types []string, handler events.Handler) (*events.Subscription, error)
}

// Source is a media player backend.
type Source interface {
	VolumeSource
	Name() string
	Status(ctx context.Context) (*Status, error)
	NowPlaying(ctx context.Context) (Track, error)
	Close()
}
