package mpris

import (
	"sync"

	idbus "github.com/b0bbywan/go-odio-relay/backend/internal/dbus"
	"github.com/b0bbywan/go-odio-relay/cache"
)

// PlaybackStatus represents the current playback state
type PlaybackStatus string

// LoopStatus represents the current loop/repeat state
type LoopStatus string

// MPRISBackend follows a single MPRIS player.
type MPRISBackend struct {
	conn    idbus.SignalConn
	bus     idbus.Caller
	obj     idbus.Caller
	busName string

	// well-known name -> unique connection name, kept fresh by NameOwnerChanged
	owners *cache.Cache[string]

	// last track seen in a Metadata change, used to drop repeats
	mu        sync.Mutex
	lastTrack string
}
