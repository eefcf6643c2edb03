package events

import "sync"

const (
	// Signals emitted by player and volume sources. They carry no payload:
	// receivers query the source for fresh values.
	TypeTrackChange  = "player.track_change"
	TypeVolumeChange = "player.volume_change"

	// Events published by the relay to its targets.
	TypeNowPlaying = "relay.now_playing" // Data: player.Track
	TypeVolume     = "relay.volume"      // Data: int (percent)
)

type Event struct {
	Type   string
	Source string
	Data   any
}

// Handler receives decoded events. Handlers run one at a time.
type Handler func(Event)

// Filter reports whether an event should be delivered.
type Filter func(Event) bool

// FilterTypes returns a filter passing only the given types, or nil
// (pass-all) when types is empty.
func FilterTypes(types []string) Filter {
	if len(types) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(e Event) bool {
		_, ok := set[e.Type]
		return ok
	}
}

// Wants reports whether types contains t. An empty list wants everything.
func Wants(types []string, t string) bool {
	if len(types) == 0 {
		return true
	}
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// Subscription is the handle returned by a Subscribe call.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps the release function of a subscription.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe releases the subscription. It is idempotent.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
