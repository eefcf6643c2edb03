package mpd

import (
	"context"
	"sync"
	"time"

	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// Subscribe watches MPD's idle subsystems. A "player" event is reported as a
// track change only when the song id moved; "mixer" maps to a volume change.
func (m *MPDBackend) Subscribe(ctx context.Context, types []string, handler events.Handler) (*events.Subscription, error) {
	var subsystems []string
	for _, t := range types {
		if t != events.TypeTrackChange && t != events.TypeVolumeChange {
			return nil, &player.UnsupportedError{Source: sourceName, Signal: t}
		}
	}
	if events.Wants(types, events.TypeTrackChange) {
		subsystems = append(subsystems, SUBSYSTEM_PLAYER)
	}
	if events.Wants(types, events.TypeVolumeChange) {
		subsystems = append(subsystems, SUBSYSTEM_MIXER)
	}

	// current song id, so that pause/resume is not reported as a new track
	attrs, err := m.status()
	if err != nil {
		return nil, err
	}
	lastSong := attrs["songid"]

	w, err := m.watch(subsystems...)
	if err != nil {
		return nil, &player.NotRunningError{Source: sourceName, Err: err}
	}

	lctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-lctx.Done():
				return
			case <-ticker.C:
				if err := m.ping(); err != nil {
					logger.Warn("[mpd] keep-alive failed: %v", err)
				}
			case err, ok := <-w.Error:
				if !ok {
					return
				}
				logger.Error("[mpd] watcher: %v", err)
			case subsystem, ok := <-w.Event:
				if !ok {
					return
				}
				e, emit := m.translate(subsystem, &lastSong)
				if emit {
					logger.Debug("[mpd] %s", e.Type)
					handler(e)
				}
			}
		}
	}()

	logger.Info("[mpd] watching %v", subsystems)
	return events.NewSubscription(func() {
		cancel()
		wg.Wait()
		if w.close != nil {
			if err := w.close(); err != nil {
				logger.Debug("[mpd] closing watcher: %v", err)
			}
		}
	}), nil
}

// translate maps an idle subsystem to an event. lastSong is updated in place.
func (m *MPDBackend) translate(subsystem string, lastSong *string) (events.Event, bool) {
	switch subsystem {
	case SUBSYSTEM_PLAYER:
		attrs, err := m.status()
		if err != nil {
			logger.Warn("[mpd] status after player event: %v", err)
			return events.Event{}, false
		}
		id := attrs["songid"]
		if id == *lastSong {
			return events.Event{}, false
		}
		*lastSong = id
		if id == "" {
			// playlist ended, nothing to announce
			return events.Event{}, false
		}
		return events.Event{Type: events.TypeTrackChange, Source: sourceName}, true
	case SUBSYSTEM_MIXER:
		return events.Event{Type: events.TypeVolumeChange, Source: sourceName}, true
	default:
		return events.Event{}, false
	}
}
