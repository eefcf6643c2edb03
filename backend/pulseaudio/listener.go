package pulseaudio

import (
	"context"
	"sync"

	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// Subscribe reports master volume changes. The server notifies every change
// it knows about, so the volume is re-read and only real changes are passed on.
func (pa *PulseAudioBackend) Subscribe(ctx context.Context, types []string, handler events.Handler) (*events.Subscription, error) {
	for _, t := range types {
		if t != events.TypeVolumeChange {
			return nil, &player.UnsupportedError{Source: sourceName, Signal: t}
		}
	}

	last, err := pa.Volume(ctx)
	if err != nil {
		return nil, err
	}

	pa.mu.Lock()
	if pa.client == nil {
		pa.mu.Unlock()
		return nil, &player.NotRunningError{Source: sourceName, Err: context.Canceled}
	}
	updates, err := pa.client.Updates()
	pa.mu.Unlock()
	if err != nil {
		return nil, err
	}

	lctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-lctx.Done():
				return
			case _, ok := <-updates:
				if !ok {
					return
				}
				v, err := pa.Volume(lctx)
				if err != nil {
					logger.Warn("[pulse] failed to read volume: %v", err)
					continue
				}
				if v == last {
					continue
				}
				logger.Debug("[pulse] volume %d -> %d", last, v)
				last = v
				handler(events.Event{Type: events.TypeVolumeChange, Source: sourceName})
			}
		}
	}()

	logger.Info("[pulse] listening for volume changes")
	return events.NewSubscription(func() {
		cancel()
		wg.Wait()
	}), nil
}
