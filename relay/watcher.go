package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// Subscriber delivers change signals to a single handler goroutine.
type Subscriber interface {
	Subscribe(ctx context.Context, volume bool, handler events.Handler) (*events.Subscription, error)
}

type TrackReader interface {
	NowPlaying(ctx context.Context) (player.Track, error)
}

type VolumeReader interface {
	Volume(ctx context.Context) (int, error)
}

type WatchOptions struct {
	// Volume also relays volume changes
	Volume bool
	// Initial publishes the current track before waiting for signals
	Initial bool
	// Ready, if set, runs once the subscriptions are in place
	Ready func()
}

// Watcher turns change signals into relay events published to every target.
// The first failing query or target stops it.
type Watcher struct {
	subscriber Subscriber
	tracks     TrackReader
	volume     VolumeReader
	targets    []Target
	opts       WatchOptions

	once   sync.Once
	err    error
	cancel context.CancelFunc
}

func NewWatcher(sub Subscriber, tracks TrackReader, volume VolumeReader, targets []Target, opts WatchOptions) *Watcher {
	return &Watcher{
		subscriber: sub,
		tracks:     tracks,
		volume:     volume,
		targets:    targets,
		opts:       opts,
	}
}

// Run blocks until ctx is done or an event could not be relayed. It returns
// nil on a clean shutdown. Targets are closed before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.closeTargets()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w.cancel = cancel

	if w.opts.Initial {
		if err := w.initial(ctx); err != nil {
			return err
		}
	}

	sub, err := w.subscriber.Subscribe(ctx, w.opts.Volume, func(e events.Event) {
		if err := w.handle(ctx, e); err != nil {
			w.fail(err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	logger.Info("[relay] watching for changes, %d target(s)", len(w.targets))
	if w.opts.Ready != nil {
		w.opts.Ready()
	}

	<-ctx.Done()
	// waits for the handler in progress
	sub.Unsubscribe()
	logger.Debug("[relay] subscriptions released")
	return w.err
}

func (w *Watcher) fail(err error) {
	w.once.Do(func() {
		logger.Error("[relay] %v", err)
		w.err = err
		w.cancel()
	})
}

func (w *Watcher) initial(ctx context.Context) error {
	track, err := w.tracks.NowPlaying(ctx)
	if err != nil {
		return fmt.Errorf("now playing: %w", err)
	}
	if track.IsZero() {
		logger.Debug("[relay] nothing playing at start-up")
		return nil
	}
	return w.publish(ctx, events.Event{Type: events.TypeNowPlaying, Data: track})
}

// handle queries the source once per signal and publishes the result.
func (w *Watcher) handle(ctx context.Context, e events.Event) error {
	logger.Debug("[relay] %s from %s", e.Type, e.Source)

	switch e.Type {
	case events.TypeTrackChange:
		track, err := w.tracks.NowPlaying(ctx)
		if err != nil {
			return fmt.Errorf("now playing: %w", err)
		}
		if track.IsZero() {
			logger.Debug("[relay] %s has no track, nothing to relay", e.Source)
			return nil
		}
		return w.publish(ctx, events.Event{Type: events.TypeNowPlaying, Source: e.Source, Data: track})

	case events.TypeVolumeChange:
		if !w.opts.Volume {
			return nil
		}
		v, err := w.volume.Volume(ctx)
		if err != nil {
			return fmt.Errorf("volume: %w", err)
		}
		return w.publish(ctx, events.Event{Type: events.TypeVolume, Source: e.Source, Data: v})

	default:
		logger.Debug("[relay] ignoring %s", e.Type)
		return nil
	}
}

// publish hands e to every target, in order, and returns the first error.
func (w *Watcher) publish(ctx context.Context, e events.Event) error {
	for _, t := range w.targets {
		if err := t.Publish(ctx, e); err != nil {
			return &TargetError{Target: t.Name(), Err: err}
		}
	}
	return nil
}

func (w *Watcher) closeTargets() {
	for _, t := range w.targets {
		if c, ok := t.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
