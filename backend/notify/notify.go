package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/esiqveland/notify"
	"github.com/godbus/dbus/v5"

	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

const (
	SUMMARY_NOW_PLAYING = "Now playing"
	SUMMARY_VOLUME      = "Volume"
)

// Notifier shows desktop notifications. Each one replaces the previous.
type Notifier struct {
	cfg  *config.NotifyConfig
	send func(notify.Notification) (uint32, error)

	mu     sync.Mutex
	lastID uint32
}

func New(conn *dbus.Conn, cfg *config.NotifyConfig) (*Notifier, error) {
	if conn == nil {
		return nil, fmt.Errorf("notify: nil connection")
	}
	if cfg == nil {
		cfg = &config.NotifyConfig{AppName: config.AppName}
	}
	return &Notifier{
		cfg: cfg,
		send: func(n notify.Notification) (uint32, error) {
			return notify.SendNotification(conn, n)
		},
	}, nil
}

func (n *Notifier) Name() string { return "notify" }

func (n *Notifier) Publish(ctx context.Context, e events.Event) error {
	summary, body, ok := render(e)
	if !ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	note := notify.Notification{
		AppName:       n.cfg.AppName,
		ReplacesID:    n.lastID,
		AppIcon:       n.cfg.Icon,
		Summary:       summary,
		Body:          body,
		ExpireTimeout: notify.ExpireTimeoutSetByNotificationServer,
	}
	if n.cfg.Timeout > 0 {
		note.ExpireTimeout = n.cfg.Timeout
	}

	id, err := n.send(note)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	logger.Debug("[notify] #%d %s: %s", id, summary, body)
	n.lastID = id
	return nil
}

// render builds the summary and body for e. ok is false for events the
// notifier does not show.
func render(e events.Event) (summary, body string, ok bool) {
	switch e.Type {
	case events.TypeNowPlaying:
		track, isTrack := e.Data.(player.Track)
		if !isTrack {
			return "", "", false
		}
		body = track.String()
		if track.Album != "" {
			body += "\n" + track.Album
		}
		return SUMMARY_NOW_PLAYING, body, true
	case events.TypeVolume:
		v, isInt := e.Data.(int)
		if !isInt {
			return "", "", false
		}
		return SUMMARY_VOLUME, fmt.Sprintf("%d%%", v), true
	}
	return "", "", false
}
