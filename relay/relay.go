// Package relay implements the three ways of forwarding player status:
// a one-shot away message, a one-shot status dump and a long-running watcher
// that publishes every track and volume change to a set of targets.
package relay

import (
	"context"

	"github.com/b0bbywan/go-odio-relay/args"
	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// Target receives relay events. Targets ignore the event types they do not
// handle.
type Target interface {
	Name() string
	Publish(ctx context.Context, e events.Event) error
}

// Messenger sets the status message of an instant messaging client.
type Messenger interface {
	SetStatusMessage(ctx context.Context, message string) error
}

// Away sets the messenger's status message to the track. The arguments are
// expected to be validated already, so that nothing is sent on bad input.
func Away(ctx context.Context, m Messenger, track args.TrackArgs) error {
	message := player.AwayMessage(track.Artist, track.Title)
	logger.Debug("[relay] away message: %s", message)
	return m.SetStatusMessage(ctx, message)
}
