package relay

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/events"
)

// Console prints one line per event.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Publish(_ context.Context, e events.Event) error {
	var line string
	switch e.Type {
	case events.TypeNowPlaying:
		track, ok := e.Data.(player.Track)
		if !ok {
			return fmt.Errorf("console: unexpected payload %T", e.Data)
		}
		line = track.AwayMessage()
	case events.TypeVolume:
		v, ok := e.Data.(int)
		if !ok {
			return fmt.Errorf("console: unexpected payload %T", e.Data)
		}
		line = fmt.Sprintf("volume %d", v)
	default:
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, line)
	return err
}
