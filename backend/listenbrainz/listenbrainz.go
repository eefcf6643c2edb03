package listenbrainz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	lb "github.com/kori/go-listenbrainz"

	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// ErrNoToken is returned when no user token is configured.
var ErrNoToken = errors.New("listenbrainz: user token is required")

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return "listenbrainz: " + e.Status
}

// Client submits playing_now listens.
type Client struct {
	token  string
	submit func(lb.Track, string) (*http.Response, error)
}

func New(cfg *config.ListenBrainzConfig) (*Client, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, ErrNoToken
	}
	return &Client{token: cfg.Token, submit: lb.SubmitPlayingNow}, nil
}

func (c *Client) Name() string { return "listenbrainz" }

func (c *Client) Publish(ctx context.Context, e events.Event) error {
	if e.Type != events.TypeNowPlaying {
		return nil
	}
	track, ok := e.Data.(player.Track)
	if !ok {
		return fmt.Errorf("listenbrainz: unexpected payload %T", e.Data)
	}
	if track.Artist == "" || track.Title == "" {
		logger.Debug("[listenbrainz] skipping track without artist or title")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r, err := c.submit(lb.Track{Title: track.Title, Artist: track.Artist, Album: track.Album}, c.token)
	if err != nil {
		return fmt.Errorf("listenbrainz: submit: %w", err)
	}
	defer r.Body.Close()
	_, _ = io.Copy(io.Discard, r.Body)

	if r.StatusCode < 200 || r.StatusCode > 299 {
		return &StatusError{Status: r.Status, Code: r.StatusCode}
	}
	logger.Debug("[listenbrainz] %s: playing now: %s", r.Status, track)
	return nil
}
