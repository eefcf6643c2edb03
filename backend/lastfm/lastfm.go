package lastfm

import (
	"context"
	"errors"
	"fmt"

	"github.com/shkh/lastfm-go/lastfm"

	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// ErrNotAuthenticated is returned when the api key, secret or session key is missing.
var ErrNotAuthenticated = errors.New("lastfm: api key, secret and session key are required")

// Client reports now-playing tracks to Last.fm.
type Client struct {
	updateNowPlaying func(lastfm.P) error
}

func New(cfg *config.LastfmConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" || cfg.APISecret == "" || cfg.SessionKey == "" {
		return nil, ErrNotAuthenticated
	}
	api := lastfm.New(cfg.APIKey, cfg.APISecret)
	api.SetSession(cfg.SessionKey)

	return &Client{
		updateNowPlaying: func(p lastfm.P) error {
			_, err := api.Track.UpdateNowPlaying(p)
			return err
		},
	}, nil
}

func (c *Client) Name() string { return "lastfm" }

// Publish sends track.updateNowPlaying for now-playing events.
func (c *Client) Publish(ctx context.Context, e events.Event) error {
	if e.Type != events.TypeNowPlaying {
		return nil
	}
	track, ok := e.Data.(player.Track)
	if !ok {
		return fmt.Errorf("lastfm: unexpected payload %T", e.Data)
	}
	if track.Artist == "" || track.Title == "" {
		logger.Debug("[lastfm] skipping track without artist or title")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.updateNowPlaying(nowPlayingParams(track)); err != nil {
		return fmt.Errorf("lastfm: update now playing: %w", err)
	}
	logger.Debug("[lastfm] now playing: %s", track)
	return nil
}

func nowPlayingParams(track player.Track) lastfm.P {
	params := lastfm.P{
		"artist": track.Artist,
		"track":  track.Title,
	}
	if track.Album != "" {
		params["album"] = track.Album
	}
	if track.Duration > 0 {
		params["duration"] = int(track.Duration.Seconds())
	}
	return params
}
