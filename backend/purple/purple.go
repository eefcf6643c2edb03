package purple

import (
	"context"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	idbus "github.com/b0bbywan/go-odio-relay/backend/internal/dbus"
	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// FlavourByName returns the flavour for "pidgin" or "gaim".
func FlavourByName(name string) (Flavour, error) {
	switch strings.ToLower(name) {
	case Pidgin.Name:
		return Pidgin, nil
	case Gaim.Name:
		return Gaim, nil
	}
	return Flavour{}, &UnknownFlavourError{Name: name}
}

// Client drives the saved-status API of a running libpurple client.
type Client struct {
	obj     idbus.Caller
	flavour Flavour
}

// New binds a client to conn. The connection stays owned by the caller.
func New(conn *dbus.Conn, f Flavour) (*Client, error) {
	if conn == nil {
		return nil, fmt.Errorf("purple: nil connection")
	}
	return &Client{
		obj:     idbus.GetObject(conn, f.Service, f.Path),
		flavour: f,
	}, nil
}

func (c *Client) Name() string { return c.flavour.Name }

// method returns the fully qualified name, e.g.
// im.pidgin.purple.PurpleInterface.PurpleSavedstatusNew.
func (c *Client) method(name string) string {
	return c.flavour.Interface + "." + c.flavour.Prefix + name
}

func (c *Client) callInt32(ctx context.Context, name string, args ...interface{}) (int32, error) {
	n, err := idbus.CallInt32(ctx, c.obj, c.method(name), args...)
	if err != nil {
		return 0, &CallError{Method: c.flavour.Prefix + name, Err: err}
	}
	return n, nil
}

func (c *Client) call(ctx context.Context, name string, args ...interface{}) error {
	if err := idbus.CallMethod(ctx, c.obj, c.method(name), args...); err != nil {
		return &CallError{Method: c.flavour.Prefix + name, Err: err}
	}
	return nil
}

func (c *Client) SavedstatusGetCurrent(ctx context.Context) (int32, error) {
	return c.callInt32(ctx, SAVEDSTATUS_GET_CURRENT)
}

func (c *Client) SavedstatusGetType(ctx context.Context, status int32) (int32, error) {
	return c.callInt32(ctx, SAVEDSTATUS_GET_TYPE, status)
}

func (c *Client) SavedstatusNew(ctx context.Context, title string, statusType int32) (int32, error) {
	return c.callInt32(ctx, SAVEDSTATUS_NEW, title, statusType)
}

func (c *Client) SavedstatusSetMessage(ctx context.Context, status int32, message string) error {
	return c.call(ctx, SAVEDSTATUS_SET_MESSAGE, status, message)
}

func (c *Client) SavedstatusActivate(ctx context.Context, status int32) error {
	return c.call(ctx, SAVEDSTATUS_ACTIVATE, status)
}

// SetStatusMessage creates a saved status of the same type as the current
// one, sets its message and activates it. The first failing call aborts.
func (c *Client) SetStatusMessage(ctx context.Context, message string) error {
	current, err := c.SavedstatusGetCurrent(ctx)
	if err != nil {
		return err
	}
	statusType, err := c.SavedstatusGetType(ctx, current)
	if err != nil {
		return err
	}
	saved, err := c.SavedstatusNew(ctx, "", statusType)
	if err != nil {
		return err
	}
	if err := c.SavedstatusSetMessage(ctx, saved, message); err != nil {
		return err
	}
	if err := c.SavedstatusActivate(ctx, saved); err != nil {
		return err
	}
	logger.Debug("[purple] %s status %d set to %q", c.flavour.Name, saved, message)
	return nil
}

// Publish sets the away message for now-playing events.
func (c *Client) Publish(ctx context.Context, e events.Event) error {
	if e.Type != events.TypeNowPlaying {
		return nil
	}
	track, ok := e.Data.(player.Track)
	if !ok {
		return fmt.Errorf("purple: unexpected payload %T", e.Data)
	}
	return c.SetStatusMessage(ctx, track.AwayMessage())
}
