package main

import (
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"

	"github.com/b0bbywan/go-odio-relay/backend/lastfm"
	"github.com/b0bbywan/go-odio-relay/backend/listenbrainz"
	"github.com/b0bbywan/go-odio-relay/backend/notify"
	"github.com/b0bbywan/go-odio-relay/backend/purple"
	"github.com/b0bbywan/go-odio-relay/backend/zeroconf"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/logger"
	"github.com/b0bbywan/go-odio-relay/relay"
)

const (
	targetConsole      = "console"
	targetNotify       = "notify"
	targetLastfm       = "lastfm"
	targetListenBrainz = "listenbrainz"
	targetZeroconf     = "zeroconf"
)

// buildTargets creates the targets named in watch.targets, in order.
func buildTargets(conn *dbus.Conn, cfg *config.Config) ([]relay.Target, error) {
	if len(cfg.Watch.Targets) == 0 {
		return nil, fmt.Errorf("no targets configured")
	}
	targets := make([]relay.Target, 0, len(cfg.Watch.Targets))
	for _, name := range cfg.Watch.Targets {
		t, err := newTarget(conn, cfg, name)
		if err != nil {
			closeTargets(targets)
			return nil, fmt.Errorf("target %s: %w", name, err)
		}
		logger.Debug("[%s] target %s enabled", config.AppName, t.Name())
		targets = append(targets, t)
	}
	return targets, nil
}

func newTarget(conn *dbus.Conn, cfg *config.Config, name string) (relay.Target, error) {
	switch name {
	case targetConsole:
		return relay.NewConsole(os.Stdout), nil
	case targetNotify:
		return notify.New(conn, cfg.Notify)
	case config.MessengerPidgin, config.MessengerGaim:
		flavour, err := purple.FlavourByName(name)
		if err != nil {
			return nil, err
		}
		return purple.New(conn, flavour)
	case targetLastfm:
		return lastfm.New(cfg.Lastfm)
	case targetListenBrainz:
		return listenbrainz.New(cfg.ListenBrainz)
	case targetZeroconf:
		return zeroconf.New(cfg.Zeroconf)
	default:
		return nil, fmt.Errorf("unknown target %q", name)
	}
}

func closeTargets(targets []relay.Target) {
	for _, t := range targets {
		if c, ok := t.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
