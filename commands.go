package main

import (
	"context"
	"fmt"
	"os"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/godbus/dbus/v5"
	"github.com/spf13/pflag"

	"github.com/b0bbywan/go-odio-relay/args"
	"github.com/b0bbywan/go-odio-relay/backend"
	"github.com/b0bbywan/go-odio-relay/backend/purple"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/logger"
	"github.com/b0bbywan/go-odio-relay/relay"
)

type command struct {
	name    string
	summary string
	flags   func(fs *pflag.FlagSet)
	run     func(ctx context.Context, cfg *config.Config, fs *pflag.FlagSet) error
	// reload re-applies log levels when the config file changes
	reload  bool
}

var commands = []command{
	{
		name:    "away",
		summary: "set the messenger status to \"artist X title Y\"",
		flags: func(fs *pflag.FlagSet) {
			fs.String("messenger", "", "messenger flavour (pidgin, gaim)")
		},
		run: runAway,
	},
	{
		name:    "query",
		summary: "print the player status",
		flags: func(fs *pflag.FlagSet) {
			fs.Bool("album", false, "print the album after the title")
		},
		run: runQuery,
	},
	{
		name:    "watch",
		summary: "relay track and volume changes until interrupted",
		flags: func(fs *pflag.FlagSet) {
			fs.StringSlice("targets", nil, "targets to publish to (console, notify, pidgin, gaim, lastfm, listenbrainz, zeroconf)")
			fs.Bool("volume", true, "relay volume changes")
			fs.Bool("initial", false, "publish the current track at start-up")
		},
		run:    runWatch,
		reload: true,
	},
	{
		name:    "version",
		summary: "print the version",
		run: func(context.Context, *config.Config, *pflag.FlagSet) error {
			fmt.Println(config.AppName, config.AppVersion)
			return nil
		},
	},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// connect opens the process-wide bus connection. Replaced in tests.
var connect = func(cfg *config.Config) (*dbus.Conn, error) {
	conn, err := backend.Connect(cfg.DBus)
	if err != nil {
		return nil, err
	}
	logger.Debug("[%s] connected to the session bus", config.AppName)
	return conn, nil
}

func runAway(ctx context.Context, cfg *config.Config, fs *pflag.FlagSet) error {
	// validate before touching the bus
	set, err := args.Parse(fs.Args())
	if err != nil {
		return err
	}
	logger.Debug("[%s] away %s", config.AppName, set)
	track, err := set.Track()
	if err != nil {
		return err
	}
	flavour, err := purple.FlavourByName(cfg.Messenger.Kind)
	if err != nil {
		return err
	}

	conn, err := connect(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := purple.New(conn, flavour)
	if err != nil {
		return err
	}
	return relay.Away(ctx, client, track)
}

func runQuery(ctx context.Context, cfg *config.Config, fs *pflag.FlagSet) error {
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	album, _ := fs.GetBool("album")

	conn, err := connect(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	b, err := backend.New(ctx, conn, cfg, false)
	if err != nil {
		return err
	}
	defer b.Close()

	return relay.Query(ctx, b.Player, os.Stdout, relay.QueryOptions{Album: album})
}

func runWatch(ctx context.Context, cfg *config.Config, fs *pflag.FlagSet) error {
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	conn, err := connect(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	b, err := backend.New(ctx, conn, cfg, cfg.Watch.Volume)
	if err != nil {
		return err
	}
	defer b.Close()

	targets, err := buildTargets(conn, cfg)
	if err != nil {
		return err
	}

	w := relay.NewWatcher(b, b.Player, b.Volume, targets, relay.WatchOptions{
		Volume:  cfg.Watch.Volume,
		Initial: cfg.Watch.Initial,
		Ready:   func() { sdNotify(daemon.SdNotifyReady) },
	})
	err = w.Run(ctx)
	sdNotify(daemon.SdNotifyStopping)
	if err != nil {
		return err
	}
	logger.Info("[%s] stopped", config.AppName)
	return nil
}

func sdNotify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logger.Warn("[%s] sd_notify %s failed: %v", config.AppName, state, err)
		return
	}
	if sent {
		logger.Debug("[%s] sd_notify %s", config.AppName, state)
	}
}
