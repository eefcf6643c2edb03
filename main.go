package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/logger"
)

func main() {
	fs := pflag.NewFlagSet(config.AppName, pflag.ContinueOnError)
	// flags must come before the command and its key/value tokens
	fs.SetInterspersed(false)
	config.Flags(fs)
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logger.Fatal("[%s] %v", config.AppName, err)
	}
	if fs.NArg() == 0 {
		usage(fs)
		os.Exit(2)
	}

	cmd, ok := lookupCommand(fs.Arg(0))
	if !ok {
		logger.Fatal("[%s] unknown command %q", config.AppName, fs.Arg(0))
	}

	cmdFlags := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	cmdFlags.SetInterspersed(false)
	if cmd.flags != nil {
		cmd.flags(cmdFlags)
	}
	if err := cmdFlags.Parse(fs.Args()[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logger.Fatal("[%s] %s: %v", config.AppName, cmd.name, err)
	}
	fs.AddFlagSet(cmdFlags)

	cfg, err := config.New(fs)
	if err != nil {
		logger.Fatal("[%s] Failed to load config: %v", config.AppName, err)
	}

	// Set log levels from config
	config.ApplyLogLevels(cfg)
	if cfg.File != "" {
		logger.Debug("[%s] config loaded from %s", config.AppName, cfg.File)
	}
	if cmd.reload {
		config.Watch(cfg, fs)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Goroutine for signal handling
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan

		logger.Info("[%s] %s received, stopping...", config.AppName, sig)
		cancel()
	}()

	if err := cmd.run(ctx, cfg, cmdFlags); err != nil {
		logger.Fatal("[%s] %s: %v", config.AppName, cmd.name, err)
	}
}

func usage(fs *pflag.FlagSet) {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.name)
	}
	fmt.Fprintf(os.Stderr, "usage: %s [flags] <%s> [command flags] [key value]...\n\n",
		config.AppName, strings.Join(names, "|"))
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(os.Stderr, "\nflags:")
	fmt.Fprint(os.Stderr, fs.FlagUsages())
}
