package dbus

import (
	"context"

	"github.com/godbus/dbus/v5"

	"github.com/b0bbywan/go-odio-relay/events"
)

// SignalConn is the part of *dbus.Conn used to receive signals.
type SignalConn interface {
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
}

// Listen installs the match rules on the bus and calls dispatch for every
// signal received on conn until the returned subscription is released or
// ctx is cancelled. Signals are dispatched one at a time.
func Listen(ctx context.Context, conn SignalConn, bus Caller, rules []string, dispatch func(*dbus.Signal)) (*events.Subscription, error) {
	added := make([]string, 0, len(rules))
	for _, rule := range rules {
		if err := AddMatchRule(ctx, bus, rule); err != nil {
			removeRules(bus, added)
			return nil, err
		}
		added = append(added, rule)
	}

	ch := make(chan *dbus.Signal, 16)
	conn.Signal(ch)

	lctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-lctx.Done():
				return
			case sig, ok := <-ch:
				if !ok {
					return
				}
				dispatch(sig)
			}
		}
	}()

	return events.NewSubscription(func() {
		cancel()
		<-done
		conn.RemoveSignal(ch)
		removeRules(bus, added)
	}), nil
}

func removeRules(bus Caller, rules []string) {
	for _, rule := range rules {
		// the connection may already be gone on shutdown
		_ = RemoveMatchRule(context.Background(), bus, rule)
	}
}
