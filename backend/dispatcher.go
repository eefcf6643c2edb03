package backend

import (
	"context"
	"sync"

	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// dispatcher merges events pushed from several source goroutines into one
// channel and runs the handler on a single goroutine.
type dispatcher struct {
	ch      chan events.Event
	ctx     context.Context
	cancel  context.CancelFunc
	handler events.Handler
	wg      sync.WaitGroup
}

func newDispatcher(ctx context.Context, handler events.Handler) *dispatcher {
	dctx, cancel := context.WithCancel(ctx)
	d := &dispatcher{
		ch:      make(chan events.Event, 64),
		ctx:     dctx,
		cancel:  cancel,
		handler: handler,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// push queues e. It blocks while the queue is full and gives up once the
// dispatcher is stopped.
func (d *dispatcher) push(e events.Event) {
	select {
	case d.ch <- e:
	case <-d.ctx.Done():
		logger.Debug("[backend] dropping %s event after shutdown", e.Type)
	}
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case e := <-d.ch:
			d.handler(e)
		}
	}
}

// stop ends the dispatch goroutine and waits for the handler in progress.
func (d *dispatcher) stop() {
	d.cancel()
	d.wg.Wait()
}
