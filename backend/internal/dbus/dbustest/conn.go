package dbustest

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

// SignalConn collects registered signal channels so tests can emit signals.
type SignalConn struct {
	mu      sync.Mutex
	chans   []chan<- *dbus.Signal
	removed int
}

func (c *SignalConn) Signal(ch chan<- *dbus.Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chans = append(c.chans, ch)
}

func (c *SignalConn) RemoveSignal(ch chan<- *dbus.Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, registered := range c.chans {
		if registered == ch {
			c.chans = append(c.chans[:i], c.chans[i+1:]...)
			c.removed++
			return
		}
	}
}

// Emit delivers sig to every registered channel.
func (c *SignalConn) Emit(sig *dbus.Signal) {
	c.mu.Lock()
	chans := make([]chan<- *dbus.Signal, len(c.chans))
	copy(chans, c.chans)
	c.mu.Unlock()

	for _, ch := range chans {
		ch <- sig
	}
}

// Registered returns how many channels are currently registered.
func (c *SignalConn) Registered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chans)
}

// Removed returns how many channels were unregistered.
func (c *SignalConn) Removed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removed
}
