// Package dbustest provides an in-memory stand-in for D-Bus objects.
package dbustest

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Call is a recorded method invocation.
type Call struct {
	Method string
	Args   []interface{}
}

// Caller answers method calls from canned replies and records them.
type Caller struct {
	mu      sync.Mutex
	replies map[string][]interface{}
	errs    map[string]error
	calls   []Call
}

func NewCaller() *Caller {
	return &Caller{
		replies: make(map[string][]interface{}),
		errs:    make(map[string]error),
	}
}

// Reply sets the body returned for method.
func (c *Caller) Reply(method string, body ...interface{}) *Caller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[method] = body
	return c
}

// Fail makes method return err.
func (c *Caller) Fail(method string, err error) *Caller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[method] = err
	return c
}

// Property sets the reply for a Properties.Get of prop, regardless of interface.
func (c *Caller) Property(prop string, value interface{}) *Caller {
	return c.Reply("org.freedesktop.DBus.Properties.Get/"+prop, dbus.MakeVariant(value))
}

func (c *Caller) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, Call{Method: method, Args: args})
	call := &dbus.Call{Method: method, Args: args}

	key := method
	if method == "org.freedesktop.DBus.Properties.Get" && len(args) == 2 {
		if prop, ok := args[1].(string); ok {
			key = method + "/" + prop
		}
	}

	if err := ctx.Err(); err != nil {
		call.Err = err
		return call
	}
	if err, ok := c.errs[key]; ok {
		call.Err = err
		return call
	}
	if err, ok := c.errs[method]; ok {
		call.Err = err
		return call
	}
	if body, ok := c.replies[key]; ok {
		call.Body = body
		return call
	}
	call.Body = c.replies[method]
	return call
}

// Calls returns the recorded calls in order.
func (c *Caller) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// Methods returns the recorded method names in order.
func (c *Caller) Methods() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.calls))
	for _, call := range c.calls {
		out = append(out, call.Method)
	}
	return out
}

// Count returns how many times method was called.
func (c *Caller) Count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.Method == method {
			n++
		}
	}
	return n
}
