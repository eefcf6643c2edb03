package dbus

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// TimeoutError is returned when a D-Bus call exceeds its deadline.
type TimeoutError struct {
	Method string
}

func (e *TimeoutError) Error() string {
	if e.Method == "" {
		return "dbus: call timed out"
	}
	return "dbus: call " + e.Method + " timed out"
}

// SignalError is returned when a D-Bus signal body is malformed.
type SignalError struct {
	Reason string
}

func (e *SignalError) Error() string { return fmt.Sprintf("dbus: signal error: %s", e.Reason) }

// ReplyError is returned when a reply body does not hold the expected value.
type ReplyError struct {
	Method string
	Reason string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("dbus: unexpected reply from %s: %s", e.Method, e.Reason)
}

const (
	ERROR_SERVICE_UNKNOWN   = "org.freedesktop.DBus.Error.ServiceUnknown"
	ERROR_NAME_HAS_NO_OWNER = "org.freedesktop.DBus.Error.NameHasNoOwner"
)

// ErrorName returns the D-Bus error name carried by err, or "".
func ErrorName(err error) string {
	var e dbus.Error
	if errors.As(err, &e) {
		return e.Name
	}
	var pe *dbus.Error
	if errors.As(err, &pe) && pe != nil {
		return pe.Name
	}
	return ""
}

// IsServiceUnknown reports whether err means the destination is not on the bus.
func IsServiceUnknown(err error) bool {
	switch ErrorName(err) {
	case ERROR_SERVICE_UNKNOWN, ERROR_NAME_HAS_NO_OWNER:
		return true
	}
	return false
}
