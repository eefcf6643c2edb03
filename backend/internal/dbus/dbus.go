package dbus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

// DefaultTimeout is the timeout used for all D-Bus calls.
var DefaultTimeout = 5 * time.Second

// Caller is the part of dbus.BusObject the backends rely on.
type Caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Call invokes method on obj, bounded by DefaultTimeout.
func Call(ctx context.Context, obj Caller, method string, args ...interface{}) (*dbus.Call, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	call := obj.CallWithContext(ctx, method, 0, args...)
	if call.Err != nil {
		if errors.Is(call.Err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Method: method}
		}
		return nil, call.Err
	}
	return call, nil
}

// CallMethod calls a method and discards the reply.
func CallMethod(ctx context.Context, obj Caller, method string, args ...interface{}) error {
	_, err := Call(ctx, obj, method, args...)
	return err
}

// CallValue calls a method and returns the first value of the reply body,
// unwrapping a variant if the method returns one.
func CallValue(ctx context.Context, obj Caller, method string, args ...interface{}) (interface{}, error) {
	call, err := Call(ctx, obj, method, args...)
	if err != nil {
		return nil, err
	}
	if len(call.Body) == 0 {
		return nil, &ReplyError{Method: method, Reason: "empty body"}
	}
	v := call.Body[0]
	if variant, ok := v.(dbus.Variant); ok {
		v = variant.Value()
	}
	return v, nil
}

// CallString calls a method returning a string.
func CallString(ctx context.Context, obj Caller, method string, args ...interface{}) (string, error) {
	v, err := CallValue(ctx, obj, method, args...)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &ReplyError{Method: method, Reason: fmt.Sprintf("want string, got %T", v)}
	}
	return s, nil
}

// CallBool calls a method returning a boolean. Integer replies are
// accepted too, non-zero meaning true.
func CallBool(ctx context.Context, obj Caller, method string, args ...interface{}) (bool, error) {
	v, err := CallValue(ctx, obj, method, args...)
	if err != nil {
		return false, err
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if n, ok := ToInt64(v); ok {
		return n != 0, nil
	}
	return false, &ReplyError{Method: method, Reason: fmt.Sprintf("want bool, got %T", v)}
}

// CallInt64 calls a method returning any integer type.
func CallInt64(ctx context.Context, obj Caller, method string, args ...interface{}) (int64, error) {
	v, err := CallValue(ctx, obj, method, args...)
	if err != nil {
		return 0, err
	}
	n, ok := ToInt64(v)
	if !ok {
		return 0, &ReplyError{Method: method, Reason: fmt.Sprintf("want integer, got %T", v)}
	}
	return n, nil
}

// CallInt32 calls a method returning an int32 handle, as libpurple does.
func CallInt32(ctx context.Context, obj Caller, method string, args ...interface{}) (int32, error) {
	n, err := CallInt64(ctx, obj, method, args...)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

// GetProperty retrieves a single property from a D-Bus object.
func GetProperty(ctx context.Context, obj Caller, iface, prop string) (dbus.Variant, error) {
	call, err := Call(ctx, obj, PROP_GET, iface, prop)
	if err != nil {
		return dbus.Variant{}, err
	}
	var v dbus.Variant
	if err := call.Store(&v); err != nil {
		return dbus.Variant{}, err
	}
	return v, nil
}

// GetAllProperties retrieves all properties of a D-Bus interface in a single call.
func GetAllProperties(ctx context.Context, obj Caller, iface string) (map[string]dbus.Variant, error) {
	call, err := Call(ctx, obj, PROP_GET_ALL, iface)
	if err != nil {
		return nil, err
	}
	var props map[string]dbus.Variant
	return props, call.Store(&props)
}

// GetObject returns a D-Bus object for the given service and object path.
func GetObject(conn *dbus.Conn, service, path string) dbus.BusObject {
	return conn.Object(service, dbus.ObjectPath(path))
}

// ListNames returns every name currently on the bus.
func ListNames(ctx context.Context, bus Caller) ([]string, error) {
	call, err := Call(ctx, bus, BUS_LIST_NAMES)
	if err != nil {
		return nil, err
	}
	var names []string
	return names, call.Store(&names)
}

// GetNameOwner resolves a well-known name to its unique connection name.
func GetNameOwner(ctx context.Context, bus Caller, name string) (string, error) {
	return CallString(ctx, bus, BUS_GET_NAME_OWNER, name)
}

// SignalRule builds a match rule for a signal. Empty fields are omitted;
// extra holds additional key=value pairs such as arg0namespace.
func SignalRule(iface, member, path string, extra ...string) string {
	parts := []string{"type='signal'"}
	if iface != "" {
		parts = append(parts, "interface='"+iface+"'")
	}
	if member != "" {
		parts = append(parts, "member='"+member+"'")
	}
	if path != "" {
		parts = append(parts, "path='"+path+"'")
	}
	for i := 0; i+1 < len(extra); i += 2 {
		parts = append(parts, extra[i]+"='"+extra[i+1]+"'")
	}
	return strings.Join(parts, ",")
}

// AddMatchRule subscribes to a D-Bus signal via a match rule.
func AddMatchRule(ctx context.Context, bus Caller, rule string) error {
	return CallMethod(ctx, bus, BUS_ADD_MATCH, rule)
}

// RemoveMatchRule unsubscribes from a D-Bus signal match rule.
func RemoveMatchRule(ctx context.Context, bus Caller, rule string) error {
	return CallMethod(ctx, bus, BUS_REMOVE_MATCH, rule)
}

// SplitSignalName splits "iface.Member" into its interface and member.
func SplitSignalName(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}

// FilterSignal parses a PropertiesChanged D-Bus signal body.
// Returns changed properties map and interface name, or an error if malformed.
func FilterSignal(sig *dbus.Signal) (map[string]dbus.Variant, string, error) {
	if sig == nil {
		return nil, "", &SignalError{Reason: "channel closed"}
	}
	if len(sig.Body) < 2 {
		return nil, "", &SignalError{Reason: "body too short"}
	}
	iface, ok := sig.Body[0].(string)
	if !ok {
		return nil, "", &SignalError{Reason: "failed to parse interface name"}
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return nil, "", &SignalError{Reason: "body[1] is not map[string]Variant"}
	}
	return changed, iface, nil
}

// NameOwnerChange parses a NameOwnerChanged signal body.
func NameOwnerChange(sig *dbus.Signal) (name, oldOwner, newOwner string, err error) {
	if sig == nil || len(sig.Body) < 3 {
		return "", "", "", &SignalError{Reason: "NameOwnerChanged body too short"}
	}
	name, ok := sig.Body[0].(string)
	if !ok {
		return "", "", "", &SignalError{Reason: "NameOwnerChanged name is not a string"}
	}
	oldOwner, _ = sig.Body[1].(string)
	newOwner, _ = sig.Body[2].(string)
	return name, oldOwner, newOwner, nil
}

// --- Variant extraction helpers ---

// ToInt64 converts any D-Bus integer type to int64.
func ToInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	default:
		return 0, false
	}
}

// ExtractString extracts a string from a dbus.Variant.
func ExtractString(v dbus.Variant) (string, bool) {
	val, ok := v.Value().(string)
	return val, ok
}

// ExtractBool extracts a bool from a dbus.Variant.
func ExtractBool(v dbus.Variant) (bool, bool) {
	val, ok := v.Value().(bool)
	return val, ok
}

// ExtractInt64 extracts any integer from a dbus.Variant as int64.
func ExtractInt64(v dbus.Variant) (int64, bool) {
	return ToInt64(v.Value())
}

// ExtractFloat64 extracts a float64 from a dbus.Variant.
func ExtractFloat64(v dbus.Variant) (float64, bool) {
	val, ok := v.Value().(float64)
	return val, ok
}

// ExtractStrings extracts a string list, accepting a single string too.
func ExtractStrings(v dbus.Variant) ([]string, bool) {
	switch val := v.Value().(type) {
	case []string:
		return val, true
	case string:
		return []string{val}, true
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// ExtractVariantMap extracts a map[string]dbus.Variant from a dbus.Variant.
func ExtractVariantMap(v dbus.Variant) (map[string]dbus.Variant, bool) {
	val, ok := v.Value().(map[string]dbus.Variant)
	return val, ok
}

// --- Map helpers (props map[string]dbus.Variant) ---

// MapString extracts a string from a props map by key.
func MapString(props map[string]dbus.Variant, key string) string {
	if v, ok := props[key]; ok {
		s, _ := ExtractString(v)
		return s
	}
	return ""
}

// MapBool extracts a bool from a props map by key.
func MapBool(props map[string]dbus.Variant, key string) bool {
	if v, ok := props[key]; ok {
		b, _ := ExtractBool(v)
		return b
	}
	return false
}

// MapInt64 extracts an integer from a props map by key.
func MapInt64(props map[string]dbus.Variant, key string) int64 {
	if v, ok := props[key]; ok {
		n, _ := ExtractInt64(v)
		return n
	}
	return 0
}

// MapFloat64 extracts a float64 from a props map by key.
func MapFloat64(props map[string]dbus.Variant, key string) (float64, bool) {
	if v, ok := props[key]; ok {
		return ExtractFloat64(v)
	}
	return 0, false
}

// Keys returns the keys of a props map (useful for debug logging).
func Keys(props map[string]dbus.Variant) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	return keys
}
