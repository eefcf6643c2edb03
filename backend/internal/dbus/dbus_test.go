package dbus

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/b0bbywan/go-odio-relay/backend/internal/dbus/dbustest"
)

func TestCallString(t *testing.T) {
	obj := dbustest.NewCaller().Reply("svc.artist", "Daft Punk")

	got, err := CallString(context.Background(), obj, "svc.artist")
	if err != nil {
		t.Fatalf("CallString() error: %v", err)
	}
	if got != "Daft Punk" {
		t.Errorf("CallString() = %q, want %q", got, "Daft Punk")
	}
}

func TestCallString_WrongType(t *testing.T) {
	obj := dbustest.NewCaller().Reply("svc.artist", int32(3))

	_, err := CallString(context.Background(), obj, "svc.artist")
	var replyErr *ReplyError
	if !errors.As(err, &replyErr) {
		t.Fatalf("expected ReplyError, got %T: %v", err, err)
	}
	if replyErr.Method != "svc.artist" {
		t.Errorf("ReplyError.Method = %q", replyErr.Method)
	}
}

func TestCallValue_EmptyBody(t *testing.T) {
	obj := dbustest.NewCaller()

	_, err := CallValue(context.Background(), obj, "svc.title")
	var replyErr *ReplyError
	if !errors.As(err, &replyErr) {
		t.Fatalf("expected ReplyError, got %T: %v", err, err)
	}
}

func TestCallValue_UnwrapsVariant(t *testing.T) {
	obj := dbustest.NewCaller().Reply("svc.volume", dbus.MakeVariant(int32(70)))

	got, err := CallInt64(context.Background(), obj, "svc.volume")
	if err != nil {
		t.Fatalf("CallInt64() error: %v", err)
	}
	if got != 70 {
		t.Errorf("CallInt64() = %d, want 70", got)
	}
}

func TestCallBool(t *testing.T) {
	tests := []struct {
		name  string
		reply interface{}
		want  bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"int non-zero", int32(1), true},
		{"int zero", uint32(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := dbustest.NewCaller().Reply("svc.shuffle", tt.reply)
			got, err := CallBool(context.Background(), obj, "svc.shuffle")
			if err != nil {
				t.Fatalf("CallBool() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CallBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCall_PropagatesError(t *testing.T) {
	wantErr := errors.New("org.freedesktop.DBus.Error.ServiceUnknown")
	obj := dbustest.NewCaller().Fail("svc.status", wantErr)

	err := CallMethod(context.Background(), obj, "svc.status")
	if !errors.Is(err, wantErr) {
		t.Errorf("CallMethod() error = %v, want %v", err, wantErr)
	}
}

func TestCall_Timeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	obj := dbustest.NewCaller().Reply("svc.status", "playing")
	err := CallMethod(ctx, obj, "svc.status")

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
	if timeoutErr.Method != "svc.status" {
		t.Errorf("TimeoutError.Method = %q", timeoutErr.Method)
	}
}

func TestGetProperty(t *testing.T) {
	obj := dbustest.NewCaller().Property("PlaybackStatus", "Playing")

	v, err := GetProperty(context.Background(), obj, "org.mpris.MediaPlayer2.Player", "PlaybackStatus")
	if err != nil {
		t.Fatalf("GetProperty() error: %v", err)
	}
	if s, _ := ExtractString(v); s != "Playing" {
		t.Errorf("GetProperty() = %v, want Playing", v)
	}
}

func TestSignalRule(t *testing.T) {
	tests := []struct {
		name   string
		iface  string
		member string
		path   string
		extra  []string
		want   string
	}{
		{
			name:   "interface and member",
			iface:  "net.sourceforge.cmus",
			member: "track_change",
			want:   "type='signal',interface='net.sourceforge.cmus',member='track_change'",
		},
		{
			name:   "with path and arg0namespace",
			iface:  DBUS_PROP_IFACE,
			member: "PropertiesChanged",
			path:   "/org/mpris/MediaPlayer2",
			extra:  []string{"arg0namespace", "org.mpris.MediaPlayer2"},
			want: "type='signal',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged'," +
				"path='/org/mpris/MediaPlayer2',arg0namespace='org.mpris.MediaPlayer2'",
		},
		{
			name:  "odd extra is ignored",
			iface: "a.b",
			extra: []string{"sender"},
			want:  "type='signal',interface='a.b'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignalRule(tt.iface, tt.member, tt.path, tt.extra...); got != tt.want {
				t.Errorf("SignalRule() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestAddRemoveMatchRule(t *testing.T) {
	bus := dbustest.NewCaller()
	rule := SignalRule("net.sourceforge.cmus", "track_change", "")

	if err := AddMatchRule(context.Background(), bus, rule); err != nil {
		t.Fatalf("AddMatchRule() error: %v", err)
	}
	if err := RemoveMatchRule(context.Background(), bus, rule); err != nil {
		t.Fatalf("RemoveMatchRule() error: %v", err)
	}

	calls := bus.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Method != BUS_ADD_MATCH || calls[1].Method != BUS_REMOVE_MATCH {
		t.Errorf("unexpected methods: %v", bus.Methods())
	}
	if calls[0].Args[0] != rule {
		t.Errorf("AddMatch rule = %v, want %q", calls[0].Args[0], rule)
	}
}

func TestSplitSignalName(t *testing.T) {
	iface, member := SplitSignalName("net.sourceforge.cmus.track_change")
	if iface != "net.sourceforge.cmus" || member != "track_change" {
		t.Errorf("SplitSignalName() = %q, %q", iface, member)
	}
	iface, member = SplitSignalName("bare")
	if iface != "" || member != "bare" {
		t.Errorf("SplitSignalName(bare) = %q, %q", iface, member)
	}
}

func TestFilterSignal(t *testing.T) {
	t.Run("nil signal", func(t *testing.T) {
		_, _, err := FilterSignal(nil)
		var sigErr *SignalError
		if !errors.As(err, &sigErr) {
			t.Fatalf("expected SignalError, got %v", err)
		}
	})

	t.Run("short body", func(t *testing.T) {
		_, _, err := FilterSignal(&dbus.Signal{Body: []interface{}{"iface"}})
		if err == nil {
			t.Fatal("expected error for short body")
		}
	})

	t.Run("bad map", func(t *testing.T) {
		_, _, err := FilterSignal(&dbus.Signal{Body: []interface{}{"iface", "not a map"}})
		if err == nil {
			t.Fatal("expected error for non-map body")
		}
	})

	t.Run("valid", func(t *testing.T) {
		changed := map[string]dbus.Variant{"Volume": dbus.MakeVariant(0.5)}
		got, iface, err := FilterSignal(&dbus.Signal{Body: []interface{}{"org.mpris.MediaPlayer2.Player", changed, []string{}}})
		if err != nil {
			t.Fatalf("FilterSignal() error: %v", err)
		}
		if iface != "org.mpris.MediaPlayer2.Player" {
			t.Errorf("iface = %q", iface)
		}
		if v, ok := MapFloat64(got, "Volume"); !ok || v != 0.5 {
			t.Errorf("Volume = %v, %v", v, ok)
		}
	})
}

func TestNameOwnerChange(t *testing.T) {
	name, oldOwner, newOwner, err := NameOwnerChange(&dbus.Signal{
		Body: []interface{}{"org.mpris.MediaPlayer2.cmus", "", ":1.99"},
	})
	if err != nil {
		t.Fatalf("NameOwnerChange() error: %v", err)
	}
	if name != "org.mpris.MediaPlayer2.cmus" || oldOwner != "" || newOwner != ":1.99" {
		t.Errorf("NameOwnerChange() = %q, %q, %q", name, oldOwner, newOwner)
	}

	if _, _, _, err := NameOwnerChange(&dbus.Signal{Body: []interface{}{"x"}}); err == nil {
		t.Error("expected error for short body")
	}
}

func TestToInt64(t *testing.T) {
	values := []interface{}{int64(5), int32(5), int16(5), int(5), uint64(5), uint32(5), uint16(5), uint8(5)}
	for _, v := range values {
		if n, ok := ToInt64(v); !ok || n != 5 {
			t.Errorf("ToInt64(%T) = %d, %v", v, n, ok)
		}
	}
	if _, ok := ToInt64("5"); ok {
		t.Error("ToInt64(string) should fail")
	}
}

func TestExtractStrings(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  []string
		ok    bool
	}{
		{"slice", []string{"a", "b"}, []string{"a", "b"}, true},
		{"single", "a", []string{"a"}, true},
		{"interfaces", []interface{}{"a", "b"}, []string{"a", "b"}, true},
		{"mixed interfaces", []interface{}{"a", 1}, nil, false},
		{"number", int32(1), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractStrings(dbus.MakeVariant(tt.value))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMapHelpers(t *testing.T) {
	props := map[string]dbus.Variant{
		"xesam:title":  dbus.MakeVariant("One More Time"),
		"Shuffle":      dbus.MakeVariant(true),
		"mpris:length": dbus.MakeVariant(int64(320000000)),
	}
	if MapString(props, "xesam:title") != "One More Time" {
		t.Error("MapString failed")
	}
	if MapString(props, "missing") != "" {
		t.Error("MapString on missing key should be empty")
	}
	if !MapBool(props, "Shuffle") {
		t.Error("MapBool failed")
	}
	if MapInt64(props, "mpris:length") != 320000000 {
		t.Error("MapInt64 failed")
	}
	if len(Keys(props)) != 3 {
		t.Errorf("Keys() = %v", Keys(props))
	}
}

func TestIsServiceUnknown(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"value error", dbus.Error{Name: ERROR_SERVICE_UNKNOWN}, true},
		{"pointer error", dbus.NewError(ERROR_NAME_HAS_NO_OWNER, nil), true},
		{"wrapped", fmt.Errorf("status: %w", dbus.Error{Name: ERROR_SERVICE_UNKNOWN}), true},
		{"other dbus error", dbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsServiceUnknown(tt.err); got != tt.want {
				t.Errorf("IsServiceUnknown() = %v, want %v", got, tt.want)
			}
		})
	}
}
