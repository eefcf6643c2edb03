package mpris

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	idbus "github.com/b0bbywan/go-odio-relay/backend/internal/dbus"
	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/cache"
	"github.com/b0bbywan/go-odio-relay/config"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// validateBusName checks that busName is an MPRIS well-known name
func validateBusName(busName string) error {
	if busName == "" {
		return &InvalidBusNameError{BusName: busName, Reason: "empty bus name"}
	}
	if !strings.HasPrefix(busName, MPRIS_PREFIX+".") {
		return &InvalidBusNameError{BusName: busName, Reason: "must start with " + MPRIS_PREFIX + "."}
	}
	if strings.Contains(busName, "..") || strings.Contains(busName, "/") || strings.ContainsAny(busName, "\x00\r\n") {
		return &InvalidBusNameError{BusName: busName, Reason: "contains illegal characters"}
	}
	return nil
}

// New binds the backend to the configured player, or to the first MPRIS
// player found on the bus when none is configured.
func New(ctx context.Context, conn *dbus.Conn, cfg *config.MPRISConfig) (*MPRISBackend, error) {
	if conn == nil {
		return nil, fmt.Errorf("mpris: nil connection")
	}
	bus := conn.BusObject()

	busName := ""
	if cfg != nil {
		busName = cfg.BusName
	}
	if busName == "" {
		found, err := findPlayer(ctx, bus)
		if err != nil {
			return nil, err
		}
		busName = found
	} else if err := validateBusName(busName); err != nil {
		return nil, err
	}

	logger.Info("[mpris] following %s", busName)
	return newBackend(conn, bus, idbus.GetObject(conn, busName, MPRIS_PATH), busName), nil
}

func newBackend(conn idbus.SignalConn, bus, obj idbus.Caller, busName string) *MPRISBackend {
	return &MPRISBackend{
		conn:    conn,
		bus:     bus,
		obj:     obj,
		busName: busName,
		owners:  cache.New[string](0), // TTL=0, refreshed by NameOwnerChanged
	}
}

// findPlayer returns the first MPRIS name listed on the bus.
func findPlayer(ctx context.Context, bus idbus.Caller) (string, error) {
	start := time.Now()
	names, err := idbus.ListNames(ctx, bus)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if strings.HasPrefix(name, MPRIS_PREFIX+".") {
			logger.Debug("[mpris] found %s among %d names in %s", name, len(names), time.Since(start))
			return name, nil
		}
	}
	return "", &PlayerNotFoundError{}
}

func (m *MPRISBackend) Name() string { return sourceName }

// BusName returns the well-known name of the followed player.
func (m *MPRISBackend) BusName() string { return m.busName }

func (m *MPRISBackend) wrap(err error) error {
	if idbus.IsServiceUnknown(err) {
		return &PlayerNotFoundError{BusName: m.busName}
	}
	return err
}

// Status reads every player property in one GetAll call.
func (m *MPRISBackend) Status(ctx context.Context) (*player.Status, error) {
	props, err := idbus.GetAllProperties(ctx, m.obj, MPRIS_PLAYER_IFACE)
	if err != nil {
		return nil, m.wrap(err)
	}

	status := player.Status{
		State:   player.ParseState(idbus.MapString(props, PROP_PLAYBACK_STATUS)),
		Shuffle: idbus.MapBool(props, PROP_SHUFFLE),
	}
	if loop := LoopStatus(idbus.MapString(props, PROP_LOOP_STATUS)); loop != "" && loop != LoopNone {
		status.Repeat = true
	}
	if v, ok := idbus.MapFloat64(props, PROP_VOLUME); ok {
		status.Volume = volumePercent(v)
	}

	if raw, ok := props[PROP_METADATA]; ok {
		if meta, ok := idbus.ExtractVariantMap(raw); ok && hasTrack(meta) {
			status.HasTrack = true
			status.Track = trackFromMetadata(meta)
			status.Position = time.Duration(idbus.MapInt64(props, PROP_POSITION)) * time.Microsecond
		}
	}
	return &status, nil
}

// NowPlaying reads the Metadata property once.
func (m *MPRISBackend) NowPlaying(ctx context.Context) (player.Track, error) {
	v, err := idbus.GetProperty(ctx, m.obj, MPRIS_PLAYER_IFACE, PROP_METADATA)
	if err != nil {
		return player.Track{}, m.wrap(err)
	}
	meta, ok := idbus.ExtractVariantMap(v)
	if !ok {
		return player.Track{}, &idbus.ReplyError{Method: idbus.PROP_GET, Reason: "Metadata is not a map"}
	}
	return trackFromMetadata(meta), nil
}

func (m *MPRISBackend) Volume(ctx context.Context) (int, error) {
	v, err := idbus.GetProperty(ctx, m.obj, MPRIS_PLAYER_IFACE, PROP_VOLUME)
	if err != nil {
		return 0, m.wrap(err)
	}
	f, ok := idbus.ExtractFloat64(v)
	if !ok {
		return 0, &idbus.ReplyError{Method: idbus.PROP_GET, Reason: "Volume is not a double"}
	}
	return volumePercent(f), nil
}

// owner resolves the unique name currently owning the player's bus name.
func (m *MPRISBackend) owner(ctx context.Context) (string, error) {
	return m.owners.GetOrLoad(m.busName, func() (string, error) {
		return idbus.GetNameOwner(ctx, m.bus, m.busName)
	})
}

// Close drops the owner cache. The bus connection belongs to the caller.
func (m *MPRISBackend) Close() {
	m.owners.Clear()
}
