package mpris

import (
	"context"

	"github.com/godbus/dbus/v5"

	idbus "github.com/b0bbywan/go-odio-relay/backend/internal/dbus"
	"github.com/b0bbywan/go-odio-relay/backend/player"
	"github.com/b0bbywan/go-odio-relay/events"
	"github.com/b0bbywan/go-odio-relay/logger"
)

// Subscribe turns PropertiesChanged signals of the followed player into
// track-change and volume-change events.
func (m *MPRISBackend) Subscribe(ctx context.Context, types []string, handler events.Handler) (*events.Subscription, error) {
	for _, t := range types {
		if t != events.TypeTrackChange && t != events.TypeVolumeChange {
			return nil, &player.UnsupportedError{Source: sourceName, Signal: t}
		}
	}

	// Resolve the owner up front so a missing player fails here.
	if _, err := m.owner(ctx); err != nil {
		return nil, m.wrap(err)
	}

	rules := []string{
		idbus.SignalRule(idbus.DBUS_PROP_IFACE, "PropertiesChanged", MPRIS_PATH, "arg0", MPRIS_PLAYER_IFACE),
		idbus.SignalRule(idbus.DBUS_INTERFACE, "NameOwnerChanged", "", "arg0", m.busName),
	}

	filter := events.FilterTypes(types)
	sub, err := idbus.Listen(ctx, m.conn, m.bus, rules, func(sig *dbus.Signal) {
		for _, e := range m.handleSignal(ctx, sig) {
			if filter != nil && !filter(e) {
				continue
			}
			handler(e)
		}
	})
	if err != nil {
		return nil, err
	}
	logger.Info("[mpris] listening to %s", m.busName)
	return sub, nil
}

// handleSignal processes a D-Bus signal and returns the events it maps to.
func (m *MPRISBackend) handleSignal(ctx context.Context, sig *dbus.Signal) []events.Event {
	if sig == nil {
		return nil
	}
	switch sig.Name {
	case idbus.PROP_CHANGED_SIGNAL:
		return m.handlePropertiesChanged(ctx, sig)
	case idbus.NAME_OWNER_CHANGED_SIGNAL:
		m.handleNameOwnerChanged(sig)
	default:
		logger.Debug("[mpris] unhandled signal: %s", sig.Name)
	}
	return nil
}

// handlePropertiesChanged processes MPRIS property changes
func (m *MPRISBackend) handlePropertiesChanged(ctx context.Context, sig *dbus.Signal) []events.Event {
	if sig.Path != "" && sig.Path != MPRIS_PATH {
		return nil
	}
	changed, iface, err := idbus.FilterSignal(sig)
	if err != nil {
		logger.Debug("[mpris] %v", err)
		return nil
	}
	if iface != MPRIS_PLAYER_IFACE {
		return nil
	}

	owner, err := m.owner(ctx)
	if err != nil {
		logger.Warn("[mpris] cannot resolve owner of %s: %v", m.busName, err)
		return nil
	}
	if sig.Sender != owner {
		logger.Debug("[mpris] ignoring change from %s (following %s)", sig.Sender, owner)
		return nil
	}

	logger.Debug("[mpris] properties changed: %v", idbus.Keys(changed))

	var out []events.Event
	if raw, ok := changed[PROP_METADATA]; ok {
		if meta, ok := idbus.ExtractVariantMap(raw); ok && m.newTrack(meta) {
			out = append(out, events.Event{Type: events.TypeTrackChange, Source: sourceName})
		}
	}
	if _, ok := changed[PROP_VOLUME]; ok {
		out = append(out, events.Event{Type: events.TypeVolumeChange, Source: sourceName})
	}
	return out
}

// newTrack records meta and reports whether it differs from the previous
// Metadata change. Players often resend identical metadata. Metadata
// without a selected track is never reported.
func (m *MPRISBackend) newTrack(meta map[string]dbus.Variant) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !hasTrack(meta) {
		m.lastTrack = ""
		return false
	}
	key := trackKey(meta)
	if key == m.lastTrack {
		return false
	}
	m.lastTrack = key
	return true
}

// handleNameOwnerChanged keeps the owner cache in sync when the player
// restarts or quits.
func (m *MPRISBackend) handleNameOwnerChanged(sig *dbus.Signal) {
	name, oldOwner, newOwner, err := idbus.NameOwnerChange(sig)
	if err != nil {
		logger.Debug("[mpris] %v", err)
		return
	}
	if name != m.busName {
		return
	}

	m.mu.Lock()
	m.lastTrack = ""
	m.mu.Unlock()

	if newOwner == "" {
		logger.Info("[mpris] %s left the bus (was %s)", name, oldOwner)
		m.owners.Delete(name)
		return
	}
	logger.Info("[mpris] %s is now owned by %s", name, newOwner)
	m.owners.Set(name, newOwner)
}
