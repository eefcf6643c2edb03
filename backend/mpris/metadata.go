package mpris

import (
	"math"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	idbus "github.com/b0bbywan/go-odio-relay/backend/internal/dbus"
	"github.com/b0bbywan/go-odio-relay/backend/player"
)

// trackFromMetadata extracts the fields the relay cares about.
// Multiple artists are joined with ", ".
func trackFromMetadata(meta map[string]dbus.Variant) player.Track {
	track := player.Track{
		Title: idbus.MapString(meta, META_TITLE),
		Album: idbus.MapString(meta, META_ALBUM),
	}
	if v, ok := meta[META_ARTIST]; ok {
		if artists, ok := idbus.ExtractStrings(v); ok {
			track.Artist = strings.Join(artists, ", ")
		}
	}
	if length := idbus.MapInt64(meta, META_LENGTH); length > 0 {
		track.Duration = time.Duration(length) * time.Microsecond
	}
	return track
}

// trackID returns the object path identifying the track, if any.
func trackID(meta map[string]dbus.Variant) string {
	v, ok := meta[META_TRACK_ID]
	if !ok {
		return ""
	}
	switch id := v.Value().(type) {
	case dbus.ObjectPath:
		return string(id)
	case string:
		return id
	}
	return ""
}

// hasTrack reports whether the metadata describes a selected track.
func hasTrack(meta map[string]dbus.Variant) bool {
	if id := trackID(meta); id != "" {
		return id != MPRIS_NO_TRACK
	}
	return !trackFromMetadata(meta).IsZero()
}

// trackKey identifies a track for de-duplication of Metadata changes.
func trackKey(meta map[string]dbus.Variant) string {
	t := trackFromMetadata(meta)
	return trackID(meta) + "\x00" + t.Artist + "\x00" + t.Title + "\x00" + t.Album
}

// volumePercent converts the MPRIS 0.0-1.0 volume scale to a percentage.
func volumePercent(v float64) int {
	return player.ClampVolume(int(math.Round(v * 100)))
}
