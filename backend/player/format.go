package player

import (
	"fmt"
	"strings"
	"time"
)

// AwayMessage is the text pushed to messenger status messages.
func AwayMessage(artist, title string) string {
	return fmt.Sprintf("♪ %s - %s", artist, title)
}

// AwayMessage formats the track as a messenger status message.
func (t Track) AwayMessage() string {
	return AwayMessage(t.Artist, t.Title)
}

// String returns "artist - title", dropping whichever side is empty.
func (t Track) String() string {
	switch {
	case t.Artist == "":
		return t.Title
	case t.Title == "":
		return t.Artist
	default:
		return t.Artist + " - " + t.Title
	}
}

// IsZero reports whether no track information is present.
func (t Track) IsZero() bool {
	return t.Artist == "" && t.Title == "" && t.Album == ""
}

// Seconds renders a duration as whole seconds, truncating.
func Seconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%d", int64(d/time.Second))
}

// ParseState maps the spellings used by the supported players to a State.
func ParseState(s string) State {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "playing", "play":
		return StatePlaying
	case "paused", "pause":
		return StatePaused
	default:
		return StateStopped
	}
}

// ClampVolume bounds a percentage to 0..100.
func ClampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
