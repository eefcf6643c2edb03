package mpris

const (
	// MPRIS D-Bus constants
	MPRIS_PREFIX       = "org.mpris.MediaPlayer2"
	MPRIS_PATH         = "/org/mpris/MediaPlayer2"
	MPRIS_PLAYER_IFACE = "org.mpris.MediaPlayer2.Player"

	// Player properties
	PROP_PLAYBACK_STATUS = "PlaybackStatus"
	PROP_METADATA        = "Metadata"
	PROP_POSITION        = "Position"
	PROP_SHUFFLE         = "Shuffle"
	PROP_LOOP_STATUS     = "LoopStatus"
	PROP_VOLUME          = "Volume"

	// Metadata keys
	META_TRACK_ID = "mpris:trackid"
	META_LENGTH   = "mpris:length"
	META_ARTIST   = "xesam:artist"
	META_TITLE    = "xesam:title"
	META_ALBUM    = "xesam:album"

	sourceName = "mpris"
)

// MPRIS_NO_TRACK is the well-known track ID meaning "no current track".
const MPRIS_NO_TRACK = "/org/mpris/MediaPlayer2/TrackList/NoTrack"

const (
	StatusPlaying PlaybackStatus = "Playing"
	StatusPaused  PlaybackStatus = "Paused"
	StatusStopped PlaybackStatus = "Stopped"
)

const (
	LoopNone     LoopStatus = "None"
	LoopTrack    LoopStatus = "Track"
	LoopPlaylist LoopStatus = "Playlist"
)
