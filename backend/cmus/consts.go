package cmus

const (
	// remote accessors, all parameterless
	METHOD_STATUS    = "status"
	METHOD_HAS_TRACK = "has_track"
	METHOD_ARTIST    = "artist"
	METHOD_ALBUM     = "album"
	METHOD_TITLE     = "title"
	METHOD_POSITION  = "pos"
	METHOD_DURATION  = "duration"
	METHOD_SHUFFLE   = "shuffle"
	METHOD_REPEAT    = "repeat"
	METHOD_VOLUME    = "volume"

	SIGNAL_TRACK_CHANGE  = "track_change"
	SIGNAL_VOLUME_CHANGE = "vol_change"

	sourceName = "cmus"
)
