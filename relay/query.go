package relay

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/b0bbywan/go-odio-relay/backend/player"
)

const NoTrackSelected = "no track is selected"

// StatusReader returns a fresh player snapshot.
type StatusReader interface {
	Status(ctx context.Context) (*player.Status, error)
}

type QueryOptions struct {
	// Album adds an album line after the title
	Album bool
}

// Query prints the player status as "key value" lines.
func Query(ctx context.Context, src StatusReader, w io.Writer, opts QueryOptions) error {
	status, err := src.Status(ctx)
	if err != nil {
		return err
	}
	return WriteStatus(w, status, opts)
}

// statusWriter keeps the first write error so that callers can chain lines.
type statusWriter struct {
	w   io.Writer
	err error
}

func (sw *statusWriter) line(format string, a ...any) {
	if sw.err != nil {
		return
	}
	_, sw.err = fmt.Fprintf(sw.w, format+"\n", a...)
}

// WriteStatus renders status in the order status, track fields (or
// NoTrackSelected), shuffle, repeat, volume.
func WriteStatus(w io.Writer, status *player.Status, opts QueryOptions) error {
	sw := &statusWriter{w: w}
	sw.line("status %s", status.State)

	if status.HasTrack {
		sw.line("artist %s", status.Track.Artist)
		sw.line("title %s", status.Track.Title)
		if opts.Album {
			sw.line("album %s", status.Track.Album)
		}
		sw.line("position %s", player.Seconds(status.Position))
		sw.line("duration %s", player.Seconds(status.Track.Duration))
	} else {
		sw.line(NoTrackSelected)
	}

	sw.line("shuffle %s", strconv.FormatBool(status.Shuffle))
	sw.line("repeat %s", strconv.FormatBool(status.Repeat))
	sw.line("volume %d", status.Volume)
	return sw.err
}
