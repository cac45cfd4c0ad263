package wav

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned when a payload is not a parsable WAV file.
	ErrMalformed = errors.New("wav: malformed payload")

	// ErrEmpty is returned when a resource has neither a path nor data.
	ErrEmpty = errors.New("wav: empty resource")
)

// FormatError reports decoded audio that does not meet the playback format.
type FormatError struct {
	SampleRate     int
	Channels       int
	BitsPerSample  int
	WantSampleRate int
	WantChannels   int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("wav: unsupported format %d Hz/%d ch/%d bit (need %d Hz/%d ch/16 bit)",
		e.SampleRate, e.Channels, e.BitsPerSample, e.WantSampleRate, e.WantChannels)
}
