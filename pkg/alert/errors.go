package alert

import (
	"errors"
	"fmt"
)

var (
	// ErrSoundResolution indicates the configured sound could not be located
	// (missing file, malformed URL).
	ErrSoundResolution = errors.New("sound source could not be resolved")

	// ErrSoundDecode indicates the sound source was found but could not be
	// fetched or decoded.
	ErrSoundDecode = errors.New("sound could not be decoded")

	// ErrSoundClosed is returned by a Sound used after Close.
	ErrSoundClosed = errors.New("sound is closed")
)

// SoundError describes a failure to prepare or play an alert sound.
type SoundError struct {
	Source string
	Err    error
}

func (e *SoundError) Error() string {
	return fmt.Sprintf("sound %q: %v", e.Source, e.Err)
}

func (e *SoundError) Unwrap() error {
	return e.Err
}
