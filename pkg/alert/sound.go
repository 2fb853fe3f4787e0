package alert

import "context"

// Sound is a decoded clip owned by exactly one Alert.
type Sound interface {
	// Restart stops any in-flight playback of this clip, rewinds it to the
	// start and plays it again. It must not block for the clip's duration.
	// Calling Restart after Close returns ErrSoundClosed.
	Restart() error

	// Close releases the decoded audio.
	Close() error
}

// Opener decodes a source into a playable Sound at the given volume. The
// volume has already been clamped for the source type.
type Opener interface {
	Open(ctx context.Context, src Source, volume float64) (Sound, error)
}
