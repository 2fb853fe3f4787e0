package audio

import (
	"sync"

	"github.com/AccelByte/extend-doorbell/pkg/alert"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// clip is a decoded sound. Each Restart plays a fresh streamer over the
// shared buffer; the previous one is cut off first so a slot never overlaps
// itself.
type clip struct {
	mu     sync.Mutex
	buffer *beep.Buffer
	gain   float64
	ctrl   *beep.Ctrl
	closed bool
}

func newClip(buffer *beep.Buffer, volume float64) *clip {
	return &clip{
		buffer: buffer,
		// effects.Gain scales samples by 1+Gain.
		gain: volume - 1,
	}
}

func (c *clip) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return alert.ErrSoundClosed
	}
	c.stopLocked()

	ctrl := &beep.Ctrl{
		Streamer: &effects.Gain{
			Streamer: c.buffer.Streamer(0, c.buffer.Len()),
			Gain:     c.gain,
		},
	}
	c.ctrl = ctrl
	speaker.Play(ctrl)
	return nil
}

func (c *clip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.stopLocked()
	c.closed = true
	c.buffer = nil
	return nil
}

// stopLocked detaches the playing streamer; the speaker drops a Ctrl whose
// Streamer is nil.
func (c *clip) stopLocked() {
	if c.ctrl == nil {
		return
	}
	speaker.Lock()
	c.ctrl.Streamer = nil
	speaker.Unlock()
	c.ctrl = nil
}
