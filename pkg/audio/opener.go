package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AccelByte/extend-doorbell/pkg/alert"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	// SampleRate is the output rate of the speaker; every clip is resampled
	// to it when decoded.
	SampleRate beep.SampleRate = 44100

	// MaxSourceBytes caps how much of a sound file or URL is read.
	MaxSourceBytes = 32 << 20

	resampleQuality = 4
)

// Opener decodes wav and mp3 sources into in-memory clips played through the
// system speaker.
type Opener struct {
	client *http.Client

	initOnce sync.Once
	initErr  error
}

// NewOpener creates an opener. client is used for URL sources; nil uses a
// client with a 10 second timeout.
func NewOpener(client *http.Client) *Opener {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Opener{client: client}
}

// Open reads and decodes src into a clip at volume (linear gain, 1 = as
// recorded).
func (o *Opener) Open(ctx context.Context, src alert.Source, volume float64) (alert.Sound, error) {
	if err := o.initSpeaker(); err != nil {
		return nil, decodeError(src, fmt.Errorf("speaker unavailable: %v", err))
	}

	data, err := o.read(ctx, src)
	if err != nil {
		return nil, decodeError(src, err)
	}

	streamer, format, err := decode(nameOf(src), data)
	if err != nil {
		return nil, decodeError(src, err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, SampleRate, s)
	}

	buffer := beep.NewBuffer(beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2})
	buffer.Append(s)
	if buffer.Len() == 0 {
		return nil, decodeError(src, fmt.Errorf("no audio samples"))
	}

	logrus.Debugf("decoded %s: %v", src, SampleRate.D(buffer.Len()))
	return newClip(buffer, volume), nil
}

func (o *Opener) initSpeaker() error {
	o.initOnce.Do(func() {
		o.initErr = speaker.Init(SampleRate, SampleRate.N(time.Second/10))
		if o.initErr == nil {
			logrus.Infof("audio speaker initialized at %d Hz", SampleRate)
		}
	})
	return o.initErr
}

func (o *Opener) read(ctx context.Context, src alert.Source) ([]byte, error) {
	if !src.IsURL() {
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, MaxSourceBytes))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxSourceBytes))
}

func decode(name string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	switch detectFormat(name, data) {
	case "mp3":
		return mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	case "wav":
		return wav.Decode(bytes.NewReader(data))
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format")
	}
}

// detectFormat picks a decoder from the file extension, falling back to the
// leading magic bytes.
func detectFormat(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return "mp3"
	case ".wav", ".wave":
		return "wav"
	}

	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return "wav"
	case bytes.HasPrefix(data, []byte("ID3")):
		return "mp3"
	case len(data) > 1 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return "mp3"
	}
	return ""
}

func nameOf(src alert.Source) string {
	if src.IsURL() {
		return path.Base(strings.SplitN(src.URL, "?", 2)[0])
	}
	return src.Path
}

func decodeError(src alert.Source, err error) error {
	return &alert.SoundError{Source: src.String(), Err: fmt.Errorf("%w: %v", alert.ErrSoundDecode, err)}
}
