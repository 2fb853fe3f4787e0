package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/AccelByte/extend-doorbell/pkg/alert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// pcmWav builds a mono 16-bit PCM wav file holding n silent samples.
func pcmWav(n int) []byte {
	var b bytes.Buffer
	dataLen := uint32(n * 2)

	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, 36+dataLen)
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&b, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&b, binary.LittleEndian, uint32(SampleRate))
	binary.Write(&b, binary.LittleEndian, uint32(SampleRate)*2)
	binary.Write(&b, binary.LittleEndian, uint16(2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, dataLen)
	b.Write(make([]byte, dataLen))

	return b.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     []byte
		expected string
	}{
		{"wav extension", "bell.WAV", nil, "wav"},
		{"mp3 extension", "bell.mp3", nil, "mp3"},
		{"riff magic", "bell", []byte("RIFF...."), "wav"},
		{"id3 magic", "bell", []byte("ID3\x04"), "mp3"},
		{"mpeg frame sync", "bell", []byte{0xFF, 0xFB, 0x90}, "mp3"},
		{"unknown", "bell.ogg", []byte("OggS"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.file, tt.data); got != tt.expected {
				t.Errorf("detectFormat(%q) = %q, expected %q", tt.file, got, tt.expected)
			}
		})
	}
}

func TestDecode_Wav(t *testing.T) {
	streamer, format, err := decode("bell.wav", pcmWav(441))
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	defer streamer.Close()

	if format.SampleRate != SampleRate || format.NumChannels != 1 {
		t.Errorf("format = %+v, expected mono at %d Hz", format, SampleRate)
	}
	if streamer.Len() != 441 {
		t.Errorf("Len() = %d, expected 441", streamer.Len())
	}
}

func TestDecode_Unsupported(t *testing.T) {
	if _, _, err := decode("bell.ogg", []byte("OggS")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestRead(t *testing.T) {
	payload := pcmWav(10)

	path := filepath.Join(t.TempDir(), "bell.wav")
	if err := os.WriteFile(path, payload, 0644); err != nil {
		t.Fatalf("failed to write sound file: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bell.wav" {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)
	}))
	defer srv.Close()

	o := NewOpener(srv.Client())
	ctx := context.Background()

	tests := []struct {
		name        string
		src         alert.Source
		expectError bool
	}{
		{"local file", alert.Source{Path: path}, false},
		{"missing file", alert.Source{Path: filepath.Join(t.TempDir(), "nope.wav")}, true},
		{"url", alert.Source{URL: srv.URL + "/bell.wav"}, false},
		{"url not found", alert.Source{URL: srv.URL + "/missing.wav"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := o.read(ctx, tt.src)
			if tt.expectError {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("read() error = %v", err)
			}
			if !bytes.Equal(data, payload) {
				t.Errorf("read() returned %d bytes, expected %d", len(data), len(payload))
			}
		})
	}
}

func TestRead_PropagatesTrace(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		w.Write(pcmWav(1))
	}))
	defer srv.Close()

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "alert.load_sound")
	defer span.End()

	o := NewOpener(srv.Client())
	if _, err := o.read(ctx, alert.Source{URL: srv.URL + "/bell.wav"}); err != nil {
		t.Fatalf("read() error = %v", err)
	}
	if traceparent == "" {
		t.Error("expected a traceparent header on the sound download")
	}
}

func TestNameOf(t *testing.T) {
	if got := nameOf(alert.Source{URL: "https://example.com/sounds/ding.mp3?v=2"}); got != "ding.mp3" {
		t.Errorf("nameOf(url) = %q, expected ding.mp3", got)
	}
	if got := nameOf(alert.Source{Path: "/tmp/bell.wav"}); got != "/tmp/bell.wav" {
		t.Errorf("nameOf(path) = %q", got)
	}
}

func TestDecodeError(t *testing.T) {
	err := decodeError(alert.Source{Path: "/tmp/bell.wav"}, errors.New("truncated"))

	if !errors.Is(err, alert.ErrSoundDecode) {
		t.Errorf("expected ErrSoundDecode, got %v", err)
	}
	var soundErr *alert.SoundError
	if !errors.As(err, &soundErr) || soundErr.Source != "/tmp/bell.wav" {
		t.Errorf("expected SoundError for /tmp/bell.wav, got %v", err)
	}
}
