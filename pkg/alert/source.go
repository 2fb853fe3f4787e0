package alert

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSoundFile is the bundled sound used when no file is configured.
const DefaultSoundFile = "doorbell.wav"

const (
	// MaxURLVolume caps streamed sources.
	MaxURLVolume = 1.0
	// MaxFileVolume caps local files; values above 1 amplify.
	MaxFileVolume = 3.0
)

// Source is a resolved sound location: either a local file or a URL.
type Source struct {
	Path string
	URL  string
}

// IsURL reports whether the source is streamed over HTTP(S).
func (s Source) IsURL() bool {
	return s.URL != ""
}

func (s Source) String() string {
	if s.IsURL() {
		return s.URL
	}
	return s.Path
}

// MaxVolume returns the upper volume bound for the source.
func (s Source) MaxVolume() float64 {
	if s.IsURL() {
		return MaxURLVolume
	}
	return MaxFileVolume
}

// ClampVolume bounds v to the range the source supports.
func (s Source) ClampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if max := s.MaxVolume(); v > max {
		return max
	}
	return v
}

// IsHTTPURL reports whether str names an http or https resource.
func IsHTTPURL(str string) bool {
	return strings.HasPrefix(str, "http://") || strings.HasPrefix(str, "https://")
}

// ResolveSource turns a configured sound file into a Source. An empty file
// falls back to DefaultSoundFile inside defaultDir. Local files must exist.
func ResolveSource(file, defaultDir string) (Source, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		file = filepath.Join(defaultDir, DefaultSoundFile)
	}

	if IsHTTPURL(file) {
		u, err := url.Parse(file)
		if err != nil || u.Host == "" {
			return Source{}, &SoundError{Source: file, Err: fmt.Errorf("%w: invalid url", ErrSoundResolution)}
		}
		return Source{URL: u.String()}, nil
	}

	info, err := os.Stat(file)
	if err != nil {
		return Source{}, &SoundError{Source: file, Err: fmt.Errorf("%w: %v", ErrSoundResolution, err)}
	}
	if info.IsDir() {
		return Source{}, &SoundError{Source: file, Err: fmt.Errorf("%w: is a directory", ErrSoundResolution)}
	}
	return Source{Path: file}, nil
}
