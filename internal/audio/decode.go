package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// streamChunk is how many frames are pulled from a streamer per call.
const streamChunk = 4096

// Decode opens an audio file and decodes it into a mono Clip.
// The format is chosen by file extension.
func Decode(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	// Decoders take ownership of f and close it through the streamer.
	clip, err := DecodeReader(f, filepath.Ext(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	clip.Name = filepath.Base(path)
	return clip, nil
}

// DecodeReader decodes rc as the format named by ext (".wav" or ".mp3").
func DecodeReader(rc io.ReadCloser, ext string) (*Clip, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "wav", "wave":
		streamer, format, err = wav.Decode(rc)
	case "mp3":
		streamer, format, err = mp3.Decode(rc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	defer streamer.Close()

	return FromStreamer(streamer, format)
}

// FromStreamer drains s and mixes every frame down to mono.
func FromStreamer(s beep.Streamer, format beep.Format) (*Clip, error) {
	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", format.SampleRate)
	}

	var mono []float64
	if l, ok := s.(beep.StreamSeeker); ok && l.Len() > 0 {
		mono = make([]float64, 0, l.Len())
	}

	buf := make([][2]float64, streamChunk)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			if format.NumChannels == 1 {
				mono = append(mono, frame[0])
			} else {
				mono = append(mono, (frame[0]+frame[1])/2)
			}
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to stream audio: %w", err)
	}
	return NewClip("", mono, int(format.SampleRate)), nil
}
