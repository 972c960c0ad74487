package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// MaxUploadSize bounds uploaded audio.
const MaxUploadSize = 10 << 20

var (
	// ErrUnsupportedFormat indicates an upload that is neither MP3 nor WAV.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrTooLarge indicates an upload over MaxUploadSize.
	ErrTooLarge = errors.New("audio file too large")
	// ErrEmpty indicates an upload with no data.
	ErrEmpty = errors.New("audio file is empty")
)

// Extensions lists the accepted upload file extensions.
var Extensions = []string{".mp3", ".wav"}

type container int

const (
	containerUnknown container = iota
	containerMP3
	containerWAV
)

// Validate checks that data is decodable audio of an accepted format.
func Validate(name string, data []byte) error {
	_, err := decodeBuffer(name, data)
	return err
}

func decodeBuffer(name string, data []byte) (*beep.Buffer, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	switch detect(name, data) {
	case containerMP3:
		streamer, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	case containerWAV:
		streamer, format, err = wav.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	defer streamer.Close()

	var source beep.Streamer = streamer
	if format.SampleRate != SampleRate {
		source = beep.Resample(4, format.SampleRate, SampleRate, streamer)
	}

	buffer := beep.NewBuffer(outputFormat)
	buffer.Append(source)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if buffer.Len() == 0 {
		return nil, fmt.Errorf("decode %s: %w", name, ErrEmpty)
	}
	return buffer, nil
}

func detect(name string, data []byte) container {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return containerMP3
	case ".wav":
		return containerWAV
	case "":
	default:
		return containerUnknown
	}

	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return containerWAV
	case bytes.HasPrefix(data, []byte("ID3")), len(data) > 1 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return containerMP3
	}
	return containerUnknown
}
