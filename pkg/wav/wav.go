package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"time"
)

// Robot playback format.
const (
	SampleRate     = 16000
	Channels       = 1
	BitsPerSample  = 16
	BytesPerSample = BitsPerSample / 8
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// Resource is a playable audio payload: a file on disk or an in-memory buffer.
// Data wins when both are set.
type Resource struct {
	Path string
	Data []byte
}

// FromFile returns a resource backed by a file.
func FromFile(path string) Resource {
	return Resource{Path: path}
}

// FromBytes returns a resource backed by an in-memory WAV payload.
func FromBytes(data []byte) Resource {
	return Resource{Data: data}
}

// Bytes returns the raw payload, reading the file if needed.
func (r Resource) Bytes() ([]byte, error) {
	if len(r.Data) > 0 {
		return r.Data, nil
	}
	if r.Path == "" {
		return nil, ErrEmpty
	}
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("wav: read %s: %w", r.Path, err)
	}
	return data, nil
}

// String identifies the resource in logs.
func (r Resource) String() string {
	if r.Path != "" {
		return r.Path
	}
	return fmt.Sprintf("<%d bytes>", len(r.Data))
}

// Audio is decoded linear PCM.
type Audio struct {
	PCM           []byte
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// CheckFormat returns a *FormatError unless the audio is 16-bit PCM at the
// given rate and channel count.
func (a Audio) CheckFormat(rate, channels int) error {
	if a.SampleRate != rate || a.Channels != channels || a.BitsPerSample != BitsPerSample {
		return &FormatError{
			SampleRate:     a.SampleRate,
			Channels:       a.Channels,
			BitsPerSample:  a.BitsPerSample,
			WantSampleRate: rate,
			WantChannels:   channels,
		}
	}
	return nil
}

// Duration is the playback length of the PCM buffer.
func (a Audio) Duration() time.Duration {
	bytesPerSecond := a.SampleRate * a.Channels * (a.BitsPerSample / 8)
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(len(a.PCM)) / float64(bytesPerSecond) * float64(time.Second))
}

// Decode parses a WAV resource.
func Decode(r Resource) (Audio, error) {
	data, err := r.Bytes()
	if err != nil {
		return Audio{}, err
	}
	return Parse(data)
}

// Parse walks the RIFF chunks of a WAV payload and returns its PCM data.
func Parse(data []byte) (Audio, error) {
	if len(data) < 12 {
		return Audio{}, fmt.Errorf("%w: %d bytes", ErrMalformed, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Audio{}, fmt.Errorf("%w: missing RIFF/WAVE header", ErrMalformed)
	}

	var (
		a        Audio
		haveFmt  bool
		audioFmt uint16
		pos      = 12
		haveData bool
	)

	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		start := pos + 8
		end := start + size
		if end > len(data) || end < start {
			// Streamed WAVs often carry a bogus data size; take what is there.
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-start < 16 {
				return Audio{}, fmt.Errorf("%w: short fmt chunk", ErrMalformed)
			}
			audioFmt = binary.LittleEndian.Uint16(data[start : start+2])
			a.Channels = int(binary.LittleEndian.Uint16(data[start+2 : start+4]))
			a.SampleRate = int(binary.LittleEndian.Uint32(data[start+4 : start+8]))
			a.BitsPerSample = int(binary.LittleEndian.Uint16(data[start+14 : start+16]))
			haveFmt = true
		case "data":
			a.PCM = data[start:end]
			haveData = true
		}

		pos = end
		// Chunks are word-aligned.
		if size%2 != 0 {
			pos++
		}
	}

	if !haveFmt {
		return Audio{}, fmt.Errorf("%w: fmt chunk not found", ErrMalformed)
	}
	if !haveData {
		return Audio{}, fmt.Errorf("%w: data chunk not found", ErrMalformed)
	}
	if audioFmt != formatPCM && audioFmt != formatExtensible {
		return Audio{}, fmt.Errorf("%w: compressed format %d", ErrMalformed, audioFmt)
	}
	return a, nil
}

// Encode wraps 16-bit little-endian PCM in a canonical 44-byte WAV header.
func Encode(pcm []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	blockAlign := channels * BytesPerSample
	byteRate := sampleRate * blockAlign

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(formatPCM))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(BitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
