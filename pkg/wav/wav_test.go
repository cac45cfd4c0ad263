package wav

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEncodeDecode(t *testing.T) {
	pcm := make([]byte, 32000)
	for i := range pcm {
		pcm[i] = byte(i)
	}

	a, err := Parse(Encode(pcm, 16000, 1))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.SampleRate != 16000 || a.Channels != 1 || a.BitsPerSample != 16 {
		t.Errorf("format = %d/%d/%d", a.SampleRate, a.Channels, a.BitsPerSample)
	}
	if len(a.PCM) != len(pcm) {
		t.Fatalf("pcm length = %d, want %d", len(a.PCM), len(pcm))
	}
	if a.PCM[1234] != pcm[1234] {
		t.Error("pcm content changed")
	}
	if err := a.CheckFormat(16000, 1); err != nil {
		t.Errorf("CheckFormat: %v", err)
	}
	if a.Duration() != time.Second {
		t.Errorf("Duration = %v, want 1s", a.Duration())
	}
}

func TestCheckFormat_Violations(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		channels int
	}{
		{"24kHz mono", 24000, 1},
		{"16kHz stereo", 16000, 2},
		{"44.1kHz stereo", 44100, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse(Encode(make([]byte, 640), tt.rate, tt.channels))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			err = a.CheckFormat(SampleRate, Channels)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
			if fe.SampleRate != tt.rate || fe.Channels != tt.channels {
				t.Errorf("error carries %d/%d", fe.SampleRate, fe.Channels)
			}
		})
	}
}

func TestParse_SkipsUnknownChunks(t *testing.T) {
	base := Encode([]byte{1, 2, 3, 4}, 16000, 1)

	// Insert an odd-sized LIST chunk (with pad byte) between fmt and data.
	list := []byte("LIST")
	list = binary.LittleEndian.AppendUint32(list, 3)
	list = append(list, 'a', 'b', 'c', 0)

	data := append([]byte{}, base[:36]...)
	data = append(data, list...)
	data = append(data, base[36:]...)

	a, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(a.PCM) != 4 || a.PCM[3] != 4 {
		t.Errorf("pcm = %v", a.PCM)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := map[string][]byte{
		"short":   []byte("RIFF"),
		"not wav": append([]byte("RIFX\x00\x00\x00\x00WAVE"), make([]byte, 32)...),
		"no data": Encode(nil, 16000, 1)[:36],
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(data); !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}

	t.Run("compressed", func(t *testing.T) {
		data := Encode(make([]byte, 8), 16000, 1)
		binary.LittleEndian.PutUint16(data[20:22], 0x55) // MPEG layer 3
		if _, err := Parse(data); !errors.Is(err, ErrMalformed) {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})
}

func TestResource(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := Decode(Resource{}); !errors.Is(err, ErrEmpty) {
			t.Errorf("expected ErrEmpty, got %v", err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hello.wav")
		if err := os.WriteFile(path, Encode(make([]byte, 3200), 16000, 1), 0o644); err != nil {
			t.Fatal(err)
		}
		a, err := Decode(FromFile(path))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if a.Duration() != 100*time.Millisecond {
			t.Errorf("Duration = %v", a.Duration())
		}
		if FromFile(path).String() != path {
			t.Error("String should return the path")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Decode(FromFile("/nonexistent/x.wav")); err == nil {
			t.Error("expected error")
		}
	})
}
