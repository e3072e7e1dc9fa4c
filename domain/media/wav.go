package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavHeaderSize is the size of a canonical RIFF/WAVE header with no data
const wavHeaderSize = 44

// PCM holds decoded integer samples, interleaved when Channels > 1
type PCM struct {
	Samples    []int
	SampleRate int
	Channels   int
	BitDepth   int
}

// DecodeWAV decodes a WAV byte buffer into PCM samples
func DecodeWAV(data []byte) (*PCM, error) {
	if len(data) <= wavHeaderSize {
		return nil, ErrEmptyAudio
	}

	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	return &PCM{
		Samples:    buf.Data,
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}, nil
}

// EncodeWAV encodes PCM samples as a WAV byte buffer
func EncodeWAV(p *PCM) ([]byte, error) {
	if p == nil || p.SampleRate <= 0 || p.Channels <= 0 || p.BitDepth <= 0 {
		return nil, errors.New("pcm format is incomplete")
	}

	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, p.SampleRate, p.BitDepth, p.Channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: p.Channels,
			SampleRate:  p.SampleRate,
		},
		Data:           p.Samples,
		SourceBitDepth: p.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize wav: %w", err)
	}
	return ws.buf, nil
}

// Duration returns the playback length of the samples
func (p *PCM) Duration() time.Duration {
	if p.SampleRate <= 0 || p.Channels <= 0 {
		return 0
	}
	frames := len(p.Samples) / p.Channels
	return time.Duration(frames) * time.Second / time.Duration(p.SampleRate)
}

// RMS returns the root mean square amplitude normalized to [0,1]
func (p *PCM) RMS() float64 {
	if len(p.Samples) == 0 || p.BitDepth <= 0 {
		return 0
	}

	full := float64(int64(1) << (p.BitDepth - 1))
	var sum float64
	for _, s := range p.Samples {
		v := float64(s) / full
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(p.Samples)))
}

// IsSilent reports whether the RMS level is below threshold
func (p *PCM) IsSilent(threshold float64) bool {
	return len(p.Samples) == 0 || p.RMS() < threshold
}

// Scaled returns a copy with every sample multiplied by gain, clipped to the bit depth
func (p *PCM) Scaled(gain float64) *PCM {
	hi := int64(1)<<(p.BitDepth-1) - 1
	lo := -hi - 1

	out := make([]int, len(p.Samples))
	for i, s := range p.Samples {
		v := int64(math.Round(float64(s) * gain))
		if v > hi {
			v = hi
		} else if v < lo {
			v = lo
		}
		out[i] = int(v)
	}

	return &PCM{
		Samples:    out,
		SampleRate: p.SampleRate,
		Channels:   p.Channels,
		BitDepth:   p.BitDepth,
	}
}

// Int16LE returns the samples as little-endian signed 16-bit bytes
func (p *PCM) Int16LE() []byte {
	shift := p.BitDepth - 16
	out := make([]byte, len(p.Samples)*2)
	for i, s := range p.Samples {
		v := s
		if shift > 0 {
			v = s >> shift
		} else if shift < 0 {
			v = s << -shift
		}
		u := uint16(int16(v))
		out[i*2] = byte(u)
		out[i*2+1] = byte(u >> 8)
	}
	return out
}

// memWriteSeeker is an in-memory io.WriteSeeker for the WAV encoder,
// which seeks back to patch chunk sizes on Close
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(m.pos) + offset
	case io.SeekEnd:
		next = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative position %d", next)
	}
	m.pos = int(next)
	return next, nil
}
