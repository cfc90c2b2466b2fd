package batch

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// Clip is a decoded mono audio buffer ready for analysis
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// LoadWAV decodes a WAV file into normalized mono float64 samples in
// [-1, 1]. Multi-channel files are downmixed by channel averaging.
func LoadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data from %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("empty audio buffer")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	rate := buf.Format.SampleRate
	if rate <= 0 {
		return nil, fmt.Errorf("%s: invalid sample rate %d", path, rate)
	}

	// Full-scale value for the source bit depth
	scale := math.Pow(2, float64(buf.SourceBitDepth-1))
	if buf.SourceBitDepth <= 0 {
		scale = math.Pow(2, 15)
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch])
		}
		samples[i] = sum / float64(channels) / scale
	}

	return &Clip{Samples: samples, SampleRate: rate}, nil
}
