// Package clip defines the immutable single-channel PCM fragment that is
// the engine's smallest unit of audio content (spec section 3, Clip).
package clip

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/branchpanic/operator/internal/engineerr"
)

// Clip is an immutable mono PCM fragment, samples nominally in [-1, 1].
// Once added to a ClipStore it is never mutated.
type Clip struct {
	Data []float32
}

// New wraps already-decoded sample data into a Clip.
func New(data []float32) Clip {
	return Clip{Data: data}
}

// Len returns the number of samples in the clip.
func (c Clip) Len() int {
	return len(c.Data)
}

// LoadWav decodes an integer-PCM WAV file at path, validates its sample
// rate against expectedSampleRate, downmixes to mono by taking only
// channel 0 (strided selection, not averaging — see SPEC_FULL.md), and
// normalizes integer samples into [-1, 1]. IEEE-float WAV files are
// rejected with UnsupportedSampleFormat.
//
// No resampling happens here: a sample-rate mismatch is a hard error in v1
// (spec section 4.2).
func LoadWav(path string, expectedSampleRate int) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, &engineerr.ReadError{Cause: err}
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Clip{}, &engineerr.ReadError{Cause: fmt.Errorf("invalid WAV file: %s", path)}
	}

	// Format tag 3 is IEEE float; the decoder below only reads integer PCM.
	if d.WavAudioFormat == 3 {
		return Clip{}, &engineerr.UnsupportedSampleFormat{BitsPerSample: int(d.BitDepth)}
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Clip{}, &engineerr.ReadError{Cause: err}
	}

	if int(d.SampleRate) != expectedSampleRate {
		return Clip{}, &engineerr.UnsupportedSampleFormat{
			Detail: fmt.Sprintf("wav sample rate %d does not match project sample rate %d", d.SampleRate, expectedSampleRate),
		}
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(d.BitDepth)
	}
	if bitDepth <= 0 {
		return Clip{}, &engineerr.UnsupportedSampleFormat{BitsPerSample: bitDepth}
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}

	maxAmplitude := float32((int64(1) << (bitDepth - 1)) - 1)

	frames := len(buf.Data) / channels
	data := make([]float32, frames)
	for i := 0; i < frames; i++ {
		// Strided channel selection: keep channel 0 only, drop the rest.
		data[i] = float32(buf.Data[i*channels]) / maxAmplitude
	}

	return Clip{Data: data}, nil
}
