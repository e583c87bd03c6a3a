// Package audio converts between float samples and 16-bit PCM, and schedules
// sequential playback of decoded audio chunks.
package audio

import (
	"encoding/binary"
)

const (
	// CaptureSampleRateHz is the microphone capture rate (mono).
	CaptureSampleRateHz = 16000

	// PlaybackSampleRateHz is the rate of audio returned by the model (mono).
	PlaybackSampleRateHz = 24000

	bytesPerSample = 2
)

// EncodePCM16 converts float samples in [-1, 1] to signed 16-bit little-endian
// PCM. Samples are clamped first; the full-scale positive value saturates at
// 32767. The scale factor is 32768 in both directions so that encode and
// decode are inverses up to quantization.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int32(s * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*bytesPerSample:], uint16(int16(v)))
	}
	return out
}

// DecodePCM16 converts signed 16-bit little-endian PCM to float samples by
// dividing by 32768. A trailing odd byte is ignored.
func DecodePCM16(data []byte) []float32 {
	n := len(data) / bytesPerSample
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(data[i*bytesPerSample:]))
		out[i] = float32(v) / 32768.0
	}
	return out
}

// DurationMS returns the playback duration of a PCM16 mono buffer in
// milliseconds at the given sample rate.
func DurationMS(pcmBytes int, sampleRateHz int) int64 {
	bytesPerSecond := int64(sampleRateHz) * bytesPerSample
	if bytesPerSecond <= 0 || pcmBytes <= 0 {
		return 0
	}
	return (int64(pcmBytes) * 1000) / bytesPerSecond
}

// Level returns the peak amplitude of a PCM16 buffer in [0, 1]. Used for
// simple terminal level meters.
func Level(pcm []byte) float32 {
	var peak float32
	for _, s := range DecodePCM16(pcm) {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}
