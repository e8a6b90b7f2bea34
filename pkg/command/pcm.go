package command

import "encoding/binary"

// EncodePCM16 converts interleaved int16 samples to little-endian bytes
// suitable for WavData.
func EncodePCM16(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// NewPlayPointSourceData builds a positioned command from interleaved int16
// samples; NumFrames is the sample count divided by channels.
func NewPlayPointSourceData(id uint32, samples []int16, channels, frameRate int, pos Position, yOffset float64) PlayPointSourceData {
	return PlayPointSourceData{
		ID:          id,
		NumChannels: channels,
		NumFrames:   len(samples) / maxInt(channels, 1),
		FrameRate:   frameRate,
		WavData:     EncodePCM16(samples),
		Position:    pos,
		YPosOffset:  yOffset,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
