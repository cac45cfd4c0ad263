package wav

// Resample converts mono PCM16 samples between rates by linear interpolation.
// Good enough for speech; TTS providers that cannot emit 16 kHz go through here.
func Resample(samples []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(fromRate) / float64(toRate)
	n := int(float64(len(samples)) / ratio)
	out := make([]int16, n)

	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		s1 := float64(samples[idx])
		s2 := float64(samples[idx+1])
		out[i] = int16(s1 + frac*(s2-s1))
	}
	return out
}

// ToPlayback converts PCM16 at any rate and channel count to 16 kHz mono.
func ToPlayback(pcm []byte, sampleRate, channels int) []byte {
	samples := BytesToSamples(pcm)
	if channels == 2 {
		samples = StereoToMono(samples)
	}
	return SamplesToBytes(Resample(samples, sampleRate, SampleRate))
}

// BytesToSamples converts little-endian PCM16 bytes to samples.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples
}

// SamplesToBytes converts samples to little-endian PCM16 bytes.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return data
}

// StereoToMono averages interleaved stereo samples.
func StereoToMono(samples []int16) []int16 {
	mono := make([]int16, len(samples)/2)
	for i := range mono {
		mono[i] = int16((int32(samples[i*2]) + int32(samples[i*2+1])) / 2)
	}
	return mono
}
