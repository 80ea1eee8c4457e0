package audioio

// Resample converts mono PCM16 between sample rates by linear interpolation.
// The output has len(samples)*toRate/fromRate samples, truncated. Invalid or
// equal rates return samples unchanged.
func Resample(samples []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 || len(samples) == 0 {
		return samples
	}

	out := make([]int16, len(samples)*toRate/fromRate)
	last := len(samples) - 1
	step := float64(fromRate) / float64(toRate)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = samples[last]
			continue
		}
		a, b := float64(samples[j]), float64(samples[j+1])
		out[i] = int16(a + (pos-float64(j))*(b-a))
	}
	return out
}

// Downmix averages interleaved channels to mono. Mono input is returned as is.
func Downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}
	mono := make([]int16, len(samples)/channels)
	for i := range mono {
		frame := samples[i*channels : (i+1)*channels]
		var sum int32
		for _, s := range frame {
			sum += int32(s)
		}
		mono[i] = int16(sum / int32(channels))
	}
	return mono
}

// ToFloat32 scales PCM16 into [-1, 1) by dividing by 32768.
func ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768
	}
	return out
}
