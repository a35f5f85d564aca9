package sample

// DownsampleSamples reduces samples to at most maxPoints for display.
//
// The input is split into maxPoints/2 equal buckets and each bucket contributes
// its lowest and highest voltage sample in time order, so short spikes survive
// the reduction. dst is reused when it has enough capacity. If
// len(samples) <= maxPoints the samples are copied unchanged.
func DownsampleSamples(dst []Sample, samples []Sample, maxPoints int) []Sample {
	if cap(dst) >= min(len(samples), max(maxPoints, 1)) {
		dst = dst[:0]
	} else {
		dst = make([]Sample, 0, min(len(samples), max(maxPoints, 1)))
	}

	if len(samples) <= maxPoints {
		return append(dst, samples...)
	}

	buckets := max(maxPoints/2, 1)
	n := len(samples)
	for b := 0; b < buckets; b++ {
		from, to := b*n/buckets, (b+1)*n/buckets
		if from == to {
			continue
		}

		lo, hi := from, from
		for i := from + 1; i < to; i++ {
			if samples[i].Voltage < samples[lo].Voltage {
				lo = i
			}
			if samples[i].Voltage > samples[hi].Voltage {
				hi = i
			}
		}

		switch {
		case lo == hi:
			dst = append(dst, samples[lo])
		case lo < hi:
			dst = append(dst, samples[lo], samples[hi])
		default:
			dst = append(dst, samples[hi], samples[lo])
		}
	}

	return dst
}
