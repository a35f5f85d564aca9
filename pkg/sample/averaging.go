package sample

// NewAveragingConverter creates a stage that replaces every windowSize
// consecutive samples by their mean, reducing both noise and rate. The
// averaged sample carries the timestamp of the last sample in the block.
// A trailing partial block is flushed when in is closed.
func NewAveragingConverter(windowSize int, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			buffer := make([]Sample, 0, windowSize)
			for s := range in {
				buffer = append(buffer, s)
				if len(buffer) == windowSize {
					out <- averageSamples(buffer)
					buffer = buffer[:0]
				}
			}
			if len(buffer) > 0 {
				out <- averageSamples(buffer)
			}
		}()

		return out
	}
}

// averageSamples averages a non-empty block of samples.
func averageSamples(samples []Sample) Sample {
	if len(samples) == 0 {
		return Sample{}
	}

	var sumRaw uint32
	var sumVoltage float64
	for _, s := range samples {
		sumRaw += uint32(s.Raw)
		sumVoltage += s.Voltage
	}

	n := float64(len(samples))
	return Sample{
		Elapsed: samples[len(samples)-1].Elapsed,
		Raw:     uint16(float64(sumRaw)/n + 0.5), // Round to nearest
		Voltage: sumVoltage / n,
	}
}
