package sample

import (
	"time"

	"github.com/itohio/goemg/pkg/emg"
)

// Sample is a received record placed on a continuous time axis.
type Sample struct {
	Elapsed time.Duration // Time since the first received sample's clock origin
	Raw     uint16        // ADC code (0-1023)
	Voltage float64       // Amplifier output (V)
}

// Converter transforms a stream of records into samples.
type Converter func(in <-chan emg.Record) <-chan Sample

// Unwrapper extends the sampler's 32-bit microsecond timestamps into a
// monotonically increasing 64-bit count. Consecutive records must be less than
// one wrap period (about 71 minutes) apart.
type Unwrapper struct {
	started bool
	last    uint32
	total   uint64
}

// Unwrap returns the extended timestamp of ts.
func (u *Unwrapper) Unwrap(ts uint32) time.Duration {
	if !u.started {
		u.started = true
		u.total = uint64(ts)
	} else {
		u.total += uint64(ts - u.last)
	}
	u.last = ts
	return time.Duration(u.total) * time.Microsecond
}

// NewConverter creates a converter stage that unwraps timestamps and widens
// the voltage to float64. The output channel is closed when in is closed.
func NewConverter(bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan emg.Record) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			var u Unwrapper
			for rec := range in {
				out <- convertRecord(&u, rec)
			}
		}()

		return out
	}
}

func convertRecord(u *Unwrapper, rec emg.Record) Sample {
	return Sample{
		Elapsed: u.Unwrap(rec.Timestamp),
		Raw:     rec.Raw,
		Voltage: float64(rec.Voltage),
	}
}
