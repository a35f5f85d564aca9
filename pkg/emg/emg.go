// Package emg implements the single-channel sampler shared by the firmware and
// the host tools: the sampling cadence, the raw-to-voltage conversion and the
// line format written to the serial link.
package emg

import "time"

const (
	// SampleRate is the fixed sampling frequency in Hz.
	SampleRate = 1000
	// PeriodMicros is the sampling period in microseconds.
	PeriodMicros uint32 = 1000000 / SampleRate

	// BaudRate of the serial link.
	BaudRate = 115200

	// ReferenceVoltage is the full-scale voltage corresponding to MaxCode.
	ReferenceVoltage = 5.0
	// MaxCode is the highest raw code of the 10-bit ADC.
	MaxCode = 1023

	// StartupDelay is the pause after each of the two startup lines.
	StartupDelay = 15000 * time.Millisecond

	// Greeting is the first line written after the link comes up.
	Greeting = "Hello World"
	// StartingMessage is written after the first startup pause.
	StartingMessage = "Starting in 15 Seconds"
)

// Cadence holds the deadline counter of the sampling loop. The zero value
// schedules the first sample one period after the clock origin.
type Cadence struct {
	// Deadline is the microsecond timestamp of the last scheduled sample.
	Deadline uint32
}

// Next reports whether a sample is due at now and returns the advanced
// cadence if it is. The deadline moves by exactly one period per due check,
// never to now, so late checks are caught up back to back instead of
// stretching the interval.
//
// The comparison uses modular uint32 subtraction, which stays correct when the
// microsecond counter wraps around.
func (c Cadence) Next(now uint32) (Cadence, bool) {
	if now-c.Deadline < PeriodMicros {
		return c, false
	}
	return Cadence{Deadline: c.Deadline + PeriodMicros}, true
}

// Tick is one iteration of the sampling loop without any I/O besides the ADC
// read: when a sample is due it reads the ADC and returns the record to emit.
func Tick(c Cadence, now uint32, adc ADC) (Cadence, Record, bool) {
	next, due := c.Next(now)
	if !due {
		return c, Record{}, false
	}
	return next, NewRecord(now, adc.Get()), true
}
