package main

import (
	"fmt"

	"github.com/itohio/goemg/pkg/meter"
	"github.com/itohio/goemg/pkg/sample"
)

// status is the readout shown next to the toolbar buttons.
type status struct {
	valid    bool
	raw      uint16
	voltage  float64
	envelope float64
	bursts   int
	active   bool
}

// statusFromWindow summarizes the latest meter window.
func statusFromWindow(samples []sample.Sample, envelope []float64, bursts []meter.Burst) status {
	if len(samples) == 0 {
		return status{}
	}
	last := samples[len(samples)-1]
	st := status{
		valid:   true,
		raw:     last.Raw,
		voltage: last.Voltage,
		bursts:  len(bursts),
	}
	if len(envelope) == len(samples) {
		st.envelope = envelope[len(envelope)-1]
	}
	if len(bursts) > 0 {
		b := bursts[len(bursts)-1]
		st.active = b.EndIndex >= len(samples)-1
	}
	return st
}

func formatStatus(st status) string {
	if !st.valid {
		return "raw: ---  V: -.---  RMS: -.---"
	}
	s := fmt.Sprintf("raw: %4d  V: %.3f  RMS: %.3f  bursts: %d", st.raw, st.voltage, st.envelope, st.bursts)
	if st.active {
		s += "  ACTIVE"
	}
	return s
}
