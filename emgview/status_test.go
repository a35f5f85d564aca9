package main

import (
	"testing"
	"time"

	"github.com/itohio/goemg/pkg/meter"
	"github.com/itohio/goemg/pkg/sample"
	"github.com/stretchr/testify/assert"
)

func TestStatusFromWindow(t *testing.T) {
	samples := []sample.Sample{
		{Elapsed: 0, Raw: 511, Voltage: 2.498},
		{Elapsed: time.Millisecond, Raw: 600, Voltage: 2.933},
		{Elapsed: 2 * time.Millisecond, Raw: 700, Voltage: 3.421},
	}
	envelope := []float64{0, 0.2, 0.4}

	tests := []struct {
		name   string
		bursts []meter.Burst
		want   status
	}{
		{
			name: "idle",
			want: status{valid: true, raw: 700, voltage: 3.421, envelope: 0.4},
		},
		{
			name:   "burst still running",
			bursts: []meter.Burst{{StartIndex: 1, EndIndex: 2}},
			want:   status{valid: true, raw: 700, voltage: 3.421, envelope: 0.4, bursts: 1, active: true},
		},
		{
			name:   "burst finished",
			bursts: []meter.Burst{{StartIndex: 0, EndIndex: 1}},
			want:   status{valid: true, raw: 700, voltage: 3.421, envelope: 0.4, bursts: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromWindow(samples, envelope, tt.bursts))
		})
	}
}

func TestStatusFromWindow_Empty(t *testing.T) {
	st := statusFromWindow(nil, nil, nil)
	assert.False(t, st.valid)
	assert.Equal(t, "raw: ---  V: -.---  RMS: -.---", formatStatus(st))
}

func TestFormatStatus(t *testing.T) {
	st := status{valid: true, raw: 512, voltage: 2.502, envelope: 0.25, bursts: 3, active: true}
	assert.Equal(t, "raw:  512  V: 2.502  RMS: 0.250  bursts: 3  ACTIVE", formatStatus(st))

	st.active = false
	assert.Equal(t, "raw:  512  V: 2.502  RMS: 0.250  bursts: 3", formatStatus(st))
}
