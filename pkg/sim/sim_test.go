package sim

import (
	"math"
	"testing"
	"time"

	"github.com/itohio/goemg/pkg/config"
	"github.com/itohio/goemg/pkg/emg"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestClock_Micros(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := NewClock(fc)

	assert.Equal(t, uint32(0), c.Micros())

	fc.Advance(1500 * time.Microsecond)
	assert.Equal(t, uint32(1500), c.Micros())

	fc.Advance(2 * time.Second)
	assert.Equal(t, uint32(2001500), c.Micros())
}

func TestClock_Wraps(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := NewClock(fc)

	// 2^32 µs is about 71.6 minutes.
	fc.Advance(time.Duration(math.MaxUint32+1+250) * time.Microsecond)
	assert.Equal(t, uint32(250), c.Micros())
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want uint16
	}{
		{name: "zero", v: 0, want: 0},
		{name: "negative clamps", v: -1, want: 0},
		{name: "full scale", v: 5, want: 1023},
		{name: "over range clamps", v: 7.5, want: 1023},
		{name: "mid-scale", v: 2.5, want: 512}, // 511.5 rounds up
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quantize(tt.v))
		})
	}
}

func TestADC_QuietBaseline(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cfg := config.MockConfig{
		Baseline: 2.5,
	}
	adc := NewADC(&cfg, fc, 1)

	for i := 0; i < 10; i++ {
		assert.Equal(t, uint16(512), adc.Get())
		fc.Advance(time.Millisecond)
	}
}

func TestADC_Bursts(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cfg := config.MockConfig{
		Baseline:       2.5,
		BurstAmplitude: 2.0,
		BurstFrequency: 80,
		BurstDuration:  100 * time.Millisecond,
		BurstPeriod:    time.Second,
	}
	adc := NewADC(&cfg, fc, 7)

	assert.True(t, adc.inBurst(50*time.Millisecond))
	assert.False(t, adc.inBurst(500*time.Millisecond))
	assert.True(t, adc.inBurst(1050*time.Millisecond))

	// Outside a burst the trace sits at the baseline.
	assert.Equal(t, 2.5, adc.Level(500*time.Millisecond))

	// Inside a burst it deviates and stays within the ADC range.
	deviated := false
	for i := 0; i < 100; i++ {
		raw := Quantize(adc.Level(time.Duration(i) * time.Millisecond))
		assert.LessOrEqual(t, raw, uint16(emg.MaxCode))
		if raw != 512 {
			deviated = true
		}
	}
	assert.True(t, deviated, "burst should move the signal away from the baseline")
}

func TestADC_DefaultConfig(t *testing.T) {
	adc := NewADC(nil, clockwork.NewFakeClock(), 1)
	assert.Equal(t, config.Default().Mock, adc.cfg)
}
