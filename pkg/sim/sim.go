// Package sim provides host-side stand-ins for the sampler hardware: a wrapping
// microsecond clock and a synthetic EMG signal source.
package sim

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/itohio/goemg/pkg/config"
	"github.com/itohio/goemg/pkg/emg"
	"github.com/jonboulle/clockwork"
)

var (
	_ emg.Clock  = (*Clock)(nil)
	_ emg.ADC    = (*ADC)(nil)
	_ emg.Waiter = (clockwork.Clock)(nil)
)

// Clock reports microseconds elapsed since its creation, truncated to 32 bits
// the way a hardware micros() counter wraps.
type Clock struct {
	clock clockwork.Clock
	start time.Time
}

// NewClock starts a microsecond counter on clock.
func NewClock(clock clockwork.Clock) *Clock {
	return &Clock{
		clock: clock,
		start: clock.Now(),
	}
}

// Micros returns the wrapped microsecond count.
func (c *Clock) Micros() uint32 {
	return uint32(uint64(c.clock.Since(c.start) / time.Microsecond))
}

// ADC produces a synthetic surface EMG trace: a DC baseline with noise and
// periodic bursts of muscle activity, quantized to 10 bits.
type ADC struct {
	cfg   config.MockConfig
	clock clockwork.Clock
	start time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewADC creates a signal source. A nil cfg uses the default mock settings.
func NewADC(cfg *config.MockConfig, clock clockwork.Clock, seed int64) *ADC {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	return &ADC{
		cfg:   *cfg,
		clock: clock,
		start: clock.Now(),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Get returns the code for the signal at the current clock time.
func (a *ADC) Get() uint16 {
	return Quantize(a.Level(a.clock.Since(a.start)))
}

// Level returns the simulated amplifier output in volts at elapsed.
func (a *ADC) Level(elapsed time.Duration) float64 {
	a.mu.Lock()
	noise := a.rng.NormFloat64()
	burstNoise := a.rng.NormFloat64()
	a.mu.Unlock()

	v := a.cfg.Baseline + noise*a.cfg.NoiseLevel

	if a.inBurst(elapsed) {
		// Muscle activity is wideband; a carrier with random amplitude is close enough.
		carrier := math.Sin(2 * math.Pi * a.cfg.BurstFrequency * elapsed.Seconds())
		v += a.cfg.BurstAmplitude * carrier * math.Abs(burstNoise)
	}

	return v
}

func (a *ADC) inBurst(elapsed time.Duration) bool {
	if a.cfg.BurstPeriod <= 0 || a.cfg.BurstDuration <= 0 {
		return false
	}
	return elapsed%a.cfg.BurstPeriod < a.cfg.BurstDuration
}

// Quantize converts volts to a 10-bit code against the 5 V reference.
func Quantize(v float64) uint16 {
	code := math.Round(v / emg.ReferenceVoltage * emg.MaxCode)
	if code < 0 {
		return 0
	}
	if code > emg.MaxCode {
		return emg.MaxCode
	}
	return uint16(code)
}
