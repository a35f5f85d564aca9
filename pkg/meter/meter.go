package meter

import (
	"math"
	"sync"
	"time"

	"github.com/itohio/goemg/pkg/config"
	"github.com/itohio/goemg/pkg/sample"
)

var _ ActivityMeter = (*Meter)(nil)

// Burst is a detected period of muscle activity.
type Burst struct {
	StartIndex int           // Start sample index in buffer
	EndIndex   int           // End sample index in buffer (updated while the burst continues)
	Start      time.Duration // Start time
	End        time.Duration // End time (updated while the burst continues)
	Peak       float64       // Highest envelope value seen during the burst (V RMS)
}

// Duration returns the length of the burst.
func (b Burst) Duration() time.Duration {
	return b.End - b.Start
}

// UpdateFunc receives the current window. Slices are copies owned by the callee.
type UpdateFunc func(samples []sample.Sample, envelope []float64, bursts []Burst)

// ActivityMeter processes samples, maintains a time window and detects bursts.
type ActivityMeter interface {
	ProcessSamples(input <-chan sample.Sample)
	Samples() []sample.Sample // Current window (FIFO, ordered first to last)
	Envelope() []float64      // RMS envelope, one value per sample in Samples
	Bursts() []Burst          // Bursts within the window
	OnUpdate(UpdateFunc)      // Register callback for updates
}

// Meter implements ActivityMeter.
//
// samples and envelope are FIFO buffers trimmed by time, not by count, and
// always have equal length: envelope[i] is the RMS deviation from the local
// mean over the EnvelopeWindow ending at samples[i].
type Meter struct {
	samples  []sample.Sample
	envelope []float64
	bursts   []Burst

	active   bool  // Envelope is currently above threshold
	current  Burst // Burst being tracked while active
	recorded bool  // current has reached the minimum duration and is in bursts

	mu sync.RWMutex

	callbacks []UpdateFunc
	cbMu      sync.RWMutex

	windowDuration   time.Duration
	envelopeWindow   time.Duration
	threshold        float64
	minBurstDuration time.Duration
	notifyEvery      int
	pending          int

	// Set when the input channel closes, prevents further callbacks
	shutdown bool
}

// New creates a new activity meter.
func New(cfg *config.Config) *Meter {
	notifyEvery := cfg.Activity.NotifyEvery
	if notifyEvery <= 0 {
		notifyEvery = 1
	}

	return &Meter{
		samples:          make([]sample.Sample, 0),
		envelope:         make([]float64, 0),
		bursts:           make([]Burst, 0),
		windowDuration:   cfg.Window(),
		envelopeWindow:   cfg.Activity.EnvelopeWindow,
		threshold:        cfg.Activity.Threshold,
		minBurstDuration: cfg.Activity.MinBurstDuration,
		notifyEvery:      notifyEvery,
	}
}

// ProcessSamples consumes the input channel until it is closed.
func (m *Meter) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		m.processSample(s)
	}

	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// processSample adds a sample, trims the window, updates the envelope and
// bursts, and notifies callbacks every notifyEvery samples.
func (m *Meter) processSample(s sample.Sample) {
	m.mu.Lock()

	m.samples = append(m.samples, s)
	m.trimWindow(s.Elapsed - m.windowDuration)

	env := m.rms(s.Elapsed - m.envelopeWindow)
	m.envelope = append(m.envelope, env)
	m.updateBursts(env)

	m.pending++
	shouldNotify := !m.shutdown && m.pending >= m.notifyEvery
	if shouldNotify {
		m.pending = 0
	}

	m.mu.Unlock()

	if shouldNotify {
		m.notifyCallbacks()
	}
}

// trimWindow drops samples at or before cutoff and shifts burst indices.
func (m *Meter) trimWindow(cutoff time.Duration) {
	cutoffIndex := 0
	for cutoffIndex < len(m.samples)-1 && m.samples[cutoffIndex].Elapsed <= cutoff {
		cutoffIndex++
	}
	if cutoffIndex == 0 {
		return
	}

	m.samples = m.samples[cutoffIndex:]
	if cutoffIndex <= len(m.envelope) {
		m.envelope = m.envelope[cutoffIndex:]
	} else {
		m.envelope = m.envelope[:0]
	}

	valid := m.bursts[:0]
	for _, b := range m.bursts {
		b.StartIndex -= cutoffIndex
		b.EndIndex -= cutoffIndex
		if b.EndIndex < 0 {
			continue
		}
		if b.StartIndex < 0 {
			b.StartIndex = 0
		}
		valid = append(valid, b)
	}
	m.bursts = valid

	m.current.StartIndex -= cutoffIndex
	m.current.EndIndex -= cutoffIndex
	if m.current.StartIndex < 0 {
		m.current.StartIndex = 0
	}
}

// rms computes the standard deviation of the samples newer than since.
func (m *Meter) rms(since time.Duration) float64 {
	var sum, sumSq float64
	n := 0
	for i := len(m.samples) - 1; i >= 0; i-- {
		s := m.samples[i]
		if n > 0 && s.Elapsed <= since {
			break
		}
		sum += s.Voltage
		sumSq += s.Voltage * s.Voltage
		n++
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// updateBursts extends or starts a burst when the latest envelope value is
// above threshold. A burst is published once it lasts minBurstDuration.
func (m *Meter) updateBursts(env float64) {
	lastIdx := len(m.samples) - 1
	now := m.samples[lastIdx].Elapsed

	if env <= m.threshold {
		m.active = false
		return
	}

	if !m.active {
		m.active = true
		m.recorded = false
		m.current = Burst{
			StartIndex: lastIdx,
			EndIndex:   lastIdx,
			Start:      now,
			End:        now,
			Peak:       env,
		}
	} else {
		m.current.EndIndex = lastIdx
		m.current.End = now
		if env > m.current.Peak {
			m.current.Peak = env
		}
	}

	if m.current.Duration() < m.minBurstDuration {
		return
	}
	if m.recorded && len(m.bursts) > 0 {
		m.bursts[len(m.bursts)-1] = m.current
		return
	}
	m.bursts = append(m.bursts, m.current)
	m.recorded = true
}

// Samples returns a copy of the current samples buffer.
func (m *Meter) Samples() []sample.Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sample.Sample, len(m.samples))
	copy(result, m.samples)
	return result
}

// Envelope returns a copy of the current envelope buffer.
func (m *Meter) Envelope() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]float64, len(m.envelope))
	copy(result, m.envelope)
	return result
}

// Bursts returns a copy of the detected bursts.
func (m *Meter) Bursts() []Burst {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Burst, len(m.bursts))
	copy(result, m.bursts)
	return result
}

// OnUpdate registers a callback. The callback should return quickly.
func (m *Meter) OnUpdate(callback UpdateFunc) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// Reset clears the window and re-enables callbacks. It should be called before
// starting a new measurement chain.
func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = m.samples[:0]
	m.envelope = m.envelope[:0]
	m.bursts = m.bursts[:0]
	m.active = false
	m.recorded = false
	m.pending = 0
	m.shutdown = false
}

// notifyCallbacks copies the window under the read lock and invokes the
// callbacks without holding any lock.
func (m *Meter) notifyCallbacks() {
	samples := m.Samples()
	envelope := m.Envelope()
	bursts := m.Bursts()

	m.cbMu.RLock()
	callbacks := make([]UpdateFunc, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samples, envelope, bursts)
		}
	}
}
