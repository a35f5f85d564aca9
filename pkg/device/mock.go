package device

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/itohio/goemg/pkg/config"
	"github.com/itohio/goemg/pkg/emg"
	"github.com/itohio/goemg/pkg/metrics"
	"github.com/itohio/goemg/pkg/sim"
	"github.com/jonboulle/clockwork"
)

// Mock runs the sampler against a synthetic signal and feeds its line output
// back through the same parser the serial device uses. The startup pauses are
// skipped.
type Mock struct {
	cfg   config.MockConfig
	clock clockwork.Clock

	samples   chan emg.Record
	mu        sync.RWMutex
	cancel    context.CancelFunc
	pr        *io.PipeReader
	readDone  chan struct{}
	writeDone chan struct{}
	connected bool
}

// NewMock creates a new mocked device. A nil cfg uses the default signal and a
// nil clock uses the wall clock.
func NewMock(cfg *config.MockConfig, clock clockwork.Clock) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Mock{
		cfg:     *cfg,
		clock:   clock,
		samples: make(chan emg.Record, DefaultBufferSize),
	}
}

// Connect starts the simulated sampler.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	if m.readDone != nil {
		return fmt.Errorf("device was closed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()

	sampler := emg.NewSampler(
		sim.NewClock(m.clock),
		sim.NewADC(&m.cfg, m.clock, m.cfg.Seed),
		pw,
		emg.NoWait,
	)

	m.cancel = cancel
	m.pr = pr
	m.readDone = make(chan struct{})
	m.writeDone = make(chan struct{})
	m.connected = true
	metrics.Connected.Set(1)

	go func() {
		defer close(m.writeDone)
		defer pw.Close()
		m.runSampler(ctx, sampler)
	}()

	go func() {
		defer close(m.readDone)
		defer close(m.samples)
		readRecords(ctx, pr, m.samples)
	}()

	return nil
}

// runSampler emits the startup banner and then drains due samples once per
// sampling period. Drain catches up when ticks are late.
func (m *Mock) runSampler(ctx context.Context, sampler *emg.Sampler) {
	if err := sampler.Startup(); err != nil {
		log.Printf("Mock sampler startup failed: %v", err)
		return
	}

	ticker := m.clock.NewTicker(time.Duration(emg.PeriodMicros) * time.Microsecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			sampler.Drain()
		}
	}
}

// Close stops the simulated sampler and waits for both goroutines to exit.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	// Unblocks a pending pipe write and the scanner.
	m.pr.CloseWithError(io.ErrClosedPipe)

	<-m.writeDone
	<-m.readDone
	m.connected = false
	metrics.Connected.Set(0)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan emg.Record {
	return m.samples
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}
