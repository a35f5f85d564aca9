package meter

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/itohio/goemg/pkg/sample"
	"github.com/stretchr/testify/assert"
)

// TestMeter_GracefulShutdown_NoCallbacksAfterClose tests that meter stops sending
// callbacks after the input channel is closed.
func TestMeter_GracefulShutdown_NoCallbacksAfterClose(t *testing.T) {
	m := New(testConfig())

	var callbackCount atomic.Int32
	m.OnUpdate(func([]sample.Sample, []float64, []Burst) {
		callbackCount.Add(1)
	})

	input := make(chan sample.Sample, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.ProcessSamples(input)
	}()

	for i := 0; i < 3; i++ {
		input <- sample.Sample{
			Elapsed: time.Duration(i) * time.Millisecond,
			Voltage: 2.5,
		}
	}
	close(input)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ProcessSamples did not return after input was closed")
	}
	assert.Equal(t, int32(3), callbackCount.Load())

	// Samples processed after shutdown do not trigger callbacks
	m.processSample(sample.Sample{Elapsed: 3 * time.Millisecond, Voltage: 2.5})
	assert.Equal(t, int32(3), callbackCount.Load())
	assert.Len(t, m.Samples(), 4)

	// Reset re-enables callbacks for a new chain
	m.Reset()
	m.processSample(sample.Sample{Elapsed: 0, Voltage: 2.5})
	assert.Equal(t, int32(4), callbackCount.Load())
}
