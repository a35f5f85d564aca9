package emg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	now uint32
}

func (c *manualClock) Micros() uint32 { return c.now }

type countingADC struct {
	reads int
	value uint16
}

func (a *countingADC) Get() uint16 {
	a.reads++
	return a.value
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("link down") }

func TestSampler_Startup(t *testing.T) {
	var out bytes.Buffer
	var pauses []time.Duration
	var seenDuringPause []string

	wait := WaitFunc(func(d time.Duration) {
		pauses = append(pauses, d)
		seenDuringPause = append(seenDuringPause, out.String())
	})

	s := NewSampler(&manualClock{}, &countingADC{}, &out, wait)
	require.NoError(t, s.Startup())

	assert.Equal(t, []time.Duration{15 * time.Second, 15 * time.Second}, pauses)
	assert.Equal(t, "Hello World\n", seenDuringPause[0])
	assert.Equal(t, "Hello World\nStarting in 15 Seconds\n", seenDuringPause[1])
	assert.Equal(t, "Hello World\nStarting in 15 Seconds\n", out.String(), "nothing is written after the last pause")
}

func TestSampler_StartupWriteError(t *testing.T) {
	s := NewSampler(&manualClock{}, &countingADC{}, failingWriter{}, nil)
	err := s.Startup()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "greeting")
}

func TestSampler_Poll(t *testing.T) {
	var out bytes.Buffer
	clock := &manualClock{}
	adc := &countingADC{value: 512}
	s := NewSampler(clock, adc, &out, NoWait)

	clock.now = 999
	_, ok := s.Poll()
	assert.False(t, ok)
	assert.Zero(t, adc.reads, "ADC is not read when no sample is due")
	assert.Empty(t, out.String())

	clock.now = 2000000
	rec, ok := s.Poll()
	require.True(t, ok)
	assert.Equal(t, uint32(2000000), rec.Timestamp)
	assert.Equal(t, "2000000,512,2.502\n", out.String())
	assert.Equal(t, uint32(1000), s.Cadence().Deadline)
}

func TestSampler_DrainCatchesUp(t *testing.T) {
	var out bytes.Buffer
	clock := &manualClock{}
	s := NewSampler(clock, &countingADC{value: 0}, &out, NoWait)

	clock.now = 2500
	assert.Equal(t, 2, s.Drain())
	assert.Equal(t, uint32(2000), s.Cadence().Deadline)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal(t, []string{"2500,0,0.000", "2500,0,0.000"}, lines)

	clock.now = 3000
	assert.Equal(t, 1, s.Drain())
	assert.Equal(t, 0, s.Drain())
}

func TestSampler_WriteErrorDoesNotStopSampling(t *testing.T) {
	clock := &manualClock{now: 1000}
	s := NewSampler(clock, &countingADC{value: 7}, failingWriter{}, NoWait)

	var errs []error
	s.OnWriteError = func(err error) { errs = append(errs, err) }

	_, ok := s.Poll()
	assert.True(t, ok)
	clock.now = 2000
	_, ok = s.Poll()
	assert.True(t, ok)
	assert.Len(t, errs, 2)
	assert.Equal(t, uint32(2000), s.Cadence().Deadline)
}

func TestSampler_RunStopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	s := NewSampler(&manualClock{}, &countingADC{}, &out, NoWait)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Empty(t, out.String())
}
