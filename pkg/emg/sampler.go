package emg

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Clock is a free-running microsecond counter that wraps at 32 bits.
type Clock interface {
	Micros() uint32
}

// ADC reads the sampled channel. Readings above MaxCode are clamped.
type ADC interface {
	Get() uint16
}

// Waiter blocks for a fixed duration. It is used for the startup pauses only.
type Waiter interface {
	Sleep(d time.Duration)
}

// WaitFunc adapts a function to Waiter.
type WaitFunc func(d time.Duration)

// Sleep calls f(d).
func (f WaitFunc) Sleep(d time.Duration) { f(d) }

// NoWait skips the startup pauses.
var NoWait = WaitFunc(func(time.Duration) {})

// Sampler runs the acquisition loop: a startup banner followed by one line per
// due sample written to out.
type Sampler struct {
	clock Clock
	adc   ADC
	out   io.Writer
	wait  Waiter

	cadence Cadence
	buf     []byte

	// OnWriteError is called when writing a sample line fails. The loop keeps
	// running regardless.
	OnWriteError func(err error)
}

// NewSampler creates a sampler with its deadline counter at zero.
func NewSampler(clock Clock, adc ADC, out io.Writer, wait Waiter) *Sampler {
	if wait == nil {
		wait = NoWait
	}
	return &Sampler{
		clock: clock,
		adc:   adc,
		out:   out,
		wait:  wait,
		buf:   make([]byte, 0, 32),
	}
}

// Cadence returns the current deadline counter.
func (s *Sampler) Cadence() Cadence {
	return s.cadence
}

// Startup writes the greeting, pauses, writes the starting message and pauses
// again. Nothing is written during the pauses.
func (s *Sampler) Startup() error {
	if err := s.println(Greeting); err != nil {
		return fmt.Errorf("failed to write greeting: %w", err)
	}
	s.wait.Sleep(StartupDelay)

	if err := s.println(StartingMessage); err != nil {
		return fmt.Errorf("failed to write starting message: %w", err)
	}
	s.wait.Sleep(StartupDelay)

	return nil
}

// Poll performs one due check. If a sample was due it is written to the
// output and returned.
func (s *Sampler) Poll() (Record, bool) {
	next, rec, due := Tick(s.cadence, s.clock.Micros(), s.adc)
	if !due {
		return Record{}, false
	}
	s.cadence = next

	s.buf = rec.AppendLine(s.buf[:0])
	if _, err := s.out.Write(s.buf); err != nil && s.OnWriteError != nil {
		s.OnWriteError(err)
	}
	return rec, true
}

// Drain polls until no sample is due and returns how many were emitted.
func (s *Sampler) Drain() int {
	n := 0
	for {
		if _, ok := s.Poll(); !ok {
			return n
		}
		n++
	}
}

// Run busy-polls until ctx is cancelled. On the device ctx is never cancelled.
func (s *Sampler) Run(ctx context.Context) {
	done := ctx.Done()
	for {
		select {
		case <-done:
			return
		default:
			s.Poll()
		}
	}
}

func (s *Sampler) println(line string) error {
	s.buf = append(append(s.buf[:0], line...), '\n')
	_, err := s.out.Write(s.buf)
	return err
}
