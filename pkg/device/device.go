package device

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/itohio/goemg/pkg/emg"
	"github.com/itohio/goemg/pkg/metrics"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	// DefaultBaudRate matches the sampler's serial link.
	DefaultBaudRate = emg.BaudRate
	// DefaultBufferSize is the default size for the samples channel buffer.
	// It holds half a second of samples at the fixed rate.
	DefaultBufferSize = emg.SampleRate / 2
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads the sample stream from a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	samples   chan emg.Record
	done      chan struct{}
	mu        sync.RWMutex
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		samples:  make(chan emg.Record, bufSize),
	}
}

// Ports returns a list of available serial ports. USB adapters are described
// by their product name or VID:PID.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(details))
	for _, d := range details {
		result = append(result, Port{
			Name:        d.Name,
			Description: describePort(d),
		})
	}

	return result, nil
}

func describePort(d *enumerator.PortDetails) string {
	switch {
	case d.Product != "":
		return d.Product
	case d.IsUSB:
		return "USB " + d.VID + ":" + d.PID
	default:
		return d.Name
	}
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}
	if d.done != nil {
		return fmt.Errorf("device was closed")
	}

	port, err := serial.Open(d.port, &serial.Mode{
		BaudRate: d.baudRate,
	})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.conn = port
	d.cancel = cancel
	d.done = make(chan struct{})
	d.connected = true
	metrics.Connected.Set(1)

	go func() {
		defer close(d.done)
		defer close(d.samples)
		readRecords(ctx, port, d.samples)
	}()

	return nil
}

// Close closes the port and waits for the reader to finish. The samples
// channel is closed once the reader exits.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	<-d.done
	d.connected = false
	metrics.Connected.Set(0)

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan emg.Record {
	return d.samples
}

// IsConnected returns whether the device is currently connected. A port that
// hit EOF or a read error reports false.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.connected {
		return false
	}
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}
