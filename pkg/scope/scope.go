package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goemg/pkg/config"
	"github.com/itohio/goemg/pkg/emg"
	"github.com/itohio/goemg/pkg/meter"
	"github.com/itohio/goemg/pkg/sample"
)

// ScopeWidget is a custom Fyne widget that displays the EMG trace, its RMS
// envelope and detected bursts oscilloscope-style.
type ScopeWidget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu       sync.RWMutex
	samples  []sample.Sample
	envelope []float64
	bursts   []meter.Burst

	// Display buffers (reused for downsampling)
	displaySamples  []sample.Sample
	displayEnvelope []sample.Sample

	// Y is fixed to the ADC range, X follows the newest sample
	yMin, yMax float64
	xMin, xMax time.Duration

	window           time.Duration
	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		displaySamples:   make([]sample.Sample, 0, cfg.Display.MaxPoints),
		displayEnvelope:  make([]sample.Sample, 0, cfg.Display.MaxPoints),
		yMin:             0,
		yMax:             emg.ReferenceVoltage,
		window:           cfg.Window(),
		maxDisplayPoints: cfg.Display.MaxPoints,
	}
	s.xMax = s.window
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData updates the widget with new measurement data.
// This should be called from the meter callback using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample, envelope []float64, bursts []meter.Burst) {
	s.mu.Lock()

	s.samples = samples
	s.envelope = envelope
	s.bursts = bursts

	s.displaySamples = sample.DownsampleSamples(s.displaySamples, samples, s.maxDisplayPoints)
	s.displayEnvelope = sample.DownsampleSamples(s.displayEnvelope, envelopeSamples(samples, envelope), s.maxDisplayPoints)
	s.xMin, s.xMax = timeRange(samples, s.window)

	s.mu.Unlock()

	// Refresh outside the lock, the renderer takes a read lock
	s.Refresh()
}

// envelopeSamples pairs envelope values with their sample times so both traces
// go through the same downsampling.
func envelopeSamples(samples []sample.Sample, envelope []float64) []sample.Sample {
	n := min(len(samples), len(envelope))
	out := make([]sample.Sample, n)
	for i := 0; i < n; i++ {
		out[i] = sample.Sample{Elapsed: samples[i].Elapsed, Voltage: envelope[i]}
	}
	return out
}

// timeRange returns a window-wide X range ending at the newest sample. While
// less than a window has been received the range starts at the first sample.
func timeRange(samples []sample.Sample, window time.Duration) (time.Duration, time.Duration) {
	if len(samples) == 0 {
		return 0, window
	}
	first := samples[0].Elapsed
	last := samples[len(samples)-1].Elapsed
	if last-first < window {
		return first, first + window
	}
	return last - window, last
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
