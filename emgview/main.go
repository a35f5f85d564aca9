package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goemg/pkg/config"
	"github.com/itohio/goemg/pkg/device"
	"github.com/itohio/goemg/pkg/emg"
	"github.com/itohio/goemg/pkg/meter"
	"github.com/itohio/goemg/pkg/sample"
	"github.com/itohio/goemg/pkg/scope"
)

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag           = flag.Bool("mock", false, "Use simulated sampler instead of serial port")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of samples to average (0 = disabled, overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *averageSamplesFlag >= 0 {
		cfg.Display.AverageSamples = *averageSamplesFlag
	}

	if cfg.Metrics.Listen != "" {
		go serveMetrics(cfg.Metrics.Listen)
	}

	application := app.NewWithID("com.itohio.goemg")

	window := application.NewWindow("EMG Viewer")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:           cfg,
		configPath:    *configFlag,
		activityMeter: meter.New(cfg),
		window:        window,
		useMock:       *mockFlag,
	}

	toolbar := createToolbar(state)

	state.scopeWidget = scope.New(cfg)
	registerScopeUpdates(state)

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		state.scopeWidget,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeMeasurementChain(state.chain)
	})
	window.ShowAndRun()
}

// measurementChain tracks the components of the measurement chain for graceful shutdown.
type measurementChain struct {
	device         device.Device
	samplesStream  <-chan sample.Sample
	meterGoroutine chan struct{} // Closed when meter goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg           *config.Config
	configPath    string
	device        device.Device
	activityMeter *meter.Meter
	scopeWidget   *scope.ScopeWidget
	window        fyne.Window
	connectBtn    *widget.Button
	statusLabel   *widget.Label
	useMock       bool
	chain         *measurementChain // Current measurement chain (nil if not connected)

	// Throttling for scope updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect and Settings
// buttons and a live status readout.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.statusLabel = widget.NewLabel(formatStatus(status{}))

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn), // left
		state.statusLabel,                          // right
		nil,                                        // center (spacer)
	)
}

// closeMeasurementChain gracefully closes the measurement chain.
// Closing the device closes its samples channel, which drains the converters
// and finally ends the meter goroutine.
func closeMeasurementChain(chain *measurementChain) {
	if chain == nil {
		return
	}

	if chain.device != nil {
		chain.device.Close()
	}

	if chain.meterGoroutine != nil {
		<-chain.meterGoroutine
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.device = nil
		state.statusLabel.SetText(formatStatus(status{}))
		if state.useMock {
			fmt.Println("Disconnected from simulated sampler")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	// The previous port may have dropped on its own
	closeMeasurementChain(state.chain)
	state.chain = nil

	var dev device.Device
	if state.useMock {
		dev = device.NewMock(&state.cfg.Mock, nil)
		fmt.Println("Using simulated sampler")
	} else {
		dev = device.New(state.cfg.Serial.Port, device.DefaultBaudRate, device.DefaultBufferSize)
	}

	if err := dev.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated sampler: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = dev
	if state.useMock {
		fmt.Println("Connected to simulated sampler")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	state.activityMeter.Reset()

	samplesStream := buildPipeline(state.cfg, dev.Samples())

	m := state.activityMeter
	meterDone := make(chan struct{})
	go func() {
		defer close(meterDone)
		m.ProcessSamples(samplesStream)
	}()

	state.chain = &measurementChain{
		device:         dev,
		samplesStream:  samplesStream,
		meterGoroutine: meterDone,
	}
}

// buildPipeline chains the converter stages: records are always converted,
// averaging is added when average_samples is positive.
func buildPipeline(cfg *config.Config, records <-chan emg.Record) <-chan sample.Sample {
	stream := sample.NewConverter(500)(records)
	if cfg.Display.AverageSamples > 0 {
		stream = sample.NewAveragingConverter(cfg.Display.AverageSamples, 500)(stream)
	}
	return stream
}

// registerScopeUpdates forwards meter updates to the scope and status label,
// throttled to ~60 FPS to keep the UI responsive.
func registerScopeUpdates(state *appState) {
	const updateInterval = 16 * time.Millisecond
	state.activityMeter.OnUpdate(func(samples []sample.Sample, envelope []float64, bursts []meter.Burst) {
		state.updateMu.Lock()
		now := time.Now()
		if now.Sub(state.lastUpdateTime) < updateInterval {
			state.updateMu.Unlock()
			return
		}
		state.lastUpdateTime = now
		state.updateMu.Unlock()

		st := statusFromWindow(samples, envelope, bursts)
		fyne.Do(func() {
			state.scopeWidget.UpdateData(samples, envelope, bursts)
			state.statusLabel.SetText(formatStatus(st))
		})
	})
}
