package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goemg/pkg/device"
	"github.com/itohio/goemg/pkg/meter"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createDisplayTab(state),
		createActivityTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig writes the configuration back to the file it was loaded from.
func saveConfig(state *appState) bool {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}

// restartChain tears down the running measurement chain, rebuilds the meter
// from the current configuration and reconnects if a device was connected.
func restartChain(state *appState) {
	wasConnected := state.device != nil && state.device.IsConnected()
	if wasConnected {
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.device = nil
	}

	state.activityMeter = meter.New(state.cfg)
	registerScopeUpdates(state)

	if wasConnected {
		handleConnect(state)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := device.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
		currentDisplay = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
		},
		OnSubmit: func() {
			if portSelect.Selected == "" {
				return
			}
			selectedPort := portMap[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected
			}

			portChanged := state.cfg.Serial.Port != selectedPort
			state.cfg.Serial.Port = selectedPort
			if !saveConfig(state) {
				return
			}

			if portChanged && !state.useMock {
				restartChain(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createDisplayTab creates the Display configuration tab. The scope window
// size is fixed at startup, changes to it apply on the next launch.
func createDisplayTab(state *appState) *container.TabItem {
	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Display.WindowSeconds))

	maxPointsEntry := widget.NewEntry()
	maxPointsEntry.SetText(strconv.Itoa(state.cfg.Display.MaxPoints))

	averageSamplesEntry := widget.NewEntry()
	averageSamplesEntry.SetText(strconv.Itoa(state.cfg.Display.AverageSamples))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowSecondsEntry},
			{Text: "Max Points", Widget: maxPointsEntry},
			{Text: "Average Samples (0=disabled)", Widget: averageSamplesEntry},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64); err == nil && ws > 0 {
				state.cfg.Display.WindowSeconds = ws
			}
			if mp, err := strconv.Atoi(maxPointsEntry.Text); err == nil && mp > 0 {
				state.cfg.Display.MaxPoints = mp
			}
			if avg, err := strconv.Atoi(averageSamplesEntry.Text); err == nil && avg >= 0 {
				state.cfg.Display.AverageSamples = avg
			}
			if saveConfig(state) {
				restartChain(state)
			}
		},
	}

	return container.NewTabItem("Display", form)
}

// createActivityTab creates the muscle activity detection tab.
func createActivityTab(state *appState) *container.TabItem {
	envelopeWindowEntry := widget.NewEntry()
	envelopeWindowEntry.SetText(state.cfg.Activity.EnvelopeWindow.String())

	thresholdEntry := widget.NewEntry()
	thresholdEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Activity.Threshold))

	minBurstEntry := widget.NewEntry()
	minBurstEntry.SetText(state.cfg.Activity.MinBurstDuration.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Envelope Window", Widget: envelopeWindowEntry},
			{Text: "Threshold (V RMS)", Widget: thresholdEntry},
			{Text: "Min Burst Duration", Widget: minBurstEntry},
		},
		OnSubmit: func() {
			if ew, err := time.ParseDuration(envelopeWindowEntry.Text); err == nil && ew > 0 {
				state.cfg.Activity.EnvelopeWindow = ew
			}
			if th, err := strconv.ParseFloat(thresholdEntry.Text, 64); err == nil {
				state.cfg.Activity.Threshold = th
			}
			if mb, err := time.ParseDuration(minBurstEntry.Text); err == nil {
				state.cfg.Activity.MinBurstDuration = mb
			}
			if saveConfig(state) {
				restartChain(state)
			}
		},
	}

	return container.NewTabItem("Activity", form)
}

// createMockTab creates the simulated sampler configuration tab.
func createMockTab(state *appState) *container.TabItem {
	baselineEntry := widget.NewEntry()
	baselineEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.Baseline))

	noiseLevelEntry := widget.NewEntry()
	noiseLevelEntry.SetText(fmt.Sprintf("%.4f", state.cfg.Mock.NoiseLevel))

	amplitudeEntry := widget.NewEntry()
	amplitudeEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.BurstAmplitude))

	frequencyEntry := widget.NewEntry()
	frequencyEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.BurstFrequency))

	durationEntry := widget.NewEntry()
	durationEntry.SetText(state.cfg.Mock.BurstDuration.String())

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Mock.BurstPeriod.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Baseline (V)", Widget: baselineEntry},
			{Text: "Noise Level (V)", Widget: noiseLevelEntry},
			{Text: "Burst Amplitude (V)", Widget: amplitudeEntry},
			{Text: "Burst Frequency (Hz)", Widget: frequencyEntry},
			{Text: "Burst Duration", Widget: durationEntry},
			{Text: "Burst Period", Widget: periodEntry},
		},
		OnSubmit: func() {
			if b, err := strconv.ParseFloat(baselineEntry.Text, 64); err == nil {
				state.cfg.Mock.Baseline = b
			}
			if nl, err := strconv.ParseFloat(noiseLevelEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseLevel = nl
			}
			if a, err := strconv.ParseFloat(amplitudeEntry.Text, 64); err == nil {
				state.cfg.Mock.BurstAmplitude = a
			}
			if f, err := strconv.ParseFloat(frequencyEntry.Text, 64); err == nil {
				state.cfg.Mock.BurstFrequency = f
			}
			if d, err := time.ParseDuration(durationEntry.Text); err == nil {
				state.cfg.Mock.BurstDuration = d
			}
			if p, err := time.ParseDuration(periodEntry.Text); err == nil {
				state.cfg.Mock.BurstPeriod = p
			}
			if !saveConfig(state) {
				return
			}
			if state.useMock {
				restartChain(state)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
