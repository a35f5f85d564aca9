package main

import (
	"machine"

	"github.com/itohio/goemg/pkg/emg"
)

const (
	// ADC configuration
	ADC_REFERENCE_MV = 5000 // AVcc reference in millivolts
	ADC_RESOLUTION   = 10   // ADC resolution in bits (10-bit = 0-1023)

	// machine.ADC.Get returns a 16-bit left-justified value
	ADC_SHIFT = 16 - ADC_RESOLUTION

	// EMG amplifier output
	PIN_ADC = machine.ADC0

	// Serial configuration
	// Format "ts,raw,voltage\n", e.g. "4294967295,1023,5.000\n" = 22 bytes max per line
	// 1000 lines/sec * 22 bytes/line = 22,000 bytes/sec worst case.
	// 115200 baud 8N1 carries 11,520 bytes/sec, so the link saturates once
	// timestamps grow past 5 digits and the output rate is bounded by the UART.
	UART_BAUD_RATE = emg.BaudRate
)
