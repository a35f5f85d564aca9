//go:generate tinygo flash -target=arduino

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/goemg/pkg/emg"
)

// adc10 reads the EMG channel as a 10-bit code.
type adc10 struct {
	machine.ADC
}

func (a adc10) Get() uint16 {
	return a.ADC.Get() >> ADC_SHIFT
}

// microClock counts microseconds since boot, wrapping at 32 bits.
type microClock struct {
	start time.Time
}

func (c microClock) Micros() uint32 {
	return uint32(time.Since(c.start).Microseconds())
}

func main() {
	clock := microClock{start: time.Now()}

	machine.InitADC()
	PIN_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	adc := adc10{machine.ADC{Pin: PIN_ADC}}
	adc.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	sampler := emg.NewSampler(clock, adc, uart, emg.WaitFunc(time.Sleep))

	// UART writes do not fail on the device
	_ = sampler.Startup()

	sampler.Run(context.Background())
}
