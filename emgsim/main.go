package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/itohio/goemg/pkg/config"
	"github.com/itohio/goemg/pkg/emg"
	"github.com/itohio/goemg/pkg/sim"
	"github.com/jonboulle/clockwork"
	"go.bug.st/serial"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port to write to (e.g., /dev/ttyUSB0); stdout when empty")
		configFlag = flag.String("config", "config.yaml", "Configuration file path (mock section)")
		fastFlag   = flag.Bool("fast", false, "Skip the startup pauses")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	out, err := openOutput(*portFlag)
	if err != nil {
		log.Fatalf("Failed to open output: %v", err)
	}
	defer out.Close()

	clock := clockwork.NewRealClock()
	adc := sim.NewADC(&cfg.Mock, clock, cfg.Mock.Seed)

	var wait emg.Waiter = clock
	if *fastFlag {
		wait = emg.NoWait
	}

	sampler := emg.NewSampler(sim.NewClock(clock), adc, out, wait)
	sampler.OnWriteError = func(err error) {
		log.Printf("Write error: %v", err)
	}

	if err := sampler.Startup(); err != nil {
		log.Fatalf("Failed to write startup banner: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sampler.Run(ctx)
}

// openOutput opens the named serial port at the link baud rate, or returns
// stdout when name is empty.
func openOutput(name string) (io.WriteCloser, error) {
	if name == "" {
		return nopCloser{os.Stdout}, nil
	}
	return serial.Open(name, &serial.Mode{BaudRate: emg.BaudRate})
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
