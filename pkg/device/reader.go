package device

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/itohio/goemg/pkg/emg"
	"github.com/itohio/goemg/pkg/metrics"
)

// readRecords scans lines from r, parses them and sends records to out until
// r is exhausted or ctx is cancelled. Startup banner lines are logged and
// skipped. When out is full the record is dropped.
func readRecords(ctx context.Context, r io.Reader, out chan<- emg.Record) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		metrics.LinesReceived.Inc()

		rec, err := emg.ParseLine(line)
		if err != nil {
			switch {
			case isBanner(line):
				metrics.ParseErrors.WithLabelValues("banner").Inc()
				log.Printf("Device: %s", line)
			case errors.Is(err, emg.ErrOutOfRange):
				metrics.ParseErrors.WithLabelValues("range").Inc()
				log.Printf("Failed to parse line '%s': %v", line, err)
			default:
				metrics.ParseErrors.WithLabelValues("malformed").Inc()
				log.Printf("Failed to parse line '%s': %v", line, err)
			}
			continue
		}
		metrics.SamplesParsed.Inc()

		select {
		case out <- rec:
		case <-ctx.Done():
			return
		default:
			metrics.SamplesDropped.Inc()
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Printf("Error reading from device: %v", err)
	}
}

func isBanner(line string) bool {
	return line == emg.Greeting || line == emg.StartingMessage
}
