// Package metrics exposes Prometheus counters for the host receive pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goemg_lines_received_total", Help: "Total non-empty lines read from the device.",
	})
	SamplesParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goemg_samples_parsed_total", Help: "Total sample lines parsed successfully.",
	})
	ParseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goemg_parse_errors_total", Help: "Total lines that were not valid samples.",
	}, []string{"kind"})
	SamplesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goemg_samples_dropped_total", Help: "Samples dropped because the consumer was not keeping up.",
	})
	Connected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "goemg_device_connected", Help: "1 while a device is connected.",
	})
)
