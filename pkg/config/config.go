package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the host application configuration. The sampler itself
// has no configuration; these settings only affect how the stream is received
// and displayed.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Display  DisplayConfig  `yaml:"display"`
	Activity ActivityConfig `yaml:"activity"`
	Mock     MockConfig     `yaml:"mock"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
}

// DisplayConfig contains scope display parameters.
type DisplayConfig struct {
	WindowSeconds  float64 `yaml:"window_seconds"`
	MaxPoints      int     `yaml:"max_points"`      // Points drawn per trace after downsampling
	AverageSamples int     `yaml:"average_samples"` // Number of samples to average (0 = disabled, default)
}

// ActivityConfig contains muscle activity detection parameters.
type ActivityConfig struct {
	EnvelopeWindow   time.Duration `yaml:"envelope_window"`    // RMS envelope window
	Threshold        float64       `yaml:"threshold"`          // Envelope level that counts as activity (V RMS)
	MinBurstDuration time.Duration `yaml:"min_burst_duration"` // Shorter bursts are treated as noise
	NotifyEvery      int           `yaml:"notify_every"`       // Samples between update callbacks
}

// MockConfig describes the synthetic EMG signal used by the simulated device.
type MockConfig struct {
	Baseline       float64       `yaml:"baseline"`        // Amplifier output at rest (V)
	NoiseLevel     float64       `yaml:"noise_level"`     // Gaussian noise sigma (V)
	BurstAmplitude float64       `yaml:"burst_amplitude"` // Peak activity amplitude (V)
	BurstFrequency float64       `yaml:"burst_frequency"` // Activity carrier frequency (Hz)
	BurstDuration  time.Duration `yaml:"burst_duration"`  // Length of each contraction
	BurstPeriod    time.Duration `yaml:"burst_period"`    // Time between contraction starts
	Seed           int64         `yaml:"seed"`
}

// MetricsConfig contains the Prometheus endpoint configuration.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9100"; empty disables the endpoint
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyACM0", // "COM3" on Windows
		},
		Display: DisplayConfig{
			WindowSeconds:  5,
			MaxPoints:      1000,
			AverageSamples: 0, // No averaging by default
		},
		Activity: ActivityConfig{
			EnvelopeWindow:   50 * time.Millisecond,
			Threshold:        0.1,
			MinBurstDuration: 100 * time.Millisecond,
			NotifyEvery:      20, // 50 updates per second at the full rate
		},
		Mock: MockConfig{
			Baseline:       2.5,
			NoiseLevel:     0.02,
			BurstAmplitude: 1.5,
			BurstFrequency: 80,
			BurstDuration:  time.Second,
			BurstPeriod:    3 * time.Second,
			Seed:           1,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Window returns the display window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Display.WindowSeconds * float64(time.Second))
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}

	if c.Display.WindowSeconds <= 0 {
		c.Display.WindowSeconds = def.Display.WindowSeconds
	}
	if c.Display.MaxPoints <= 0 {
		c.Display.MaxPoints = def.Display.MaxPoints
	}
	if c.Display.AverageSamples < 0 {
		c.Display.AverageSamples = 0
	}

	if c.Activity.EnvelopeWindow <= 0 {
		c.Activity.EnvelopeWindow = def.Activity.EnvelopeWindow
	}
	if c.Activity.Threshold <= 0 {
		c.Activity.Threshold = def.Activity.Threshold
	}
	if c.Activity.NotifyEvery <= 0 {
		c.Activity.NotifyEvery = def.Activity.NotifyEvery
	}

	if c.Mock.Baseline == 0 {
		c.Mock.Baseline = def.Mock.Baseline
	}
	if c.Mock.BurstFrequency == 0 {
		c.Mock.BurstFrequency = def.Mock.BurstFrequency
	}
	if c.Mock.BurstDuration == 0 {
		c.Mock.BurstDuration = def.Mock.BurstDuration
	}
	if c.Mock.BurstPeriod == 0 {
		c.Mock.BurstPeriod = def.Mock.BurstPeriod
	}
}
