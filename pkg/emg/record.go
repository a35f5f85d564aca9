package emg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

var (
	// ErrMalformedLine is returned when a line is not a timestamp,raw,voltage triple.
	ErrMalformedLine = errors.New("malformed sample line")
	// ErrOutOfRange is returned when a parsed value is outside its domain.
	ErrOutOfRange = errors.New("sample value out of range")
)

// Record is one sample as it appears on the serial link.
type Record struct {
	Timestamp uint32  // Microseconds since start (wraps)
	Raw       uint16  // 10-bit ADC code (0-1023)
	Voltage   float32 // Raw scaled to the reference voltage (0.0-5.0 V)
}

// NewRecord builds a record from a timestamp and an ADC reading, clamping the
// reading to the converter's range.
func NewRecord(timestamp uint32, raw uint16) Record {
	raw = ClampRaw(raw)
	return Record{
		Timestamp: timestamp,
		Raw:       raw,
		Voltage:   Voltage(raw),
	}
}

// ClampRaw limits a reading to [0, MaxCode].
func ClampRaw(raw uint16) uint16 {
	if raw > MaxCode {
		return MaxCode
	}
	return raw
}

// Voltage converts a raw code to volts: raw * (ReferenceVoltage / MaxCode).
func Voltage(raw uint16) float32 {
	v := float32(ClampRaw(raw)) * (ReferenceVoltage / MaxCode)
	return math32.Max(0, math32.Min(v, ReferenceVoltage))
}

// AppendLine appends the CSV form of the record, "timestamp,raw,voltage\n",
// with the voltage printed to three decimals.
func (r Record) AppendLine(b []byte) []byte {
	b = strconv.AppendUint(b, uint64(r.Timestamp), 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(r.Raw), 10)
	b = append(b, ',')
	b = strconv.AppendFloat(b, float64(r.Voltage), 'f', 3, 32)
	return append(b, '\n')
}

// String returns the line without the trailing newline.
func (r Record) String() string {
	b := r.AppendLine(make([]byte, 0, 24))
	return string(b[:len(b)-1])
}

// ParseLine parses a line written by AppendLine.
// Format: time_us,raw,voltage
// Example: 2000000,512,2.502
func ParseLine(line string) (Record, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 3 {
		return Record{}, fmt.Errorf("%w: expected 3 comma-separated values, got %d", ErrMalformedLine, len(parts))
	}

	timestamp, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid timestamp: %v", ErrMalformedLine, err)
	}

	raw, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid raw reading: %v", ErrMalformedLine, err)
	}
	if raw > MaxCode {
		return Record{}, fmt.Errorf("%w: raw reading %d (max %d)", ErrOutOfRange, raw, MaxCode)
	}

	voltage, err := strconv.ParseFloat(parts[2], 32)
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid voltage: %v", ErrMalformedLine, err)
	}
	if voltage < 0 || voltage > ReferenceVoltage {
		return Record{}, fmt.Errorf("%w: voltage %.3f (max %.1f)", ErrOutOfRange, voltage, ReferenceVoltage)
	}

	return Record{
		Timestamp: uint32(timestamp),
		Raw:       uint16(raw),
		Voltage:   float32(voltage),
	}, nil
}
