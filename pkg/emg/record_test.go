package emg

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoltage(t *testing.T) {
	tests := []struct {
		name string
		raw  uint16
		want string
	}{
		{name: "zero", raw: 0, want: "0.000"},
		{name: "mid-scale", raw: 511, want: "2.498"},
		{name: "just above mid-scale", raw: 512, want: "2.502"},
		{name: "full scale", raw: 1023, want: "5.000"},
		{name: "clamped above full scale", raw: 4095, want: "5.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(0, tt.raw)
			line := string(rec.AppendLine(nil))
			assert.Equal(t, "0,"+strconv.Itoa(int(rec.Raw))+","+tt.want+"\n", line)
			assert.InDelta(t, float64(rec.Raw)*5.0/1023.0, float64(rec.Voltage), 1e-6)
		})
	}
}

func TestVoltage_Range(t *testing.T) {
	for raw := 0; raw <= 0xFFFF; raw++ {
		v := Voltage(uint16(raw))
		if v < 0 || v > ReferenceVoltage {
			t.Fatalf("Voltage(%d) = %f outside [0, %f]", raw, v, ReferenceVoltage)
		}
		if r := ClampRaw(uint16(raw)); r > MaxCode {
			t.Fatalf("ClampRaw(%d) = %d", raw, r)
		}
	}
}

func TestRecord_String(t *testing.T) {
	rec := NewRecord(2000000, 512)
	assert.Equal(t, "2000000,512,2.502", rec.String())

	rec = NewRecord(4294967295, 1023)
	assert.Equal(t, "4294967295,1023,5.000", rec.String())
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Record
		wantErr error
	}{
		{
			name: "valid line",
			line: "2000000,512,2.502",
			want: Record{Timestamp: 2000000, Raw: 512, Voltage: 2.502},
		},
		{
			name: "valid line with CRLF",
			line: "1234567,0,0.000\r\n",
			want: Record{Timestamp: 1234567, Raw: 0, Voltage: 0},
		},
		{
			name: "max values",
			line: "4294967295,1023,5.000",
			want: Record{Timestamp: 4294967295, Raw: 1023, Voltage: 5},
		},
		{
			name:    "greeting",
			line:    Greeting,
			wantErr: ErrMalformedLine,
		},
		{
			name:    "starting message",
			line:    StartingMessage,
			wantErr: ErrMalformedLine,
		},
		{
			name:    "too few fields",
			line:    "2000000,512",
			wantErr: ErrMalformedLine,
		},
		{
			name:    "too many fields",
			line:    "2000000,512,2.502,1",
			wantErr: ErrMalformedLine,
		},
		{
			name:    "non-numeric timestamp",
			line:    "abc,512,2.502",
			wantErr: ErrMalformedLine,
		},
		{
			name:    "timestamp wider than 32 bits",
			line:    "4294967296,512,2.502",
			wantErr: ErrMalformedLine,
		},
		{
			name:    "raw out of range",
			line:    "2000000,1024,5.000",
			wantErr: ErrOutOfRange,
		},
		{
			name:    "voltage out of range",
			line:    "2000000,1023,5.100",
			wantErr: ErrOutOfRange,
		},
		{
			name:    "negative voltage",
			line:    "2000000,0,-0.001",
			wantErr: ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Timestamp, got.Timestamp)
			assert.Equal(t, tt.want.Raw, got.Raw)
			assert.InDelta(t, tt.want.Voltage, got.Voltage, 1e-6)
		})
	}
}

func TestParseLine_RoundTrip(t *testing.T) {
	for _, raw := range []uint16{0, 1, 511, 512, 1000, 1023} {
		rec := NewRecord(uint32(raw)*1000, raw)
		got, err := ParseLine(rec.String())
		require.NoError(t, err)
		assert.Equal(t, rec.Timestamp, got.Timestamp)
		assert.Equal(t, rec.Raw, got.Raw)
		assert.InDelta(t, rec.Voltage, got.Voltage, 0.0005)
	}
}
