package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{
			Elapsed: time.Duration(i) * time.Millisecond,
			Raw:     uint16(i),
			Voltage: float64(i) * 0.01,
		}
	}
	return samples
}

func TestDownsampleSamples_NoDownsampling(t *testing.T) {
	samples := ramp(3)

	result := DownsampleSamples(nil, samples, 10)
	assert.Equal(t, samples, result)

	dst := make([]Sample, 0, 10)
	result = DownsampleSamples(dst, samples, 10)
	assert.Equal(t, samples, result)
	assert.Equal(t, cap(dst), cap(result), "should reuse dst")
}

func TestDownsampleSamples_MinMaxBuckets(t *testing.T) {
	samples := ramp(100)

	dst := make([]Sample, 0, 20)
	result := DownsampleSamples(dst, samples, 10)
	require.Len(t, result, 10)
	assert.Equal(t, cap(dst), cap(result), "should reuse dst")

	// Five buckets of 20; on a ramp each keeps its first and last sample.
	want := []int{0, 19, 20, 39, 40, 59, 60, 79, 80, 99}
	for i, idx := range want {
		assert.Equal(t, samples[idx], result[i], "point %d", i)
	}
}

func TestDownsampleSamples_KeepsSpikes(t *testing.T) {
	samples := make([]Sample, 1000)
	for i := range samples {
		samples[i] = Sample{Elapsed: time.Duration(i) * time.Millisecond, Raw: 512, Voltage: 2.502}
	}
	samples[437] = Sample{Elapsed: 437 * time.Millisecond, Raw: 1023, Voltage: 5}
	samples[812] = Sample{Elapsed: 812 * time.Millisecond, Raw: 0, Voltage: 0}

	result := DownsampleSamples(nil, samples, 20)
	require.LessOrEqual(t, len(result), 20)
	assert.Contains(t, result, samples[437])
	assert.Contains(t, result, samples[812])

	for i := 1; i < len(result); i++ {
		assert.Greater(t, result[i].Elapsed, result[i-1].Elapsed)
	}
}

func TestDownsampleSamples_SmallDst(t *testing.T) {
	samples := ramp(50)
	result := DownsampleSamples(make([]Sample, 0, 2), samples, 5)
	assert.Len(t, result, 4)

	result = DownsampleSamples(make([]Sample, 0, 2), samples[:3], 5)
	assert.Len(t, result, 3)

	assert.Empty(t, DownsampleSamples(nil, nil, 5))
}
