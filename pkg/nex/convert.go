package nex

import (
	"fmt"
	"math"
)

func checkFrequency(freq float64) error {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFrequency, freq)
	}
	return nil
}

// TicksToSeconds converts a tick count to seconds at freq ticks per second.
func TicksToSeconds(tick int32, freq float64) (float64, error) {
	if err := checkFrequency(freq); err != nil {
		return 0, err
	}
	return float64(tick) / freq, nil
}

// TicksSliceToSeconds converts every tick in ticks.
func TicksSliceToSeconds(ticks []int32, freq float64) ([]float64, error) {
	if err := checkFrequency(freq); err != nil {
		return nil, err
	}
	out := make([]float64, len(ticks))
	for i, t := range ticks {
		out[i] = float64(t) / freq
	}
	return out, nil
}

// SecondsToTicks converts seconds to the nearest tick.
func SecondsToTicks(sec, freq float64) (int32, error) {
	if err := checkFrequency(freq); err != nil {
		return 0, err
	}
	t := math.Round(sec * freq)
	if math.IsNaN(t) || t < math.MinInt32 || t > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v s at %v Hz", ErrTickRange, sec, freq)
	}
	return int32(t), nil
}

// TicksFromSeconds converts every value of secs to ticks.
func TicksFromSeconds(secs []float64, freq float64) ([]int32, error) {
	out := make([]int32, len(secs))
	for i, s := range secs {
		t, err := SecondsToTicks(s, freq)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// RawToPhysical maps a raw A/D value to physical units: raw*scale + offset.
func RawToPhysical(raw int16, scale, offset float64) float64 {
	return float64(raw)*scale + offset
}

// SamplesToPhysical maps every raw sample to physical units.
func SamplesToPhysical(raw []int16, scale, offset float64) []float64 {
	out := make([]float64, len(raw))
	for i, r := range raw {
		out[i] = float64(r)*scale + offset
	}
	return out
}
