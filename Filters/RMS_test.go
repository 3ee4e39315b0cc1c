package Filters

import (
	"math"
	"testing"
)

func TestRMS_ZeroOnlyForSilence(t *testing.T) {
	if got := RMS(make([]float32, 128)); got != 0 {
		t.Errorf("all-zero block: expected 0, got %v", got)
	}
	if got := RMS(nil); got != 0 {
		t.Errorf("empty block: expected 0, got %v", got)
	}

	block := make([]float32, 128)
	block[77] = -1
	if got := RMS(block); got <= 0 {
		t.Errorf("single non-zero sample should give positive RMS, got %v", got)
	}
}

func TestRMS_NonNegative(t *testing.T) {
	block := make([]float32, 64)
	for i := range block {
		block[i] = -float32(i) * 100
	}
	if got := RMS(block); got < 0 {
		t.Errorf("RMS must be non-negative, got %v", got)
	}
}

func TestRMS_Sine(t *testing.T) {
	// 整数个周期的正弦波 RMS = A / sqrt(2)
	amp := 8000.0
	block := make([]float32, 128)
	for i := range block {
		block[i] = float32(amp * math.Sin(2*math.Pi*4*float64(i)/128))
	}
	want := amp / math.Sqrt2
	got := float64(RMS(block))
	if math.Abs(got-want) > 0.5 {
		t.Errorf("expected %.2f, got %.2f", want, got)
	}
}

func TestRMS_Constant(t *testing.T) {
	block := []float32{-3, 3, -3, 3}
	if got := RMS(block); got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
}
