package yndetect

import (
	"testing"

	"yndetect/Filters"
)

func TestMeasureResponse_LowPass(t *testing.T) {
	resp, err := MeasureResponse(Filters.LowPassCoeffs[:], DesignSampleRate, 8000)
	if err != nil {
		t.Fatalf("MeasureResponse failed: %v", err)
	}
	if g := resp.GainAt(1000); g < 0.8 || g > 1.15 {
		t.Errorf("low-pass gain at 1 kHz = %.3f, want passband", g)
	}
	for _, f := range []float64{6000, 8000, 12000} {
		if g := resp.GainAt(f); g > 0.05 {
			t.Errorf("low-pass gain at %.0f Hz = %.4f, want stopband", f, g)
		}
	}
}

func TestMeasureResponse_HighPass(t *testing.T) {
	resp, err := MeasureResponse(Filters.HighPassCoeffs[:], DesignSampleRate, 8000)
	if err != nil {
		t.Fatalf("MeasureResponse failed: %v", err)
	}
	for _, f := range []float64{5000, 8000, 12000} {
		if g := resp.GainAt(f); g < 0.9 || g > 1.1 {
			t.Errorf("high-pass gain at %.0f Hz = %.3f, want passband", f, g)
		}
	}
	if g := resp.GainAt(1000); g > 0.05 {
		t.Errorf("high-pass gain at 1 kHz = %.4f, want stopband", g)
	}
	if db := resp.GainDB(500); db > -26 {
		t.Errorf("high-pass attenuation at 500 Hz = %.1f dB", db)
	}
}

func TestFrequencyResponse_GainAtClamps(t *testing.T) {
	r := &FrequencyResponse{SampleRate: 8, FFTSize: 8, Gain: []float64{1, 2, 3, 4, 5}}
	if r.BinWidth() != 1 {
		t.Fatalf("bin width = %v", r.BinWidth())
	}
	if r.GainAt(-3) != 1 || r.GainAt(2.2) != 3 || r.GainAt(100) != 5 {
		t.Errorf("GainAt did not pick the nearest clamped bin")
	}
}

func TestMeasureResponse_RejectsEmptyTable(t *testing.T) {
	if _, err := MeasureResponse(nil, DesignSampleRate, 8000); err == nil {
		t.Error("expected an error for an empty coefficient table")
	}
}
