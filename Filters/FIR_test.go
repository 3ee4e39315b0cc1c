package Filters

import (
	"math"
	"testing"
)

func TestFIRFilter_OutputLengthMatchesInput(t *testing.T) {
	f, err := NewFIRFilter(LowPassCoeffs[:], 128)
	if err != nil {
		t.Fatalf("NewFIRFilter failed: %v", err)
	}

	for _, n := range []int{1, 17, 128, 300} {
		in := make([]float32, n)
		for i := range in {
			in[i] = float32(i % 7)
		}
		// 多给一段，确认只写前 n 个
		out := make([]float32, n+4)
		for i := range out {
			out[i] = 42
		}
		f.Process(in, out)
		for i := n; i < len(out); i++ {
			if out[i] != 42 {
				t.Fatalf("n=%d: wrote past input length at %d", n, i)
			}
		}
	}
}

func TestFIRFilter_ImpulseResponseAcrossBlocks(t *testing.T) {
	// 块长小于阶数，冲激响应必须跨越多个块完整输出
	blockSize := 16
	f, err := NewFIRFilter(HighPassCoeffs[:], blockSize)
	if err != nil {
		t.Fatalf("NewFIRFilter failed: %v", err)
	}

	var got []float32
	in := make([]float32, blockSize)
	out := make([]float32, blockSize)
	in[0] = 1
	for len(got) < NumHighPassTaps+blockSize {
		f.Process(in, out)
		got = append(got, out...)
		in[0] = 0
	}

	for i, c := range HighPassCoeffs {
		if got[i] != c {
			t.Fatalf("tap %d: expected %v, got %v", i, c, got[i])
		}
	}
	for i := NumHighPassTaps; i < len(got); i++ {
		if got[i] != 0 {
			t.Fatalf("sample %d after impulse tail should be 0, got %v", i, got[i])
		}
	}
}

func TestFIRFilter_StateContinuity(t *testing.T) {
	// 一次处理 256 点 与 分两块各 128 点 必须得到同样的结果
	signal := make([]float32, 256)
	for i := range signal {
		signal[i] = float32(1000 * math.Sin(2*math.Pi*1000*float64(i)/32000))
	}

	whole, _ := NewFIRFilter(LowPassCoeffs[:], 256)
	split, _ := NewFIRFilter(LowPassCoeffs[:], 128)

	a := make([]float32, 256)
	whole.Process(signal, a)

	b := make([]float32, 256)
	split.Process(signal[:128], b[:128])
	split.Process(signal[128:], b[128:])

	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-3 {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFIRFilter_Reset(t *testing.T) {
	f, _ := NewFIRFilter(LowPassCoeffs[:], 8)
	in := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	out := make([]float32, 8)
	f.Process(in, out)

	f.Reset()
	zero := make([]float32, 8)
	f.Process(zero, out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("after Reset sample %d should be 0, got %v", i, v)
		}
	}
}

func TestNewFIRFilter_InvalidArguments(t *testing.T) {
	if _, err := NewFIRFilter(nil, 128); err == nil {
		t.Error("empty coefficient table should be rejected")
	}
	if _, err := NewFIRFilter(LowPassCoeffs[:], 0); err == nil {
		t.Error("zero block size should be rejected")
	}
}

func TestCoefficientTables_Symmetric(t *testing.T) {
	tables := []struct {
		name   string
		coeffs []float32
	}{
		{"lowpass", LowPassCoeffs[:]},
		{"highpass", HighPassCoeffs[:]},
	}
	for _, tc := range tables {
		n := len(tc.coeffs)
		for i := 0; i < n/2; i++ {
			if tc.coeffs[i] != tc.coeffs[n-1-i] {
				t.Errorf("%s: coeff %d (%v) != coeff %d (%v)", tc.name, i, tc.coeffs[i], n-1-i, tc.coeffs[n-1-i])
			}
		}
	}
}
