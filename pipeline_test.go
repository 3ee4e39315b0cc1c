package yndetect

import (
	"errors"
	"math"
	"testing"
)

// toneBlocks 生成 n 个块的正弦编解码器字 (左声道是信号，右声道填垃圾)
func toneBlocks(freq, amp float64, blockSize, n int) [][]uint32 {
	blocks := make([][]uint32, n)
	idx := 0
	for b := range blocks {
		blocks[b] = make([]uint32, blockSize)
		for i := range blocks[b] {
			v := amp * math.Sin(2*math.Pi*freq*float64(idx)/DesignSampleRate)
			blocks[b][i] = PackWord(12345, float32(v))
			idx++
		}
	}
	return blocks
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(DefaultConfig())
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p
}

func TestPipeline_LowToneIsNo(t *testing.T) {
	p := newTestPipeline(t)
	tx := make([]uint32, p.BlockSize())

	var r BlockResult
	for i, rx := range toneBlocks(1000, 8000, p.BlockSize(), 40) {
		r = p.Process(rx, tx)
		if i >= 4 && r.Decision != DecisionNo {
			t.Fatalf("block %d: decision = %v (high=%.1f low=%.1f ratio=%.3f), want NO",
				i, r.Decision, r.High, r.Low, r.Ratio)
		}
	}
	if r.Output != DecisionNo {
		t.Errorf("output = %v, want NO", r.Output)
	}
	if r.Ratio >= DefaultYNThreshold {
		t.Errorf("ratio %.3f should be well below the threshold", r.Ratio)
	}
}

func TestPipeline_HighToneIsYes(t *testing.T) {
	p := newTestPipeline(t)
	tx := make([]uint32, p.BlockSize())

	for i, rx := range toneBlocks(8000, 8000, p.BlockSize(), 20) {
		r := p.Process(rx, tx)
		if i >= 1 && r.Output != DecisionYes {
			t.Fatalf("block %d: output = %v (high=%.1f low=%.1f), want YES", i, r.Output, r.High, r.Low)
		}
	}
}

func TestPipeline_SilenceKeepsPrevious(t *testing.T) {
	p := newTestPipeline(t)
	tx := make([]uint32, p.BlockSize())

	// 启动后全是静音: 没有判决，输出保持中性
	silence := make([]uint32, p.BlockSize())
	r := p.Process(silence, tx)
	if r.Gated != DecisionNA || r.Decision != DecisionNA || r.Output != DecisionNA {
		t.Fatalf("silence at startup: gated=%v decision=%v output=%v", r.Gated, r.Decision, r.Output)
	}
	if p.Engine().PeakRMS() != 0 || p.Engine().PeakRatio() != 0 {
		t.Error("silence should not move the accumulators")
	}

	for _, rx := range toneBlocks(8000, 8000, p.BlockSize(), 5) {
		p.Process(rx, tx)
	}
	// 冲掉滤波器历史
	for i := 0; i < 2; i++ {
		p.Process(silence, tx)
	}

	peakRMS, peakRatio := p.Engine().PeakRMS(), p.Engine().PeakRatio()
	prev := p.Output()
	r = p.Process(silence, tx)
	if r.Gated != DecisionNA {
		t.Errorf("gated = %v, want NA", r.Gated)
	}
	if r.Decision != prev {
		t.Errorf("decision = %v, want previous %v", r.Decision, prev)
	}
	if p.Engine().PeakRMS() != peakRMS || p.Engine().PeakRatio() != peakRatio {
		t.Error("silence should leave the accumulators unchanged")
	}
}

func TestPipeline_IgnoresRightChannel(t *testing.T) {
	a := newTestPipeline(t)
	b := newTestPipeline(t)
	tx := make([]uint32, a.BlockSize())

	for _, rx := range toneBlocks(1000, 3000, a.BlockSize(), 3) {
		other := make([]uint32, len(rx))
		for i, w := range rx {
			other[i] = w & 0xFFFF // 右声道清零
		}
		ra := a.Process(rx, tx)
		rb := b.Process(other, tx)
		if ra.Energies != rb.Energies {
			t.Fatalf("right channel changed the energies: %+v vs %+v", ra.Energies, rb.Energies)
		}
	}
}

func TestPipeline_DebugRoutes(t *testing.T) {
	for _, route := range []DebugRoute{RouteLowPass, RouteHighPass} {
		cfg := DefaultConfig()
		cfg.Pipeline.DebugRoute = route.String()
		p, err := NewPipeline(cfg)
		if err != nil {
			t.Fatalf("NewPipeline(%s) failed: %v", route, err)
		}
		tx := make([]uint32, p.BlockSize())
		for _, rx := range toneBlocks(1000, 5000, p.BlockSize(), 2) {
			p.Process(rx, tx)
		}
		for i, w := range tx {
			hi, lo := UnpackWord(w)
			if hi != lo {
				t.Fatalf("route %s: word %d has different halves %d / %d", route, i, hi, lo)
			}
		}
	}

	// bands: 低通在低半字，高通在高半字
	p := newTestPipeline(t)
	tx := make([]uint32, p.BlockSize())
	for _, rx := range toneBlocks(1000, 5000, p.BlockSize(), 4) {
		p.Process(rx, tx)
	}
	var hiMax, loMax int16
	for _, w := range tx {
		hi, lo := UnpackWord(w)
		if hi > hiMax {
			hiMax = hi
		}
		if lo > loMax {
			loMax = lo
		}
	}
	if loMax < 3000 || hiMax > 200 {
		t.Errorf("1 kHz in bands route: low half peak %d, high half peak %d", loMax, hiMax)
	}
}

func TestPackWord_Saturates(t *testing.T) {
	tests := []struct {
		hi, lo         float32
		wantHi, wantLo int16
	}{
		{100, -100, 100, -100},
		{40000, -40000, math.MaxInt16, math.MinInt16},
		{-1e9, 1e9, math.MinInt16, math.MaxInt16},
		{1.9, -1.9, 1, -1},
		{float32(math.NaN()), 0, 0, 0},
	}
	for _, tt := range tests {
		hi, lo := UnpackWord(PackWord(tt.hi, tt.lo))
		if hi != tt.wantHi || lo != tt.wantLo {
			t.Errorf("PackWord(%v, %v) -> (%d, %d), want (%d, %d)", tt.hi, tt.lo, hi, lo, tt.wantHi, tt.wantLo)
		}
	}
}

func TestPipeline_BlockLengthMismatchPanics(t *testing.T) {
	p := newTestPipeline(t)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrBlockLengthMismatch) {
			t.Errorf("expected ErrBlockLengthMismatch panic, got %v", r)
		}
	}()
	p.Process(make([]uint32, 3), make([]uint32, p.BlockSize()))
}

func TestParseDebugRoute(t *testing.T) {
	for in, want := range map[string]DebugRoute{"": RouteBands, "bands": RouteBands, "lowpass": RouteLowPass, "highpass": RouteHighPass} {
		got, err := ParseDebugRoute(in)
		if err != nil || got != want {
			t.Errorf("ParseDebugRoute(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseDebugRoute("treble"); !errors.Is(err, ErrUnknownDebugRoute) {
		t.Errorf("expected ErrUnknownDebugRoute, got %v", err)
	}
}

func TestPipeline_Reset(t *testing.T) {
	p := newTestPipeline(t)
	tx := make([]uint32, p.BlockSize())
	blocks := toneBlocks(8000, 8000, p.BlockSize(), 3)

	first := p.Process(blocks[0], tx)
	p.Process(blocks[1], tx)
	p.Reset()
	if p.Output() != DecisionNA {
		t.Fatal("Reset should clear the decision history")
	}
	again := p.Process(blocks[0], tx)
	if again.Energies != first.Energies {
		t.Errorf("after Reset the same block should give the same energies: %+v vs %+v", again.Energies, first.Energies)
	}
}
