package yndetect

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"yndetect/Filters"
)

// FrequencyResponse 测得的幅频响应
type FrequencyResponse struct {
	SampleRate float64
	FFTSize    int
	Gain       []float64 // 线性增益，下标为 FFT bin (0 ~ FFTSize/2)
}

// BinWidth 每个 bin 的频率宽度 (Hz)
func (r *FrequencyResponse) BinWidth() float64 {
	return r.SampleRate / float64(r.FFTSize)
}

// GainAt 最近 bin 的线性增益
func (r *FrequencyResponse) GainAt(freq float64) float64 {
	idx := int(math.Round(freq / r.BinWidth()))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(r.Gain) {
		idx = len(r.Gain) - 1
	}
	return r.Gain[idx]
}

// GainDB 最近 bin 的增益 (dB)
func (r *FrequencyResponse) GainDB(freq float64) float64 {
	g := r.GainAt(freq)
	if g < 1e-12 {
		g = 1e-12
	}
	return 20 * math.Log10(g)
}

// ResponseAnalyzer 用 PRBS 激励 + Welch 平均互谱估计滤波器响应
// H(f) = |Sxy(f)| / Sxx(f)
type ResponseAnalyzer struct {
	SampleRate float64
	FFTSize    int
	Window     []float64
}

// NewResponseAnalyzer 创建分析器 (汉宁窗，50% 重叠)
func NewResponseAnalyzer(sampleRate float64, fftSize int) *ResponseAnalyzer {
	return &ResponseAnalyzer{
		SampleRate: sampleRate,
		FFTSize:    fftSize,
		Window:     window.Hann(fftSize),
	}
}

// Measure 把 PRBS 送进滤波器，返回测得的响应
// segments: Welch 平均的段数，越多越平滑
func (ra *ResponseAnalyzer) Measure(filter *Filters.FIRFilter, src *PRBSSource, segments int) *FrequencyResponse {
	if segments < 1 {
		segments = 1
	}
	step := ra.FFTSize / 2
	// 先丢掉一段，跳过滤波器的启动瞬态
	warmup := filter.NumTaps()
	total := warmup + ra.FFTSize + (segments-1)*step

	x := make([]float32, total)
	for i := range x {
		x[i] = src.Next()
	}
	y := make([]float32, total)
	filter.Process(x, y)
	x, y = x[warmup:], y[warmup:]

	bins := ra.FFTSize/2 + 1
	sxx := make([]float64, bins)
	sxy := make([]complex128, bins)

	xs := make([]float64, ra.FFTSize)
	ys := make([]float64, ra.FFTSize)
	for seg := 0; seg < segments; seg++ {
		off := seg * step
		// 1. 加窗
		for j := 0; j < ra.FFTSize; j++ {
			xs[j] = float64(x[off+j]) * ra.Window[j]
			ys[j] = float64(y[off+j]) * ra.Window[j]
		}

		// 2. FFT
		X := fft.FFTReal(xs)
		Y := fft.FFTReal(ys)

		// 3. 累加自谱和互谱
		for k := 0; k < bins; k++ {
			sxx[k] += real(X[k])*real(X[k]) + imag(X[k])*imag(X[k])
			sxy[k] += cmplx.Conj(X[k]) * Y[k]
		}
	}

	gain := make([]float64, bins)
	for k := range gain {
		if sxx[k] > 0 {
			gain[k] = cmplx.Abs(sxy[k]) / sxx[k]
		}
	}

	return &FrequencyResponse{
		SampleRate: ra.SampleRate,
		FFTSize:    ra.FFTSize,
		Gain:       gain,
	}
}

// 默认测量参数: 1024 点 (31.25 Hz/bin @ 32 kHz)，64 段平均
const (
	ResponseFFTSize  = 1024
	ResponseSegments = 64
)

// MeasureResponse 测量一张系数表的幅频响应
// 用法和原型板上的滤波器响应模式一样: PRBS 进，滤波器出
func MeasureResponse(coeffs []float32, sampleRate int, amplitude float32) (*FrequencyResponse, error) {
	f, err := Filters.NewFIRFilter(coeffs, DefaultBlockSize)
	if err != nil {
		return nil, err
	}
	ra := NewResponseAnalyzer(float64(sampleRate), ResponseFFTSize)
	return ra.Measure(f, NewPRBSSource(amplitude), ResponseSegments), nil
}
