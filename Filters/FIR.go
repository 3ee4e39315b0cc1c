package Filters

import "fmt"

// FIRFilter 是一个按块处理的直接型 FIR 滤波器 (float32 累加，不做饱和)
//
// 状态缓冲区布局: [上一块的最后 numTaps-1 个输入 | 本块输入]
// 每次处理后只保留最后 numTaps-1 个输入作为下一块的历史
type FIRFilter struct {
	coeffs    []float32
	state     []float32 // 长度 = numTaps - 1 + blockSize
	blockSize int
}

// NewFIRFilter 创建滤波器实例
// coeffs: 系数表 (只读共享，不会被修改)
// blockSize: 每次处理的最大块长
func NewFIRFilter(coeffs []float32, blockSize int) (*FIRFilter, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("fir: empty coefficient table")
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("fir: invalid block size %d", blockSize)
	}
	return &FIRFilter{
		coeffs:    coeffs,
		state:     make([]float32, len(coeffs)-1+blockSize),
		blockSize: blockSize,
	}, nil
}

// NumTaps 返回滤波器阶数 (系数个数)
func (f *FIRFilter) NumTaps() int {
	return len(f.coeffs)
}

// BlockSize 返回单次处理的块长
func (f *FIRFilter) BlockSize() int {
	return f.blockSize
}

// Reset 清空历史
func (f *FIRFilter) Reset() {
	for i := range f.state {
		f.state[i] = 0
	}
}

// Process 对 in 做卷积，结果写入 out
// len(out) 必须 >= len(in)，输出长度总是等于输入长度
// 超过 blockSize 的输入会按 blockSize 分段处理
func (f *FIRFilter) Process(in, out []float32) {
	for len(in) > 0 {
		n := len(in)
		if n > f.blockSize {
			n = f.blockSize
		}
		f.processBlock(in[:n], out[:n])
		in = in[n:]
		out = out[n:]
	}
}

func (f *FIRFilter) processBlock(in, out []float32) {
	numTaps := len(f.coeffs)
	hist := numTaps - 1

	// 新样本追加在历史之后
	copy(f.state[hist:], in)

	// y[n] = sum_k h[k] * x[n-k]，x[n-k] 位于 state[hist+n-k]
	for n := range in {
		var acc float32
		base := hist + n
		for k, c := range f.coeffs {
			acc += c * f.state[base-k]
		}
		out[n] = acc
	}

	// 保留最后 numTaps-1 个输入
	copy(f.state[:hist], f.state[len(in):len(in)+hist])
}
