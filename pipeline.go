package yndetect

import (
	"fmt"
	"math"

	"yndetect/Filters"
)

// DebugRoute 选择哪一路滤波信号送到发送缓冲区 (调试播放)
// 启动时确定，运行中不再改变
type DebugRoute int

const (
	// RouteBands 高半字 = 高通，低半字 = 低通
	RouteBands DebugRoute = iota
	// RouteLowPass 两个声道都输出低通
	RouteLowPass
	// RouteHighPass 两个声道都输出高通
	RouteHighPass
)

func (r DebugRoute) String() string {
	switch r {
	case RouteLowPass:
		return "lowpass"
	case RouteHighPass:
		return "highpass"
	}
	return "bands"
}

// ParseDebugRoute 解析配置文件中的路由名
func ParseDebugRoute(s string) (DebugRoute, error) {
	switch s {
	case "", "bands":
		return RouteBands, nil
	case "lowpass":
		return RouteLowPass, nil
	case "highpass":
		return RouteHighPass, nil
	}
	return RouteBands, fmt.Errorf("%w: %q", ErrUnknownDebugRoute, s)
}

// BlockResult 一个处理周期的全部结果
type BlockResult struct {
	Energies
	Verdict
	Output   Decision // 平滑后的最终输出
	Previous Decision // 上一周期的最终输出
}

// Pipeline 每块执行一次: 滤波 -> RMS -> 判决 -> 平滑 -> 打包调试输出
// 所有状态都由 Pipeline 自己持有，处理过程中不分配内存
type Pipeline struct {
	blockSize int
	route     DebugRoute

	lowPass  *Filters.FIRFilter
	highPass *Filters.FIRFilter
	engine   *DecisionEngine
	smoother *Smoother

	x0 []float32 // 原始输入 (左声道)
	x1 []float32 // 高通输出
	x2 []float32 // 低通输出
}

// NewPipeline 根据配置创建处理链
func NewPipeline(cfg *Config) (*Pipeline, error) {
	if err := validatePipeline(cfg); err != nil {
		return nil, err
	}
	route, err := ParseDebugRoute(cfg.Pipeline.DebugRoute)
	if err != nil {
		return nil, err
	}

	bs := cfg.Pipeline.BlockSize
	lp, err := Filters.NewFIRFilter(Filters.LowPassCoeffs[:], bs)
	if err != nil {
		return nil, fmt.Errorf("low-pass filter: %w", err)
	}
	hp, err := Filters.NewFIRFilter(Filters.HighPassCoeffs[:], bs)
	if err != nil {
		return nil, fmt.Errorf("high-pass filter: %w", err)
	}

	return &Pipeline{
		blockSize: bs,
		route:     route,
		lowPass:   lp,
		highPass:  hp,
		engine:    NewDecisionEngine(cfg.Pipeline.InputThreshold, cfg.Pipeline.YNThreshold),
		smoother:  NewSmoother(cfg.Pipeline.MaxWindow),
		x0:        make([]float32, bs),
		x1:        make([]float32, bs),
		x2:        make([]float32, bs),
	}, nil
}

// BlockSize 每块样本数
func (p *Pipeline) BlockSize() int {
	return p.blockSize
}

// Route 调试输出路由
func (p *Pipeline) Route() DebugRoute {
	return p.route
}

// Engine 判决引擎 (读取调试累加器)
func (p *Pipeline) Engine() *DecisionEngine {
	return p.engine
}

// Smoother 平滑器 (读取历史)
func (p *Pipeline) Smoother() *Smoother {
	return p.smoother
}

// Output 最近一次的最终输出
func (p *Pipeline) Output() Decision {
	return p.smoother.Output()
}

// Process 处理一个块
// rx: 接收到的编解码器字 (低 16 位是左声道)
// tx: 调试输出，写入 (高 16 位, 低 16 位) 两路滤波信号
func (p *Pipeline) Process(rx, tx []uint32) BlockResult {
	if len(rx) != p.blockSize || len(tx) != p.blockSize {
		panic(fmt.Errorf("%w: rx=%d tx=%d block=%d", ErrBlockLengthMismatch, len(rx), len(tx), p.blockSize))
	}

	// 只用左声道
	for i, w := range rx {
		p.x0[i] = float32(int16(uint16(w & 0xFFFF)))
	}

	p.highPass.Process(p.x0, p.x1)
	p.lowPass.Process(p.x0, p.x2)

	en := Energies{
		High: Filters.RMS(p.x1),
		Low:  Filters.RMS(p.x2),
		Raw:  Filters.RMS(p.x0),
	}

	v := p.engine.Decide(en, p.smoother.Prev())
	out := p.smoother.Update(v.Decision)

	p.pack(tx)

	return BlockResult{
		Energies: en,
		Verdict:  v,
		Output:   out,
		Previous: p.smoother.Previous(),
	}
}

// pack 把两路滤波信号打包成 32 位字
func (p *Pipeline) pack(tx []uint32) {
	hi, lo := p.x1, p.x2
	switch p.route {
	case RouteLowPass:
		hi = p.x2
	case RouteHighPass:
		lo = p.x1
	}
	for i := range tx {
		tx[i] = PackWord(hi[i], lo[i])
	}
}

// PackWord 把两路样本饱和到 int16 后打包: 高 16 位 = hi，低 16 位 = lo
func PackWord(hi, lo float32) uint32 {
	return uint32(uint16(saturate16(hi)))<<16 | uint32(uint16(saturate16(lo)))
}

// UnpackWord PackWord 的逆操作
func UnpackWord(w uint32) (hi, lo int16) {
	return int16(uint16(w >> 16)), int16(uint16(w & 0xFFFF))
}

// saturate16 向零截断并限幅到 int16 范围
func saturate16(v float32) int16 {
	switch {
	case v != v: // NaN
		return 0
	case v >= math.MaxInt16:
		return math.MaxInt16
	case v <= math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

// Reset 清空滤波器历史和判决历史 (调试累加器保留)
func (p *Pipeline) Reset() {
	p.lowPass.Reset()
	p.highPass.Reset()
	p.smoother.Reset()
}

func validatePipeline(cfg *Config) error {
	if cfg.Pipeline.BlockSize <= 0 {
		return ErrInvalidBlockSize
	}
	if cfg.Pipeline.MaxWindow <= 0 {
		return ErrInvalidWindow
	}
	if cfg.Pipeline.InputThreshold <= 0 || cfg.Pipeline.YNThreshold <= 0 {
		return ErrInvalidThreshold
	}
	return nil
}
