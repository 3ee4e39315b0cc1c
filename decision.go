package yndetect

// Decision 三态判决值
// 数值编码保证 YES > NA > NO，滑动最大值直接按数值比较
type Decision int8

const (
	DecisionNo  Decision = -1
	DecisionNA  Decision = 0 // 不确定 (输入太弱)，也是启动时的初始值
	DecisionYes Decision = 1
)

func (d Decision) String() string {
	switch d {
	case DecisionYes:
		return "YES"
	case DecisionNo:
		return "NO"
	}
	return "NA"
}

// Energies 一个块的三个 RMS 能量
type Energies struct {
	High float32 // 高通输出
	Low  float32 // 低通输出
	Raw  float32 // 原始输入
}

// Verdict 判决引擎的全部中间结果
type Verdict struct {
	Ratio    float32  // 高频/低频 能量比
	Vote     Decision // 比值投票 (YES/NO)
	Gated    Decision // 经过输入强度门控后的投票 (YES/NO/NA)
	Decision Decision // 用反馈消除 NA 之后的结果
}

// DecisionEngine 根据两个频带的能量比给出 YES/NO 判决
// 输入太弱时沿用上一次的输出 (反馈)
type DecisionEngine struct {
	inputThreshold float32
	ynThreshold    float32

	// 调试用，只增不减，不参与判决
	peakRMS   float32
	peakRatio float32
}

// NewDecisionEngine 创建判决引擎
// inputThreshold: 输入能量门限 (同时用于保护分母)
// ynThreshold: 能量比门限
func NewDecisionEngine(inputThreshold, ynThreshold float32) *DecisionEngine {
	return &DecisionEngine{
		inputThreshold: inputThreshold,
		ynThreshold:    ynThreshold,
	}
}

// Decide 计算一个块的判决
// prev: 上一个周期平滑后的输出
func (e *DecisionEngine) Decide(en Energies, prev Decision) Verdict {
	// 低频能量太小时分母用 1，防止比值爆炸
	den := float32(1)
	if en.Low > e.inputThreshold {
		den = en.Low
	}
	ratio := en.High / den

	vote := DecisionNo
	if ratio > e.ynThreshold {
		vote = DecisionYes
	}

	gated := DecisionNA
	if en.Raw > e.inputThreshold {
		gated = vote
	}

	decision := prev
	if gated != DecisionNA {
		decision = vote
	}

	if en.Raw > e.peakRMS {
		e.peakRMS = en.Raw
	}
	if ratio > e.peakRatio {
		e.peakRatio = ratio
	}

	return Verdict{
		Ratio:    ratio,
		Vote:     vote,
		Gated:    gated,
		Decision: decision,
	}
}

// PeakRMS 运行以来最大的输入 RMS
func (e *DecisionEngine) PeakRMS() float32 {
	return e.peakRMS
}

// PeakRatio 运行以来最大的能量比
func (e *DecisionEngine) PeakRatio() float32 {
	return e.peakRatio
}

// ResetPeaks 清零调试累加器
func (e *DecisionEngine) ResetPeaks() {
	e.peakRMS = 0
	e.peakRatio = 0
}
