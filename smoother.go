package yndetect

import "yndetect/Filters"

// Smoother 滑动窗口最大值 + 一拍延迟
// 出现一次 YES 之后至少保持 W 个周期，防止指示灯闪烁
type Smoother struct {
	window   *Filters.MovingMax
	output   Decision // 本周期输出，也是下一周期判决引擎的反馈
	previous Decision // 上一周期输出
	scratch  []int8
}

// NewSmoother 创建平滑器
// size: 窗口长度 W
func NewSmoother(size int) *Smoother {
	return &Smoother{
		window:  Filters.NewMovingMax(size),
		scratch: make([]int8, size),
	}
}

// Update 写入本周期的判决并返回窗口最大值
func (s *Smoother) Update(d Decision) Decision {
	s.previous = s.output
	s.output = Decision(s.window.Push(int8(d)))
	return s.output
}

// Output 最近一次的输出
func (s *Smoother) Output() Decision {
	return s.output
}

// Prev 反馈给判决引擎的值 (即最近一次的输出)
func (s *Smoother) Prev() Decision {
	return s.output
}

// Previous 一拍延迟线: 上一周期的输出
func (s *Smoother) Previous() Decision {
	return s.previous
}

// History 返回窗口内的判决 (最旧 -> 最新)
func (s *Smoother) History() []Decision {
	vals := s.window.Values(s.scratch)
	out := make([]Decision, len(vals))
	for i, v := range vals {
		out[i] = Decision(v)
	}
	return out
}

// Size 窗口长度
func (s *Smoother) Size() int {
	return s.window.Size()
}

// Reset 恢复到启动状态
func (s *Smoother) Reset() {
	s.window.Reset()
	s.output = DecisionNA
	s.previous = DecisionNA
}
