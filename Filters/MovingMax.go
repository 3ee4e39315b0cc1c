package Filters

// MovingMax 固定长度的滑动窗口最大值
// 用环形缓冲区保存最近 size 个三态值 (-1/0/+1)，初始值全部为 0 (中性)
type MovingMax struct {
	window []int8 // 环形缓冲区
	head   int    // 下一个写入位置 (也是最旧的元素)
}

// NewMovingMax 创建实例
// size: 窗口长度，必须 > 0
func NewMovingMax(size int) *MovingMax {
	if size <= 0 {
		panic("moving max window size must be positive")
	}
	return &MovingMax{
		window: make([]int8, size),
	}
}

// Size 返回窗口长度
func (m *MovingMax) Size() int {
	return len(m.window)
}

// Push 写入最新值 (同时淘汰最旧值)，返回窗口内最大值
func (m *MovingMax) Push(v int8) int8 {
	m.window[m.head] = v
	m.head = (m.head + 1) % len(m.window)
	return m.Max()
}

// Max 返回当前窗口内的最大值
func (m *MovingMax) Max() int8 {
	max := m.window[0]
	for _, v := range m.window[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Values 按时间顺序 (最旧 -> 最新) 复制窗口内容到 dst，返回 dst
// dst 容量不足时重新分配
func (m *MovingMax) Values(dst []int8) []int8 {
	if cap(dst) < len(m.window) {
		dst = make([]int8, len(m.window))
	}
	dst = dst[:len(m.window)]
	n := copy(dst, m.window[m.head:])
	copy(dst[n:], m.window[:m.head])
	return dst
}

// Reset 恢复为全 0
func (m *MovingMax) Reset() {
	for i := range m.window {
		m.window[i] = 0
	}
	m.head = 0
}
