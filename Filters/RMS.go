package Filters

import "math"

// RMS 计算一块样本的均方根值
// 空块返回 0
func RMS(block []float32) float32 {
	if len(block) == 0 {
		return 0
	}
	var sum float32
	for _, v := range block {
		sum += v * v
	}
	return float32(math.Sqrt(float64(sum / float32(len(block)))))
}
