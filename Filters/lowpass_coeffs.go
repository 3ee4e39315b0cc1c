package Filters

// 等波纹 FIR 低通滤波器 (离线设计)
// 通带 -> 2.5 kHz
// 阻带 -> 3.5 kHz
// 采样率 -> 32000 Hz

// NumLowPassTaps 低通滤波器系数个数
const NumLowPassTaps = 82

// LowPassCoeffs 低通滤波器系数 (线性相位，对称)
var LowPassCoeffs = [NumLowPassTaps]float32{
	-2.5393E-05, -3.3695E-04, -8.5671E-04, -1.7624E-03, -3.0426E-03, -4.5940E-03,
	-6.1731E-03, -7.4179E-03, -7.9154E-03, -7.3139E-03, -5.4516E-03, -2.4655E-03,
	1.1641E-03, 4.6670E-03, 7.1407E-03, 7.7906E-03, 6.1909E-03, 2.4897E-03,
	-2.5214E-03, -7.5237E-03, -1.0975E-02, -1.1540E-02, -8.5413E-03, -2.2884E-03,
	5.8386E-03, 1.3616E-02, 1.8505E-02, 1.8368E-02, 1.2202E-02, 6.5611E-04,
	-1.3823E-02, -2.7333E-02, -3.5311E-02, -3.3615E-02, -1.9638E-02, 6.8224E-03,
	4.3222E-02, 8.4549E-02, 1.2423E-01, 1.5546E-01, 1.7264E-01, 1.7264E-01,
	1.5546E-01, 1.2423E-01, 8.4549E-02, 4.3222E-02, 6.8224E-03, -1.9638E-02,
	-3.3615E-02, -3.5311E-02, -2.7333E-02, -1.3823E-02, 6.5611E-04, 1.2202E-02,
	1.8368E-02, 1.8505E-02, 1.3616E-02, 5.8386E-03, -2.2884E-03, -8.5413E-03,
	-1.1540E-02, -1.0975E-02, -7.5237E-03, -2.5214E-03, 2.4897E-03, 6.1909E-03,
	7.7906E-03, 7.1407E-03, 4.6670E-03, 1.1641E-03, -2.4655E-03, -5.4516E-03,
	-7.3139E-03, -7.9154E-03, -7.4179E-03, -6.1731E-03, -4.5940E-03, -3.0426E-03,
	-1.7624E-03, -8.5671E-04, -3.3695E-04, -2.5393E-05,
}
