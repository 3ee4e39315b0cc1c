// firgen 用窗函数法 (Hamming) 生成线性相位 FIR 系数表，输出为 Go 源文件
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mjibson/go-dsp/window"
)

func main() {
	kind := flag.String("type", "highpass", "filter type: lowpass or highpass")
	taps := flag.Int("taps", 81, "number of coefficients (odd for highpass)")
	rate := flag.Float64("rate", 32000, "sample rate (Hz)")
	cutoff := flag.Float64("cutoff", 3000, "cutoff frequency (Hz)")
	pkg := flag.String("pkg", "Filters", "package name of the generated file")
	out := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	coeffs, err := design(*kind, *taps, *rate, *cutoff)
	if err != nil {
		log.Fatalf("firgen: %v", err)
	}

	src, err := render(*pkg, *kind, *taps, *rate, *cutoff, coeffs)
	if err != nil {
		log.Fatalf("firgen: %v", err)
	}

	if *out == "" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(*out, src, 0o644); err != nil {
		log.Fatalf("firgen: %v", err)
	}
}

// design 计算窗函数法系数
// 先设计单位直流增益的低通原型，高通用谱反转得到: h_hp = delta - h_lp
func design(kind string, taps int, rate, cutoff float64) ([]float64, error) {
	if taps < 3 {
		return nil, fmt.Errorf("too few taps: %d", taps)
	}
	if cutoff <= 0 || cutoff >= rate/2 {
		return nil, fmt.Errorf("cutoff %.1f Hz outside (0, %.1f)", cutoff, rate/2)
	}

	w := window.Hamming(taps)
	fc := cutoff / rate
	m := float64(taps - 1)

	lp := make([]float64, taps)
	var gain float64
	for i := range lp {
		k := float64(i) - m/2
		var s float64
		if k == 0 {
			s = 2 * fc
		} else {
			s = math.Sin(2*math.Pi*fc*k) / (math.Pi * k)
		}
		lp[i] = s * w[i]
		gain += lp[i]
	}
	for i := range lp {
		lp[i] /= gain
	}

	switch kind {
	case "lowpass":
		return lp, nil
	case "highpass":
		// 偶数长度的对称 FIR 在 Nyquist 处必为零，无法做高通
		if taps%2 == 0 {
			return nil, fmt.Errorf("highpass needs an odd number of taps, got %d", taps)
		}
		hp := make([]float64, taps)
		for i, v := range lp {
			hp[i] = -v
		}
		hp[taps/2] += 1
		return hp, nil
	}
	return nil, fmt.Errorf("unknown filter type %q", kind)
}

func render(pkg, kind string, taps int, rate, cutoff float64, coeffs []float64) ([]byte, error) {
	name := "LowPass"
	label := "低通"
	if kind == "highpass" {
		name = "HighPass"
		label = "高通"
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by firgen -type %s -taps %d -rate %g -cutoff %g; DO NOT EDIT.\n\n", kind, taps, rate, cutoff)
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	fmt.Fprintf(&b, "// Hamming 窗函数法 FIR %s滤波器\n", label)
	fmt.Fprintf(&b, "// 截止频率 -> %g Hz\n", cutoff)
	fmt.Fprintf(&b, "// 采样率 -> %g Hz\n\n", rate)
	fmt.Fprintf(&b, "// Num%sTaps %s滤波器系数个数\n", name, label)
	fmt.Fprintf(&b, "const Num%sTaps = %d\n\n", name, taps)
	fmt.Fprintf(&b, "// %sCoeffs %s滤波器系数 (线性相位，对称)\n", name, label)
	fmt.Fprintf(&b, "var %sCoeffs = [Num%sTaps]float32{\n", name, name)

	for i := 0; i < len(coeffs); i += 6 {
		end := i + 6
		if end > len(coeffs) {
			end = len(coeffs)
		}
		vals := make([]string, 0, 6)
		for _, v := range coeffs[i:end] {
			// 抹掉 sinc 零点处的舍入残差
			if math.Abs(v) < 1e-9 {
				v = 0
			}
			vals = append(vals, strconv.FormatFloat(v, 'E', 4, 64))
		}
		fmt.Fprintf(&b, "\t%s,\n", strings.Join(vals, ", "))
	}
	b.WriteString("}\n")

	return format.Source(b.Bytes())
}
