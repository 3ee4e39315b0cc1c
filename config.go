package yndetect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"yndetect/Filters"
)

// 编译期工作点
// 系数表是按 32 kHz 设计的，改采样率等于改了两个频带
const (
	DesignSampleRate = 32000
	DefaultBlockSize = 128 // 4 ms @ 32 kHz

	// MATLAB 模型里 InputThreshold = 0.006 (归一化幅度)
	// 换算到 16-bit ADC、3.3V: 2^16 / 3.3 * 0.006 ≈ 120
	DefaultInputThreshold float32 = 120

	// 能量比门限，模型中为 0.8，实测调整为 0.7
	DefaultYNThreshold float32 = 0.7

	// 滑动最大值窗口 (块数)，不受 ADC 量化影响
	DefaultMaxWindow = 22
)

// 音频来源
const (
	SourceDevice = "device" // 声卡 (malgo 全双工)
	SourceReplay = "replay" // WAV 文件回放
	SourcePRBS   = "prbs"   // 伪随机序列，测滤波器响应用
)

// 指示器类型
const (
	IndicatorConsole = "console"
	IndicatorSerial  = "serial"
	IndicatorNone    = "none"
)

// Config 集中管理所有可调参数
// 默认值就是编译期常量，配置文件只在启动时读取一次
type Config struct {
	// --- 处理链 ---
	Pipeline struct {
		SampleRate     int     `yaml:"sample_rate"`     // 采样率 (Hz)，必须等于系数设计采样率
		BlockSize      int     `yaml:"block_size"`      // 每块样本数
		InputThreshold float32 `yaml:"input_threshold"` // 输入能量门限 (ADC 计数)
		YNThreshold    float32 `yaml:"yn_threshold"`    // 高/低频能量比门限
		MaxWindow      int     `yaml:"max_window"`      // 滑动最大值窗口 (块)
		DebugRoute     string  `yaml:"debug_route"`     // 调试输出: bands / lowpass / highpass
	} `yaml:"pipeline"`

	// --- 数据搬运 ---
	Audio struct {
		Source        string  `yaml:"source"`         // device / replay / prbs
		DeviceName    string  `yaml:"device_name"`    // 声卡名称 (子串匹配，空 = 默认设备)
		ReplayFile    string  `yaml:"replay_file"`    // 回放的 WAV 文件
		Paced         bool    `yaml:"paced"`          // 回放时按真实块周期节拍送数据
		RecordFile    string  `yaml:"record_file"`    // 把调试输出写成立体声 WAV
		PRBSAmplitude float32 `yaml:"prbs_amplitude"` // PRBS 幅度 (ADC 计数)
	} `yaml:"audio"`

	// --- 指示灯 ---
	Indicator struct {
		Kind       string `yaml:"kind"`        // console / serial / none
		SerialPort string `yaml:"serial_port"` // 串口设备名
		BaudRate   int    `yaml:"baud_rate"`
	} `yaml:"indicator"`

	// --- 调试 ---
	Debug struct {
		CSVFile string `yaml:"csv_file"` // 每块一行的调试记录，空 = 不记录
	} `yaml:"debug"`

	// --- 指标 ---
	Metrics struct {
		Enabled    bool   `yaml:"enabled"`
		ListenAddr string `yaml:"listen_addr"` // Prometheus /metrics 监听地址
	} `yaml:"metrics"`

	// --- 运行时 ---
	Runtime struct {
		LockMemory bool          `yaml:"lock_memory"` // mlockall，避免处理循环缺页
		SettleTime time.Duration `yaml:"settle_time"` // 启动后等待系统稳定的时间
	} `yaml:"runtime"`
}

// DefaultConfig 返回编译期工作点
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Pipeline.SampleRate = DesignSampleRate
	cfg.Pipeline.BlockSize = DefaultBlockSize
	cfg.Pipeline.InputThreshold = DefaultInputThreshold
	cfg.Pipeline.YNThreshold = DefaultYNThreshold
	cfg.Pipeline.MaxWindow = DefaultMaxWindow
	cfg.Pipeline.DebugRoute = RouteBands.String()

	cfg.Audio.Source = SourceDevice
	cfg.Audio.DeviceName = ""
	cfg.Audio.Paced = true
	cfg.Audio.PRBSAmplitude = 8000

	cfg.Indicator.Kind = IndicatorConsole
	cfg.Indicator.BaudRate = 115200

	cfg.Metrics.Enabled = false
	cfg.Metrics.ListenAddr = ":9464"

	cfg.Runtime.LockMemory = false
	cfg.Runtime.SettleTime = 2 * time.Second // 原型板上电后等 2 秒

	return cfg
}

// LoadConfig 读取 YAML 配置文件，未出现的字段保持默认值
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadConfigFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigFromReader 从 r 解码 YAML 并校验
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置，返回所有错误的合集
// 任何一个错误都是致命的，系统拒绝启动
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Pipeline.SampleRate != DesignSampleRate {
		errs = append(errs, fmt.Errorf("%w: pipeline.sample_rate=%d, coefficients designed for %d",
			ErrInvalidSampleRate, cfg.Pipeline.SampleRate, DesignSampleRate))
	}
	if cfg.Pipeline.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: pipeline.block_size=%d", ErrInvalidBlockSize, cfg.Pipeline.BlockSize))
	}
	if cfg.Pipeline.InputThreshold <= 0 {
		errs = append(errs, fmt.Errorf("%w: pipeline.input_threshold=%v", ErrInvalidThreshold, cfg.Pipeline.InputThreshold))
	}
	if cfg.Pipeline.YNThreshold <= 0 {
		errs = append(errs, fmt.Errorf("%w: pipeline.yn_threshold=%v", ErrInvalidThreshold, cfg.Pipeline.YNThreshold))
	}
	if cfg.Pipeline.MaxWindow <= 0 {
		errs = append(errs, fmt.Errorf("%w: pipeline.max_window=%d", ErrInvalidWindow, cfg.Pipeline.MaxWindow))
	}
	if _, err := ParseDebugRoute(cfg.Pipeline.DebugRoute); err != nil {
		errs = append(errs, err)
	}
	if err := CheckCoefficients(Filters.LowPassCoeffs[:], Filters.NumLowPassTaps); err != nil {
		errs = append(errs, fmt.Errorf("low-pass: %w", err))
	}
	if err := CheckCoefficients(Filters.HighPassCoeffs[:], Filters.NumHighPassTaps); err != nil {
		errs = append(errs, fmt.Errorf("high-pass: %w", err))
	}

	switch cfg.Audio.Source {
	case SourceDevice, SourcePRBS:
	case SourceReplay:
		if cfg.Audio.ReplayFile == "" {
			errs = append(errs, ErrMissingReplayFile)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Audio.Source))
	}

	switch cfg.Indicator.Kind {
	case IndicatorConsole, IndicatorNone:
	case IndicatorSerial:
		if cfg.Indicator.SerialPort == "" {
			errs = append(errs, ErrMissingSerialPort)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownIndicator, cfg.Indicator.Kind))
	}

	return errors.Join(errs...)
}

// CheckCoefficients 检查系数表长度和对称性 (线性相位)
func CheckCoefficients(coeffs []float32, order int) error {
	if len(coeffs) != order {
		return fmt.Errorf("%w: got %d, want %d", ErrCoefficientLength, len(coeffs), order)
	}
	n := len(coeffs)
	for i := 0; i < n/2; i++ {
		if coeffs[i] != coeffs[n-1-i] {
			return fmt.Errorf("%w: coeff[%d]=%v, coeff[%d]=%v", ErrCoefficientSymmetry, i, coeffs[i], n-1-i, coeffs[n-1-i])
		}
	}
	return nil
}
