package yndetect

import "errors"

// 配置错误，启动时检测，任何一个出现都拒绝运行
var (
	ErrInvalidSampleRate     = errors.New("yndetect: sample rate does not match the coefficient design rate")
	ErrInvalidBlockSize      = errors.New("yndetect: block size must be > 0")
	ErrInvalidThreshold      = errors.New("yndetect: thresholds must be > 0")
	ErrInvalidWindow         = errors.New("yndetect: smoothing window must be > 0")
	ErrCoefficientLength     = errors.New("yndetect: coefficient table length does not match filter order")
	ErrCoefficientSymmetry   = errors.New("yndetect: coefficient table is not linear phase")
	ErrUnknownDebugRoute     = errors.New("yndetect: unknown debug route")
	ErrUnknownSource         = errors.New("yndetect: unknown audio source")
	ErrUnknownIndicator      = errors.New("yndetect: unknown indicator kind")
	ErrMissingReplayFile     = errors.New("yndetect: replay source needs a replay file")
	ErrMissingSerialPort     = errors.New("yndetect: serial indicator needs a serial port")
	ErrBlockLengthMismatch   = errors.New("yndetect: buffer length does not match block size")
	ErrIndicatorNotConnected = errors.New("yndetect: indicator connection not open")
)
