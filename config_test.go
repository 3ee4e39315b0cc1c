package yndetect

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Pipeline.BlockSize != 128 || cfg.Pipeline.MaxWindow != 22 {
		t.Errorf("unexpected defaults: block=%d window=%d", cfg.Pipeline.BlockSize, cfg.Pipeline.MaxWindow)
	}
	if cfg.Pipeline.InputThreshold != 120 || cfg.Pipeline.YNThreshold != 0.7 {
		t.Errorf("unexpected thresholds: %v %v", cfg.Pipeline.InputThreshold, cfg.Pipeline.YNThreshold)
	}
}

func TestLoadConfigFromReader_Overrides(t *testing.T) {
	yaml := `
pipeline:
  yn_threshold: 0.8
  debug_route: highpass
audio:
  source: prbs
  paced: false
indicator:
  kind: none
runtime:
  settle_time: 500ms
`
	cfg, err := LoadConfigFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadConfigFromReader failed: %v", err)
	}
	if cfg.Pipeline.YNThreshold != 0.8 {
		t.Errorf("yn_threshold = %v, want 0.8", cfg.Pipeline.YNThreshold)
	}
	if cfg.Pipeline.DebugRoute != "highpass" {
		t.Errorf("debug_route = %q", cfg.Pipeline.DebugRoute)
	}
	if cfg.Audio.Source != SourcePRBS || cfg.Audio.Paced {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Runtime.SettleTime != 500*time.Millisecond {
		t.Errorf("settle_time = %v, want 500ms", cfg.Runtime.SettleTime)
	}
	// 没写的字段保持默认
	if cfg.Pipeline.BlockSize != DefaultBlockSize || cfg.Indicator.BaudRate != 115200 {
		t.Errorf("missing fields should keep defaults: block=%d baud=%d", cfg.Pipeline.BlockSize, cfg.Indicator.BaudRate)
	}
}

func TestLoadConfigFromReader_Empty(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty config should fall back to defaults: %v", err)
	}
	if cfg.Pipeline.SampleRate != DesignSampleRate {
		t.Errorf("sample_rate = %d", cfg.Pipeline.SampleRate)
	}
}

func TestLoadConfigFromReader_UnknownField(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("pipeline:\n  block_sise: 64\n"))
	if err == nil {
		t.Fatal("expected an error for a misspelled field")
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.SampleRate = 48000
	cfg.Pipeline.BlockSize = 0
	cfg.Pipeline.YNThreshold = -1
	cfg.Pipeline.MaxWindow = 0
	cfg.Pipeline.DebugRoute = "treble"
	cfg.Audio.Source = "microphone"
	cfg.Indicator.Kind = IndicatorSerial

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []error{
		ErrInvalidSampleRate,
		ErrInvalidBlockSize,
		ErrInvalidThreshold,
		ErrInvalidWindow,
		ErrUnknownDebugRoute,
		ErrUnknownSource,
		ErrMissingSerialPort,
	} {
		if !errors.Is(err, want) {
			t.Errorf("missing %v in %v", want, err)
		}
	}
}

func TestValidate_ReplayNeedsFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audio.Source = SourceReplay
	if err := Validate(cfg); !errors.Is(err, ErrMissingReplayFile) {
		t.Errorf("expected ErrMissingReplayFile, got %v", err)
	}
}

func TestCheckCoefficients(t *testing.T) {
	if err := CheckCoefficients([]float32{1, 2, 1}, 4); !errors.Is(err, ErrCoefficientLength) {
		t.Errorf("expected ErrCoefficientLength, got %v", err)
	}
	if err := CheckCoefficients([]float32{1, 2, 3}, 3); !errors.Is(err, ErrCoefficientSymmetry) {
		t.Errorf("expected ErrCoefficientSymmetry, got %v", err)
	}
	if err := CheckCoefficients([]float32{1, 2, 2, 1}, 4); err != nil {
		t.Errorf("symmetric table rejected: %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yndetect.yaml")
	if err := os.WriteFile(path, []byte("pipeline:\n  max_window: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Pipeline.MaxWindow != 10 {
		t.Errorf("max_window = %d, want 10", cfg.Pipeline.MaxWindow)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
