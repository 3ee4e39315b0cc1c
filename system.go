package yndetect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"
)

// errEndOfData 数据源结束，用来让 errgroup 停掉处理循环
var errEndOfData = errors.New("end of data")

// Detector 管理整个 YES/NO 检测系统的生命周期
type Detector struct {
	// 配置
	cfg    *Config
	period time.Duration // 一个块的时长，也是处理的截止时间

	// 组件
	exchange  *Exchange
	pipeline  *Pipeline
	mover     DataMover
	indicator Indicator
	debugger  BlockDebugger
	metrics   *Metrics

	wavReader     *WavReader
	wavWriter     *WavWriter
	meterProvider *sdkmetric.MeterProvider
	memoryLocked  bool
	started       bool

	// 状态
	shown        Decision // 指示灯上当前显示的判决
	lastRxOver   uint64
	lastTxOver   uint64
	worstCycleNs atomic.Int64

	// 回调
	OnResult func(cycle uint64, r BlockResult) // 每处理完一个块回调 (在处理循环里执行)
}

// Stats 运行统计
type Stats struct {
	Cycles     uint64
	RxOverruns uint64
	TxOverruns uint64
	WorstCycle time.Duration
	PeakRMS    float32
	PeakRatio  float32
}

// NewDetector 校验配置并创建处理链
// 外部资源 (声卡、文件、串口) 在 Start 中打开
func NewDetector(cfg *Config) (*Detector, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	p, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	bs := cfg.Pipeline.BlockSize
	return &Detector{
		cfg:      cfg,
		period:   time.Second * time.Duration(bs) / time.Duration(cfg.Pipeline.SampleRate),
		exchange: NewExchange(bs),
		pipeline: p,
	}, nil
}

// SetMover 替换数据搬运端 (必须在 Start 之前调用)
func (d *Detector) SetMover(m DataMover) {
	d.mover = m
}

// SetIndicator 替换指示灯 (必须在 Start 之前调用)
func (d *Detector) SetIndicator(ind Indicator) {
	d.indicator = ind
}

// SetDebugger 替换调试记录器 (必须在 Start 之前调用)
func (d *Detector) SetDebugger(dbg BlockDebugger) {
	d.debugger = dbg
}

// SetMeterProvider 用指定的 MeterProvider 创建指标 (必须在 Start 之前调用)
func (d *Detector) SetMeterProvider(mp metric.MeterProvider) error {
	m, err := NewMetrics(mp)
	if err != nil {
		return err
	}
	d.metrics = m
	return nil
}

// Exchange 缓冲区交换 (测试和基准程序使用)
func (d *Detector) Exchange() *Exchange {
	return d.exchange
}

// Pipeline 处理链
func (d *Detector) Pipeline() *Pipeline {
	return d.pipeline
}

// Period 块周期
func (d *Detector) Period() time.Duration {
	return d.period
}

// Start 按配置打开所有还没有被替换的组件
func (d *Detector) Start() error {
	cfg := d.cfg

	// 1. 数据搬运端
	if d.mover == nil {
		if err := d.openMover(); err != nil {
			d.Stop()
			return err
		}
	}

	// 2. 指示灯
	if d.indicator == nil {
		if err := d.openIndicator(); err != nil {
			d.Stop()
			return err
		}
	}

	// 3. 调试记录
	if d.debugger == nil {
		if cfg.Debug.CSVFile != "" {
			dbg, err := NewCsvFileDebugger(cfg.Debug.CSVFile)
			if err != nil {
				d.Stop()
				return fmt.Errorf("failed to create csv file: %w", err)
			}
			d.debugger = dbg
			fmt.Printf("[DEBUG] Tracing blocks to %s\n", cfg.Debug.CSVFile)
		} else {
			d.debugger = &NoOpDebugger{}
		}
	}

	// 4. 指标
	if d.metrics == nil {
		var mp metric.MeterProvider = otel.GetMeterProvider()
		if cfg.Metrics.Enabled {
			smp, err := InitMetricsProvider()
			if err != nil {
				d.Stop()
				return err
			}
			d.meterProvider = smp
			mp = smp
		}
		if err := d.SetMeterProvider(mp); err != nil {
			d.Stop()
			return fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	// 5. 锁内存
	if cfg.Runtime.LockMemory {
		if err := lockMemory(); err != nil {
			log.Printf("Warning: Could not lock memory: %v\n", err)
		} else {
			d.memoryLocked = true
		}
	}

	d.started = true
	return nil
}

func (d *Detector) openMover() error {
	cfg := d.cfg
	rate := cfg.Pipeline.SampleRate

	switch cfg.Audio.Source {
	case SourceDevice:
		if cfg.Audio.RecordFile != "" {
			log.Printf("Warning: recording is only supported for replay and prbs sources, ignoring %s\n", cfg.Audio.RecordFile)
		}
		d.mover = NewAudioMover(rate, cfg.Audio.DeviceName)
		fmt.Printf("[MODE] DEVICE (%q, %d Hz)\n", cfg.Audio.DeviceName, rate)
		return nil

	case SourceReplay:
		r, err := NewWavReader(cfg.Audio.ReplayFile)
		if err != nil {
			return fmt.Errorf("failed to open replay file: %w", err)
		}
		d.wavReader = r
		if r.SampleRate != rate {
			return fmt.Errorf("%w: %s is %d Hz, want %d", ErrInvalidSampleRate, cfg.Audio.ReplayFile, r.SampleRate, rate)
		}
		fmt.Printf("[MODE] REPLAY (%s, %d Hz, paced=%v)\n", cfg.Audio.ReplayFile, rate, cfg.Audio.Paced)
		return d.useBlockMover(r)

	case SourcePRBS:
		fmt.Printf("[MODE] PRBS (amplitude %.0f, route %s)\n", cfg.Audio.PRBSAmplitude, d.pipeline.Route())
		return d.useBlockMover(NewPRBSSource(cfg.Audio.PRBSAmplitude))
	}
	return fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Audio.Source)
}

func (d *Detector) useBlockMover(src SampleSource) error {
	m := &BlockMover{
		Source:     src,
		SampleRate: d.cfg.Pipeline.SampleRate,
		Paced:      d.cfg.Audio.Paced,
	}
	if d.cfg.Audio.RecordFile != "" {
		w, err := NewWavWriter(d.cfg.Audio.RecordFile, d.cfg.Pipeline.SampleRate)
		if err != nil {
			return fmt.Errorf("failed to create wav file: %w", err)
		}
		d.wavWriter = w
		m.Sink = w
		fmt.Printf("[MODE] Recording debug output to %s\n", d.cfg.Audio.RecordFile)
	}
	d.mover = m
	return nil
}

func (d *Detector) openIndicator() error {
	switch d.cfg.Indicator.Kind {
	case IndicatorSerial:
		si := NewSerialIndicator(d.cfg.Indicator.SerialPort, d.cfg.Indicator.BaudRate)
		fmt.Printf("Connecting to indicator on %s...\n", si.Port)
		if err := si.Open(); err != nil {
			return fmt.Errorf("failed to open indicator: %w", err)
		}
		fmt.Println("Serial port opened.")
		d.indicator = si
	case IndicatorConsole:
		d.indicator = NewConsoleIndicator(os.Stdout)
	default:
		d.indicator = NoOpIndicator{}
	}
	return nil
}

// Run 启动数据搬运端和处理循环，直到 ctx 取消或数据源结束
// 数据源正常结束或 ctx 取消都返回 nil
func (d *Detector) Run(ctx context.Context) error {
	if !d.started {
		if err := d.Start(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := d.mover.Run(gctx, d.exchange)
		if errors.Is(err, io.EOF) {
			fmt.Println("\n[MOVER] End of data.")
			return errEndOfData
		}
		return err
	})

	g.Go(func() error {
		return d.loop(gctx)
	})

	if d.cfg.Metrics.Enabled && d.meterProvider != nil {
		g.Go(func() error {
			fmt.Printf("[METRICS] Serving /metrics on %s\n", d.cfg.Metrics.ListenAddr)
			return ServeMetrics(gctx, d.cfg.Metrics.ListenAddr)
		})
	}

	err := g.Wait()
	switch {
	case errors.Is(err, errEndOfData):
		return nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return nil
	}
	return err
}

// loop 处理循环: 等待 -> 处理 -> 清标志，永不主动退出
func (d *Detector) loop(ctx context.Context) error {
	if st := d.cfg.Runtime.SettleTime; st > 0 {
		fmt.Printf("[LOOP] Settling for %v...\n", st)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(st):
		}
		d.exchange.ResetStats()
	}
	fmt.Println("[LOOP] Detection started.")

	for {
		if err := d.exchange.Wait(ctx); err != nil {
			return err
		}
		d.ProcessBlock(ctx)
	}
}

// ProcessBlock 处理一个就绪的块并更新指示灯、指标和调试记录
// 调用前两个就绪标志必须都已置位
func (d *Detector) ProcessBlock(ctx context.Context) BlockResult {
	var r BlockResult
	start := time.Now()
	d.exchange.Consume(func(rx, tx []uint32) {
		r = d.pipeline.Process(rx, tx)
	})
	elapsed := time.Since(start)
	cycle := d.exchange.Cycles()

	if ns := elapsed.Nanoseconds(); ns > d.worstCycleNs.Load() {
		d.worstCycleNs.Store(ns)
	}

	if d.metrics != nil {
		d.metrics.ObserveCycle(ctx, r, elapsed, d.period)
		rx, tx := d.exchange.Overruns()
		// ResetStats 之后计数会变小
		if rx < d.lastRxOver || tx < d.lastTxOver {
			d.lastRxOver, d.lastTxOver = 0, 0
		}
		if rx > d.lastRxOver || tx > d.lastTxOver {
			d.metrics.ObserveOverruns(ctx, rx-d.lastRxOver, tx-d.lastTxOver)
			d.lastRxOver, d.lastTxOver = rx, tx
		}
	}

	if d.debugger != nil {
		d.debugger.Record(cycle, r)
	}

	if d.indicator != nil && r.Output != d.shown {
		if _, ok := LEDMask(r.Output); ok {
			if err := d.indicator.Show(r.Output); err != nil {
				log.Printf("Error updating indicator: %v", err)
			}
			d.shown = r.Output
		}
	}

	if d.OnResult != nil {
		d.OnResult(cycle, r)
	}
	return r
}

// Stats 运行统计，Run 返回后读取
func (d *Detector) Stats() Stats {
	rx, tx := d.exchange.Overruns()
	return Stats{
		Cycles:     d.exchange.Cycles(),
		RxOverruns: rx,
		TxOverruns: tx,
		WorstCycle: time.Duration(d.worstCycleNs.Load()),
		PeakRMS:    d.pipeline.Engine().PeakRMS(),
		PeakRatio:  d.pipeline.Engine().PeakRatio(),
	}
}

// Stop 释放所有资源
func (d *Detector) Stop() {
	if d.wavWriter != nil {
		fmt.Println("\nSaving recording...")
		if err := d.wavWriter.Close(); err != nil {
			log.Printf("Error saving recording: %v", err)
		} else {
			fmt.Println("Recording saved.")
		}
		d.wavWriter = nil
	}
	if d.wavReader != nil {
		d.wavReader.Close()
		d.wavReader = nil
	}
	if d.indicator != nil {
		if err := d.indicator.Close(); err != nil {
			log.Printf("Error closing indicator: %v", err)
		}
		d.indicator = nil
	}
	if d.debugger != nil {
		d.debugger.Close()
		d.debugger = nil
	}
	if d.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := d.meterProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down metrics: %v", err)
		}
		cancel()
		d.meterProvider = nil
	}
	if d.memoryLocked {
		unlockMemory()
		d.memoryLocked = false
	}
	d.started = false
}
