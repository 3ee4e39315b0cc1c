package yndetect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "yndetect"

// cycleBuckets 处理时间直方图的桶 (秒)，块周期 4 ms 附近细分
var cycleBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.003, 0.004, 0.005, 0.008, 0.016,
}

// Metrics 处理循环的指标
// 超时和 overrun 本身不会被核心报告，这里把它们变成可观测的计数
type Metrics struct {
	Cycles         metric.Int64Counter
	Overruns       metric.Int64Counter // attribute channel = rx / tx
	DeadlineMisses metric.Int64Counter
	CycleDuration  metric.Float64Histogram
	Decision       metric.Int64Gauge
	EnergyRatio    metric.Float64Gauge
}

// NewMetrics 用给定的 MeterProvider 创建所有指标
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Cycles, err = m.Int64Counter("yndetect.cycles",
		metric.WithDescription("Processed sample blocks."),
	); err != nil {
		return nil, err
	}
	if met.Overruns, err = m.Int64Counter("yndetect.overruns",
		metric.WithDescription("Completion events that found their readiness flag still set."),
	); err != nil {
		return nil, err
	}
	if met.DeadlineMisses, err = m.Int64Counter("yndetect.deadline_misses",
		metric.WithDescription("Cycles whose processing time exceeded one block period."),
	); err != nil {
		return nil, err
	}
	if met.CycleDuration, err = m.Float64Histogram("yndetect.cycle.duration",
		metric.WithDescription("Per-block processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(cycleBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Decision, err = m.Int64Gauge("yndetect.decision",
		metric.WithDescription("Smoothed decision: 1 = YES, -1 = NO, 0 = not yet decided."),
	); err != nil {
		return nil, err
	}
	if met.EnergyRatio, err = m.Float64Gauge("yndetect.energy_ratio",
		metric.WithDescription("High-band to low-band energy ratio of the last block."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// ObserveCycle 记录一个周期
func (m *Metrics) ObserveCycle(ctx context.Context, r BlockResult, elapsed, period time.Duration) {
	m.Cycles.Add(ctx, 1)
	m.CycleDuration.Record(ctx, elapsed.Seconds())
	if elapsed > period {
		m.DeadlineMisses.Add(ctx, 1)
	}
	m.Decision.Record(ctx, int64(r.Output))
	m.EnergyRatio.Record(ctx, float64(r.Ratio))
}

// ObserveOverruns 记录新增的 overrun
func (m *Metrics) ObserveOverruns(ctx context.Context, rx, tx uint64) {
	if rx > 0 {
		m.Overruns.Add(ctx, int64(rx), metric.WithAttributes(attribute.String("channel", "rx")))
	}
	if tx > 0 {
		m.Overruns.Add(ctx, int64(tx), metric.WithAttributes(attribute.String("channel", "tx")))
	}
}

// InitMetricsProvider 用 Prometheus 导出器初始化全局 MeterProvider
// 退出时调用返回值的 Shutdown
func InitMetricsProvider() (*sdkmetric.MeterProvider, error) {
	exp, err := promexporter.New()
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	otel.SetMeterProvider(mp)
	return mp, nil
}

// ServeMetrics 在 addr 上提供 /metrics，直到 ctx 取消
func ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
