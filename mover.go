package yndetect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"
)

// DataMover 扮演 DMA 的角色: 不断把样本写进 active 接收缓冲区、
// 把 active 发送缓冲区送出去，每完成一个块就通知 Exchange
type DataMover interface {
	Run(ctx context.Context, x *Exchange) error
}

// SampleSource 按块提供编解码器字
type SampleSource interface {
	ReadWords(dst []uint32) (int, error)
}

// WordSink 接收播放出去的发送缓冲区内容
type WordSink interface {
	WriteWords(words []uint32) error
}

// BlockMover 从 SampleSource 取数据的软件搬运端 (回放 / PRBS)
//
// Paced = true 时按真实块周期送数据，和硬件一样不等处理循环；
// Paced = false 时等处理循环清掉标志后再送下一块 (离线处理，不会 overrun)
type BlockMover struct {
	Source     SampleSource
	Sink       WordSink // 可为 nil
	SampleRate int
	Paced      bool
	MaxBlocks  int // > 0 时只送这么多块
}

// Run 运行到数据源结束或 ctx 取消
// 数据源正常结束时，等最后一块被处理完再返回 io.EOF
func (m *BlockMover) Run(ctx context.Context, x *Exchange) error {
	bs := x.BlockSize()

	var tick <-chan time.Time
	if m.Paced {
		interval := time.Second * time.Duration(bs) / time.Duration(m.SampleRate)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for blocks := 0; m.MaxBlocks <= 0 || blocks < m.MaxBlocks; blocks++ {
		// 先把 active 接收缓冲区填满
		rx := x.Receive().Active()
		n, err := m.Source.ReadWords(rx)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("source: %w", err)
		}
		if n == 0 {
			return m.finish(ctx, x)
		}
		// 最后一块不足时补零
		for i := n; i < len(rx); i++ {
			rx[i] = 0
		}

		if m.Paced {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := waitDrained(ctx, x); err != nil {
			return err
		}

		// 发送通道: 当前 active 块 "播放" 完毕
		if m.Sink != nil {
			if err := m.Sink.WriteWords(x.Transmit().Active()); err != nil {
				return fmt.Errorf("sink: %w", err)
			}
		}
		x.MarkTransmitComplete()
		x.MarkReceiveComplete()
	}
	return m.finish(ctx, x)
}

func (m *BlockMover) finish(ctx context.Context, x *Exchange) error {
	if err := waitDrained(ctx, x); err != nil {
		return err
	}
	return io.EOF
}

// waitDrained 等待处理循环清掉两个标志
func waitDrained(ctx context.Context, x *Exchange) error {
	for x.Pending() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		runtime.Gosched()
	}
	return nil
}

// PRBSSource 用 16 位最大长度 LFSR 产生 ±Amplitude 的伪随机二进制序列
// 频谱平坦，用来测量滤波器响应
type PRBSSource struct {
	Amplitude float32
	lfsr      uint16
}

// NewPRBSSource 创建 PRBS 源
func NewPRBSSource(amplitude float32) *PRBSSource {
	return &PRBSSource{Amplitude: amplitude, lfsr: 0xACE1}
}

// Next 返回下一个样本
func (p *PRBSSource) Next() float32 {
	// x^16 + x^14 + x^13 + x^11 + 1
	bit := ((p.lfsr >> 0) ^ (p.lfsr >> 2) ^ (p.lfsr >> 3) ^ (p.lfsr >> 5)) & 1
	p.lfsr = (p.lfsr >> 1) | (bit << 15)
	if bit == 1 {
		return p.Amplitude
	}
	return -p.Amplitude
}

// ReadWords 实现 SampleSource，左右声道相同，永不结束
func (p *PRBSSource) ReadWords(dst []uint32) (int, error) {
	for i := range dst {
		s := uint16(saturate16(p.Next()))
		dst[i] = uint32(s) | uint32(s)<<16
	}
	return len(dst), nil
}
