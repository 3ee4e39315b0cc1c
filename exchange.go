package yndetect

import (
	"context"
	"runtime"
	"sync/atomic"
)

// PING / PONG 缓冲区编号
const (
	Ping = 0
	Pong = 1
)

// BufferPair 乒乓缓冲区
// active 是数据搬运端 (DMA / 声卡回调) 正在使用的那一块，
// 另一块 (inactive) 只允许处理循环读写
type BufferPair struct {
	bufs   [2][]uint32
	active atomic.Uint32
}

func newBufferPair(blockSize int) *BufferPair {
	return &BufferPair{
		bufs: [2][]uint32{
			make([]uint32, blockSize),
			make([]uint32, blockSize),
		},
	}
}

// ActiveIndex 返回当前 active 缓冲区编号 (Ping/Pong)
func (p *BufferPair) ActiveIndex() int {
	return int(p.active.Load())
}

// Active 数据搬运端使用的缓冲区
func (p *BufferPair) Active() []uint32 {
	return p.bufs[p.active.Load()]
}

// Inactive 处理循环使用的缓冲区
func (p *BufferPair) Inactive() []uint32 {
	return p.bufs[p.active.Load()^1]
}

func (p *BufferPair) flip() {
	// 只有完成回调会翻转，单写者，不需要 CAS
	p.active.Store(p.active.Load() ^ 1)
}

// Exchange 管理接收/发送两组乒乓缓冲区和两个就绪标志
//
// 搬运端在一个块传输完成时调用 MarkReceiveComplete / MarkTransmitComplete，
// 处理循环等两个标志都置位后调用 Consume，处理完成后一起清零。
// 处理必须在下一个块传输完成之前结束，否则记一次 overrun。
type Exchange struct {
	blockSize int

	rx *BufferPair
	tx *BufferPair

	rxFull  atomic.Bool // 接收缓冲区已满
	txEmpty atomic.Bool // 发送缓冲区已空

	rxOverruns atomic.Uint64
	txOverruns atomic.Uint64
	cycles     atomic.Uint64
}

// NewExchange 创建实例，所有缓冲区在这里一次性分配
func NewExchange(blockSize int) *Exchange {
	return &Exchange{
		blockSize: blockSize,
		rx:        newBufferPair(blockSize),
		tx:        newBufferPair(blockSize),
	}
}

// BlockSize 每块的字数
func (x *Exchange) BlockSize() int {
	return x.blockSize
}

// Receive 接收缓冲区对
func (x *Exchange) Receive() *BufferPair {
	return x.rx
}

// Transmit 发送缓冲区对
func (x *Exchange) Transmit() *BufferPair {
	return x.tx
}

// MarkReceiveComplete 接收通道一个块已写满: 翻转角色并置位标志
// 可以在回调上下文中调用，不阻塞，不分配内存
func (x *Exchange) MarkReceiveComplete() {
	x.rx.flip()
	if x.rxFull.Swap(true) {
		x.rxOverruns.Add(1)
	}
}

// MarkTransmitComplete 发送通道一个块已播放完: 翻转角色并置位标志
func (x *Exchange) MarkTransmitComplete() {
	x.tx.flip()
	if x.txEmpty.Swap(true) {
		x.txOverruns.Add(1)
	}
}

// Ready 两个标志是否都已置位
func (x *Exchange) Ready() bool {
	return x.rxFull.Load() && x.txEmpty.Load()
}

// Pending 至少有一个标志还没被处理循环清掉
func (x *Exchange) Pending() bool {
	return x.rxFull.Load() || x.txEmpty.Load()
}

// Wait 自旋等待两个标志都置位
// 没有超时，搬运端停住就一直等；ctx 只用于退出
func (x *Exchange) Wait(ctx context.Context) error {
	for !x.Ready() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		runtime.Gosched()
	}
	return nil
}

// Consume 把 inactive 的接收/发送缓冲区交给 fn，fn 返回后同时清零两个标志
// 清零必须是最后一步，之后搬运端才可以重新使用这两块缓冲区
func (x *Exchange) Consume(fn func(rx, tx []uint32)) {
	fn(x.rx.Inactive(), x.tx.Inactive())
	x.cycles.Add(1)
	x.txEmpty.Store(false)
	x.rxFull.Store(false)
}

// Overruns 返回接收/发送通道的 overrun 次数
func (x *Exchange) Overruns() (rx, tx uint64) {
	return x.rxOverruns.Load(), x.txOverruns.Load()
}

// Cycles 已完成的处理周期数
func (x *Exchange) Cycles() uint64 {
	return x.cycles.Load()
}

// ResetStats 清零统计 (例如启动稳定时间结束后)
func (x *Exchange) ResetStats() {
	x.rxOverruns.Store(0)
	x.txOverruns.Store(0)
	x.cycles.Store(0)
}
