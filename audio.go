package yndetect

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/gen2brain/malgo"
)

// AudioMover 用声卡全双工流充当 DMA
// 采集: 16-bit 立体声，每帧打包成一个编解码器字写进 active 接收缓冲区
// 播放: 从 active 发送缓冲区取字，拆成左右声道输出
// 每满一个块调用 MarkTransmitComplete / MarkReceiveComplete
type AudioMover struct {
	SampleRate int
	DeviceName string

	ctx    *malgo.AllocatedContext
	device *malgo.Device
	pos    int // 当前块内的位置
}

// NewAudioMover 创建新的声卡搬运端 (设备在 Run 中打开)
func NewAudioMover(sampleRate int, deviceName string) *AudioMover {
	return &AudioMover{
		SampleRate: sampleRate,
		DeviceName: deviceName,
	}
}

// Run 打开设备并开始传输，直到 ctx 取消
func (am *AudioMover) Run(ctx context.Context, x *Exchange) error {
	if err := am.open(x); err != nil {
		return err
	}
	defer am.close()

	if err := am.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %v", err)
	}
	fmt.Printf("Audio Device Started. Rate: %d Hz, Block: %d frames\n", am.device.SampleRate(), x.BlockSize())

	<-ctx.Done()
	return nil
}

func (am *AudioMover) open(x *Exchange) error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to init malgo context: %v", err)
	}
	am.ctx = ctx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 2
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = 2
	deviceConfig.SampleRate = uint32(am.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(x.BlockSize())
	deviceConfig.Alsa.NoMMap = 1

	if am.DeviceName != "" {
		infos, err := ctx.Devices(malgo.Capture)
		if err == nil {
			for _, info := range infos {
				if strings.Contains(strings.ToLower(info.Name()), strings.ToLower(am.DeviceName)) {
					deviceConfig.Capture.DeviceID = info.ID.Pointer()
					fmt.Printf("Selected Audio Device: %s\n", info.Name())
					break
				}
			}
		}
	}

	onFrames := func(pOutputSample, pInputSamples []byte, framecount uint32) {
		am.transfer(x, pOutputSample, pInputSamples, int(framecount))
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onFrames,
	})
	if err != nil {
		am.close()
		return fmt.Errorf("failed to init device: %v", err)
	}
	am.device = device
	return nil
}

// transfer 在声卡回调线程里运行，只做拷贝和标志操作
func (am *AudioMover) transfer(x *Exchange, out, in []byte, frames int) {
	bs := x.BlockSize()
	rx := x.Receive().Active()
	tx := x.Transmit().Active()

	for i := 0; i < frames; i++ {
		off := i * 4
		if off+4 <= len(in) {
			left := binary.LittleEndian.Uint16(in[off:])
			right := binary.LittleEndian.Uint16(in[off+2:])
			rx[am.pos] = uint32(left) | uint32(right)<<16
		} else {
			rx[am.pos] = 0
		}
		if off+4 <= len(out) {
			w := tx[am.pos]
			binary.LittleEndian.PutUint16(out[off:], uint16(w&0xFFFF))
			binary.LittleEndian.PutUint16(out[off+2:], uint16(w>>16))
		}

		am.pos++
		if am.pos == bs {
			am.pos = 0
			x.MarkTransmitComplete()
			x.MarkReceiveComplete()
			rx = x.Receive().Active()
			tx = x.Transmit().Active()
		}
	}
}

func (am *AudioMover) close() {
	if am.device != nil {
		am.device.Uninit()
		am.device = nil
	}
	if am.ctx != nil {
		_ = am.ctx.Uninit()
		am.ctx.Free()
		am.ctx = nil
	}
}
