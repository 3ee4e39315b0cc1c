package yndetect

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Indicator 双色指示灯
// YES: 绿灯亮、红灯灭；NO: 绿灯灭、红灯亮；NA: 保持不变 (启动时全灭)
type Indicator interface {
	Show(d Decision) error
	Close() error
}

// LED 位
const (
	LEDGreen byte = 1 << 0
	LEDRed   byte = 1 << 1
	LEDBlue  byte = 1 << 2
)

// LEDMask 返回判决对应的亮灯位；ok=false 表示不改变指示灯
func LEDMask(d Decision) (mask byte, ok bool) {
	switch d {
	case DecisionYes:
		return LEDGreen, true
	case DecisionNo:
		return LEDRed, true
	}
	return 0, false
}

// 串口帧: FE FE [To] [From] [Cmd] [Data...] FD
const (
	LED_PREAMBLE  = 0xFE
	LED_END       = 0xFD
	LED_ADDR_NODE = 0x70 // 指示灯板地址
	LED_ADDR_HOST = 0xE0 // 主机地址

	LED_CMD_SET   = 0x01 // 设置亮灯位
	LED_CMD_QUERY = 0x02 // 读取当前亮灯位
)

// SerialPort 定义串口操作接口，方便测试 Mock
type SerialPort interface {
	io.ReadWriteCloser
}

// SerialIndicator 通过串口控制外部指示灯板
type SerialIndicator struct {
	Port     string
	BaudRate int
	conn     SerialPort
}

// NewSerialIndicator 创建串口指示灯
func NewSerialIndicator(port string, baudRate int) *SerialIndicator {
	return &SerialIndicator{
		Port:     port,
		BaudRate: baudRate,
	}
}

// Open 打开串口并把所有灯熄灭
func (s *SerialIndicator) Open() error {
	config := &serial.Config{
		Name:        s.Port,
		Baud:        s.BaudRate,
		ReadTimeout: time.Millisecond * 500,
	}
	p, err := serial.OpenPort(config)
	if err != nil {
		return err
	}
	s.conn = p
	return s.SetLEDs(0)
}

// Close 熄灯并关闭串口
func (s *SerialIndicator) Close() error {
	if s.conn == nil {
		return nil
	}
	_ = s.SetLEDs(0)
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Show 按判决设置指示灯
func (s *SerialIndicator) Show(d Decision) error {
	mask, ok := LEDMask(d)
	if !ok {
		return nil
	}
	return s.SetLEDs(mask)
}

// SetLEDs 直接设置亮灯位
func (s *SerialIndicator) SetLEDs(mask byte) error {
	return s.SendCommand(LED_CMD_SET, []byte{mask})
}

// SendCommand 发送一帧命令
func (s *SerialIndicator) SendCommand(cmd byte, data []byte) error {
	if s.conn == nil {
		return ErrIndicatorNotConnected
	}
	frame := []byte{LED_PREAMBLE, LED_PREAMBLE, LED_ADDR_NODE, LED_ADDR_HOST, cmd}
	if len(data) > 0 {
		frame = append(frame, data...)
	}
	frame = append(frame, LED_END)

	_, err := s.conn.Write(frame)
	return err
}

// ReadLEDs 读取指示灯板当前的亮灯位
func (s *SerialIndicator) ReadLEDs() (byte, error) {
	if err := s.SendCommand(LED_CMD_QUERY, nil); err != nil {
		return 0, err
	}
	resp, err := s.readResponse(LED_CMD_QUERY)
	if err != nil {
		return 0, err
	}
	if len(resp) < 1 {
		return 0, fmt.Errorf("invalid led data")
	}
	return resp[0], nil
}

// readResponse 读取并解析响应: FE FE [Host] [Node] [Cmd] [Data...] FD
func (s *SerialIndicator) readResponse(expectedCmd byte) ([]byte, error) {
	buf := make([]byte, 256)
	n, err := s.conn.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("timeout or no data")
	}

	data := buf[:n]
	// 串口可能回显我们发出的帧，按地址方向过滤
	header := []byte{LED_PREAMBLE, LED_PREAMBLE, LED_ADDR_HOST, LED_ADDR_NODE, expectedCmd}
	idx := bytes.Index(data, header)
	if idx == -1 {
		return nil, fmt.Errorf("response header not found in: % X", data)
	}

	frame := data[idx:]
	endIdx := bytes.IndexByte(frame, LED_END)
	if endIdx == -1 {
		return nil, fmt.Errorf("frame end not found")
	}
	if endIdx <= len(header) {
		return []byte{}, nil
	}
	return frame[len(header):endIdx], nil
}

// ConsoleIndicator 在终端上显示判决，状态变化时打印一行
type ConsoleIndicator struct {
	w    io.Writer
	last Decision
}

// NewConsoleIndicator 创建终端指示灯
func NewConsoleIndicator(w io.Writer) *ConsoleIndicator {
	return &ConsoleIndicator{w: w}
}

func (c *ConsoleIndicator) Show(d Decision) error {
	if _, ok := LEDMask(d); !ok || d == c.last {
		return nil
	}
	c.last = d
	color := "\033[32m" // green
	if d == DecisionNo {
		color = "\033[31m" // red
	}
	_, err := fmt.Fprintf(c.w, "[LED] %s%s\033[0m\n", color, d)
	return err
}

func (c *ConsoleIndicator) Close() error {
	return nil
}

// NoOpIndicator 不做任何事 (无指示灯时使用)
type NoOpIndicator struct{}

func (NoOpIndicator) Show(Decision) error { return nil }
func (NoOpIndicator) Close() error        { return nil }
