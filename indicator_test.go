package yndetect

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// MockSerialPort 模拟串口
type MockSerialPort struct {
	ReadBuffer  *bytes.Buffer
	WriteBuffer *bytes.Buffer
	Closed      bool
}

func NewMockSerialPort() *MockSerialPort {
	return &MockSerialPort{
		ReadBuffer:  new(bytes.Buffer),
		WriteBuffer: new(bytes.Buffer),
	}
}

func (m *MockSerialPort) Read(p []byte) (n int, err error) {
	return m.ReadBuffer.Read(p)
}

func (m *MockSerialPort) Write(p []byte) (n int, err error) {
	return m.WriteBuffer.Write(p)
}

func (m *MockSerialPort) Close() error {
	m.Closed = true
	return nil
}

// 辅助函数：生成指示灯板的响应帧
func makeResponseFrame(cmd byte, data []byte) []byte {
	// FE FE E0 70 Cmd [Data...] FD
	frame := []byte{LED_PREAMBLE, LED_PREAMBLE, LED_ADDR_HOST, LED_ADDR_NODE, cmd}
	if len(data) > 0 {
		frame = append(frame, data...)
	}
	frame = append(frame, LED_END)
	return frame
}

func TestLEDMask(t *testing.T) {
	if m, ok := LEDMask(DecisionYes); !ok || m != LEDGreen {
		t.Errorf("YES: expected green only, got %03b ok=%v", m, ok)
	}
	if m, ok := LEDMask(DecisionNo); !ok || m != LEDRed {
		t.Errorf("NO: expected red only, got %03b ok=%v", m, ok)
	}
	if _, ok := LEDMask(DecisionNA); ok {
		t.Error("NA must leave the indicator untouched")
	}
}

func TestSerialIndicator_Show(t *testing.T) {
	mockPort := NewMockSerialPort()
	led := &SerialIndicator{conn: mockPort}

	if err := led.Show(DecisionYes); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	expected := []byte{0xFE, 0xFE, 0x70, 0xE0, 0x01, 0x01, 0xFD}
	if !bytes.Equal(mockPort.WriteBuffer.Bytes(), expected) {
		t.Errorf("Expected frame %X, got %X", expected, mockPort.WriteBuffer.Bytes())
	}

	mockPort.WriteBuffer.Reset()
	if err := led.Show(DecisionNo); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	expected = []byte{0xFE, 0xFE, 0x70, 0xE0, 0x01, 0x02, 0xFD}
	if !bytes.Equal(mockPort.WriteBuffer.Bytes(), expected) {
		t.Errorf("Expected frame %X, got %X", expected, mockPort.WriteBuffer.Bytes())
	}

	// NA 不发送任何东西
	mockPort.WriteBuffer.Reset()
	if err := led.Show(DecisionNA); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if mockPort.WriteBuffer.Len() != 0 {
		t.Errorf("NA should not write, got %X", mockPort.WriteBuffer.Bytes())
	}
}

func TestSerialIndicator_ReadLEDs(t *testing.T) {
	mockPort := NewMockSerialPort()
	led := &SerialIndicator{conn: mockPort}

	mockPort.ReadBuffer.Write(makeResponseFrame(LED_CMD_QUERY, []byte{LEDRed | LEDBlue}))

	mask, err := led.ReadLEDs()
	if err != nil {
		t.Fatalf("ReadLEDs failed: %v", err)
	}
	if mask != LEDRed|LEDBlue {
		t.Errorf("Expected mask %03b, got %03b", LEDRed|LEDBlue, mask)
	}

	expected := []byte{0xFE, 0xFE, 0x70, 0xE0, 0x02, 0xFD}
	if !bytes.Equal(mockPort.WriteBuffer.Bytes(), expected) {
		t.Errorf("Expected query frame %X, got %X", expected, mockPort.WriteBuffer.Bytes())
	}
}

func TestReadResponse_EchoFilter(t *testing.T) {
	mockPort := NewMockSerialPort()
	led := &SerialIndicator{conn: mockPort}

	// 回显: FE FE 70 E0 02 FD (Host -> Node)
	// 响应: FE FE E0 70 02 01 FD (Node -> Host)
	mockPort.ReadBuffer.Write([]byte{0xFE, 0xFE, 0x70, 0xE0, 0x02, 0xFD})
	mockPort.ReadBuffer.Write(makeResponseFrame(LED_CMD_QUERY, []byte{LEDGreen}))

	mask, err := led.ReadLEDs()
	if err != nil {
		t.Fatalf("ReadLEDs with echo failed: %v", err)
	}
	if mask != LEDGreen {
		t.Errorf("Expected green, got %03b", mask)
	}
}

func TestReadResponse_NoData(t *testing.T) {
	led := &SerialIndicator{conn: NewMockSerialPort()}
	if _, err := led.ReadLEDs(); err == nil {
		t.Fatal("expected an error when the board does not answer")
	}
}

func TestSerialIndicator_NotConnected(t *testing.T) {
	led := NewSerialIndicator("/dev/null", 115200)
	if err := led.Show(DecisionYes); !errors.Is(err, ErrIndicatorNotConnected) {
		t.Errorf("expected ErrIndicatorNotConnected, got %v", err)
	}
	if err := led.Close(); err != nil {
		t.Errorf("closing an unopened indicator should be a no-op, got %v", err)
	}
}

func TestClose(t *testing.T) {
	mockPort := NewMockSerialPort()
	led := &SerialIndicator{conn: mockPort}

	if err := led.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !mockPort.Closed {
		t.Error("Expected port to be closed")
	}
	// 关闭前熄灭所有灯
	expected := []byte{0xFE, 0xFE, 0x70, 0xE0, 0x01, 0x00, 0xFD}
	if !bytes.Equal(mockPort.WriteBuffer.Bytes(), expected) {
		t.Errorf("Expected all-off frame %X, got %X", expected, mockPort.WriteBuffer.Bytes())
	}
}

func TestConsoleIndicator_PrintsOnChange(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleIndicator(&buf)

	for _, d := range []Decision{DecisionNA, DecisionYes, DecisionYes, DecisionNA, DecisionNo, DecisionNo} {
		if err := c.Show(d); err != nil {
			t.Fatalf("Show failed: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "YES") || !strings.Contains(lines[1], "NO") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
