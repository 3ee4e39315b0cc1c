package yndetect

import (
	"encoding/binary"
	"os"
)

// WavWriter 简单的立体声 16-bit WAV 写入器
// 输入是编解码器字: 低 16 位写左声道，高 16 位写右声道
type WavWriter struct {
	file       *os.File
	sampleRate int
	dataSize   int
	buf        []byte
}

// NewWavWriter 创建新的 WAV 写入器
func NewWavWriter(filename string, sampleRate int) (*WavWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	// 写入占位符头 (44字节)
	// 稍后在 Close 时我们会回写正确的大小
	header := make([]byte, 44)
	if _, err := f.Write(header); err != nil {
		f.Close()
		return nil, err
	}

	return &WavWriter{
		file:       f,
		sampleRate: sampleRate,
		dataSize:   0,
	}, nil
}

// WriteWords 写入一块编解码器字
func (w *WavWriter) WriteWords(words []uint32) error {
	need := len(words) * 4
	if cap(w.buf) < need {
		w.buf = make([]byte, need)
	}
	buf := w.buf[:need]
	for i, word := range words {
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(word&0xFFFF))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(word>>16))
	}

	n, err := w.file.Write(buf)
	if err != nil {
		return err
	}
	w.dataSize += n
	return nil
}

// Close 关闭文件并回写 WAV 头
func (w *WavWriter) Close() error {
	const channels = 2
	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8

	totalSize := 36 + w.dataSize
	header := make([]byte, 44)

	// RIFF header
	copy(header[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:], uint32(totalSize))
	copy(header[8:], []byte("WAVE"))

	// fmt chunk
	copy(header[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:], 16)                              // Subchunk1Size (16 for PCM)
	binary.LittleEndian.PutUint16(header[20:], 1)                               // AudioFormat (1 for PCM)
	binary.LittleEndian.PutUint16(header[22:], channels)                        // NumChannels
	binary.LittleEndian.PutUint32(header[24:], uint32(w.sampleRate))            // SampleRate
	binary.LittleEndian.PutUint32(header[28:], uint32(w.sampleRate*blockAlign)) // ByteRate
	binary.LittleEndian.PutUint16(header[32:], uint16(blockAlign))              // BlockAlign
	binary.LittleEndian.PutUint16(header[34:], bitsPerSample)                   // BitsPerSample

	// data chunk
	copy(header[36:], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:], uint32(w.dataSize))

	// Seek 到开头并写入
	if _, err := w.file.Seek(0, 0); err != nil {
		return err
	}
	if _, err := w.file.Write(header); err != nil {
		return err
	}

	return w.file.Close()
}
