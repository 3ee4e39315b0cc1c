package yndetect

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WavReader 简单的 WAV 文件读取器 (仅支持 16-bit PCM Mono/Stereo)
// 读出的数据直接打包成编解码器的 32 位字: 低 16 位左声道，高 16 位右声道
type WavReader struct {
	file       *os.File
	SampleRate int
	Channels   int
	DataSize   int
	dataStart  int64
	remaining  int64
	buf        []byte
}

func NewWavReader(filename string) (*WavReader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	// 读取 RIFF 头
	riffHeader := make([]byte, 12)
	if _, err := io.ReadFull(f, riffHeader); err != nil {
		f.Close()
		return nil, err
	}

	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		f.Close()
		return nil, fmt.Errorf("invalid wav file")
	}

	var channels, sampleRate, bitsPerSample, dataSize int
	var dataStart int64
	foundFmt := false
	foundData := false

	for {
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(f, chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			f.Close()
			return nil, err
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		// Pad byte if chunk size is odd
		padding := int64(chunkSize % 2)

		if chunkID == "fmt " {
			if chunkSize < 16 {
				f.Close()
				return nil, fmt.Errorf("fmt chunk too small")
			}
			fmtData := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, fmtData); err != nil {
				f.Close()
				return nil, err
			}
			if padding > 0 {
				f.Seek(padding, io.SeekCurrent)
			}

			channels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(fmtData[14:16]))
			foundFmt = true
		} else if chunkID == "data" {
			dataSize = int(chunkSize)
			pos, _ := f.Seek(0, io.SeekCurrent)
			dataStart = pos
			foundData = true

			if foundFmt {
				break
			}
			// Skip data
			if _, err := f.Seek(int64(chunkSize)+padding, io.SeekCurrent); err != nil {
				f.Close()
				return nil, err
			}
		} else {
			// Skip unknown chunk
			if _, err := f.Seek(int64(chunkSize)+padding, io.SeekCurrent); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if !foundFmt || !foundData {
		f.Close()
		return nil, fmt.Errorf("invalid wav file: missing fmt or data chunk")
	}

	if bitsPerSample != 16 {
		f.Close()
		return nil, fmt.Errorf("only 16-bit wav supported, got %d", bitsPerSample)
	}
	if channels != 1 && channels != 2 {
		f.Close()
		return nil, fmt.Errorf("only mono or stereo wav supported, got %d channels", channels)
	}

	// 确保文件指针指向 data 开始
	if _, err := f.Seek(dataStart, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	return &WavReader{
		file:       f,
		SampleRate: sampleRate,
		Channels:   channels,
		DataSize:   dataSize,
		dataStart:  dataStart,
		remaining:  int64(dataSize),
	}, nil
}

// ReadWords 读取最多 len(dst) 帧并打包成编解码器字
// 单声道文件左右声道相同；数据读完返回 io.EOF
func (r *WavReader) ReadWords(dst []uint32) (int, error) {
	frameBytes := 2 * r.Channels
	want := int64(len(dst) * frameBytes)
	if want > r.remaining {
		want = r.remaining - r.remaining%int64(frameBytes)
	}
	if want == 0 {
		return 0, io.EOF
	}

	if cap(r.buf) < int(want) {
		r.buf = make([]byte, want)
	}
	buf := r.buf[:want]

	n, err := io.ReadFull(r.file, buf)
	r.remaining -= int64(n)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, err
	}

	numFrames := n / frameBytes
	for i := 0; i < numFrames; i++ {
		offset := i * frameBytes
		left := binary.LittleEndian.Uint16(buf[offset : offset+2])
		right := left
		if r.Channels == 2 {
			right = binary.LittleEndian.Uint16(buf[offset+2 : offset+4])
		}
		dst[i] = uint32(left) | uint32(right)<<16
	}
	if numFrames == 0 {
		return 0, io.EOF
	}
	return numFrames, nil
}

// Rewind 回到数据开头
func (r *WavReader) Rewind() error {
	if _, err := r.file.Seek(r.dataStart, io.SeekStart); err != nil {
		return err
	}
	r.remaining = int64(r.DataSize)
	return nil
}

func (r *WavReader) Close() error {
	return r.file.Close()
}
