package yndetect

import (
	"bufio"
	"fmt"
	"os"
)

// BlockDebugger 定义调试器接口
// 处理循环只依赖这个接口，不依赖具体的文件操作
type BlockDebugger interface {
	Record(cycle uint64, r BlockResult)
	Close()
}

// CsvFileDebugger 是 BlockDebugger 的具体实现，每个块写一行
type CsvFileDebugger struct {
	file   *os.File
	writer *bufio.Writer
}

// NewCsvFileDebugger 创建一个新的 CSV 调试器
func NewCsvFileDebugger(filename string) (*CsvFileDebugger, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := bufio.NewWriter(f)
	// 写入表头
	if _, err := w.WriteString("Cycle,HighRMS,LowRMS,InputRMS,Ratio,Vote,Gated,Decision,Output\n"); err != nil {
		f.Close()
		return nil, err
	}

	return &CsvFileDebugger{
		file:   f,
		writer: w,
	}, nil
}

// Record 记录一个块的结果
func (d *CsvFileDebugger) Record(cycle uint64, r BlockResult) {
	fmt.Fprintf(d.writer, "%d,%f,%f,%f,%f,%d,%d,%d,%d\n",
		cycle, r.High, r.Low, r.Raw, r.Ratio,
		r.Vote, r.Gated, r.Decision, r.Output)
}

// Close 关闭文件并刷新缓冲区
func (d *CsvFileDebugger) Close() {
	if d.writer != nil {
		d.writer.Flush()
	}
	if d.file != nil {
		d.file.Close()
	}
}

// NoOpDebugger 不记录任何东西 (没有配置 csv_file 时使用)
type NoOpDebugger struct{}

func (d *NoOpDebugger) Record(cycle uint64, r BlockResult) {}
func (d *NoOpDebugger) Close()                             {}
