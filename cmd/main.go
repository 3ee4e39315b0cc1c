package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"yndetect"
	"yndetect/Filters"
)

func main() {
	// 1. 解析命令行参数
	configFile := flag.String("config", "", "YAML config file (defaults are used when empty)")
	inputFile := flag.String("file", "", "Input wav file for replay testing")
	recordFile := flag.String("record", "", "Record the debug output to a stereo wav file")
	csvFile := flag.String("csv", "", "Write a per-block trace to a csv file")
	prbs := flag.Bool("prbs", false, "Feed a pseudo-random sequence instead of the audio input")
	route := flag.String("route", "", "Debug output route: bands, lowpass or highpass")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address")
	response := flag.String("response", "", "Print the measured response of a filter (lowpass or highpass) and exit")
	flag.Parse()

	// 2. 配置
	cfg := yndetect.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = yndetect.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Config failed: %v", err)
		}
	}
	if *inputFile != "" {
		cfg.Audio.Source = yndetect.SourceReplay
		cfg.Audio.ReplayFile = *inputFile
	}
	if *prbs {
		cfg.Audio.Source = yndetect.SourcePRBS
	}
	if *recordFile != "" {
		cfg.Audio.RecordFile = *recordFile
	}
	if *csvFile != "" {
		cfg.Debug.CSVFile = *csvFile
	}
	if *route != "" {
		cfg.Pipeline.DebugRoute = *route
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = *metricsAddr
	}

	if *response != "" {
		if err := printResponse(*response, cfg); err != nil {
			log.Fatalf("Response measurement failed: %v", err)
		}
		return
	}

	// 3. 初始化系统
	detector, err := yndetect.NewDetector(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := detector.Start(); err != nil {
		log.Fatalf("System start failed: %v", err)
	}
	defer detector.Stop()

	// 4. 信号和控制台输入
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Println("System Ready. (Type 'stats' for counters, 'exit' to quit)")

		for scanner.Scan() {
			input := strings.ToLower(strings.TrimSpace(scanner.Text()))
			switch input {
			case "":
				continue
			case "exit", "quit":
				stop()
				return
			case "stats":
				x := detector.Exchange()
				rx, tx := x.Overruns()
				fmt.Printf("[STATS] cycles=%d overruns rx=%d tx=%d output=%s\n", x.Cycles(), rx, tx, detector.Pipeline().Output())
			default:
				fmt.Println("Unknown command.")
			}
			fmt.Print("> ")
		}
	}()

	// 5. 阻塞运行，直到信号或数据结束
	if err := detector.Run(ctx); err != nil {
		log.Printf("Detector stopped: %v", err)
	}

	st := detector.Stats()
	fmt.Println("\nShutting down...")
	fmt.Printf("Cycles: %d, overruns rx=%d tx=%d, worst cycle %v (deadline %v)\n",
		st.Cycles, st.RxOverruns, st.TxOverruns, st.WorstCycle, detector.Period())
	fmt.Printf("Peak input RMS: %.1f, peak energy ratio: %.3f\n", st.PeakRMS, st.PeakRatio)
}

// printResponse 测量并打印一张系数表的幅频响应
func printResponse(name string, cfg *yndetect.Config) error {
	var coeffs []float32
	switch name {
	case "lowpass":
		coeffs = Filters.LowPassCoeffs[:]
	case "highpass":
		coeffs = Filters.HighPassCoeffs[:]
	default:
		return fmt.Errorf("%w: %q", yndetect.ErrUnknownDebugRoute, name)
	}

	resp, err := yndetect.MeasureResponse(coeffs, cfg.Pipeline.SampleRate, cfg.Audio.PRBSAmplitude)
	if err != nil {
		return err
	}

	fmt.Printf("%s response (%d taps, %d Hz)\n", name, len(coeffs), cfg.Pipeline.SampleRate)
	for f := 250.0; f <= float64(cfg.Pipeline.SampleRate)/2; f += 250 {
		fmt.Printf("%6.0f Hz  %7.2f dB\n", f, resp.GainDB(f))
	}
	return nil
}
