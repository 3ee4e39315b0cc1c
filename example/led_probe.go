package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"yndetect"
)

func main() {
	// 1. 配置串口参数
	portName := flag.String("port", "/dev/ttyUSB0", "Serial port of the indicator board")
	baudRate := flag.Int("baud", 115200, "Baud rate")
	flag.Parse()

	fmt.Printf("Connecting to indicator board on %s...\n", *portName)

	// 2. 创建指示灯实例
	led := yndetect.NewSerialIndicator(*portName, *baudRate)

	// 3. 打开连接 (所有灯熄灭)
	if err := led.Open(); err != nil {
		log.Fatalf("Failed to open serial port: %v\n", err)
	}
	defer led.Close()
	fmt.Println("Connected. Commands: yes, no, blue, off, read")
	fmt.Println("Type 'exit' or 'quit' to stop.")

	// 4. 循环读取控制台输入
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		var err error
		switch input {
		case "yes":
			err = led.Show(yndetect.DecisionYes)
		case "no":
			err = led.Show(yndetect.DecisionNo)
		case "blue":
			err = led.SetLEDs(yndetect.LEDBlue)
		case "off":
			err = led.SetLEDs(0)
		case "read":
			var mask byte
			mask, err = led.ReadLEDs()
			if err == nil {
				fmt.Printf("LEDs: green=%v red=%v blue=%v\n",
					mask&yndetect.LEDGreen != 0, mask&yndetect.LEDRed != 0, mask&yndetect.LEDBlue != 0)
			}
		default:
			fmt.Println("Unknown command.")
			continue
		}
		if err != nil {
			log.Printf("Error: %v\n", err)
		}
	}

	fmt.Println("Bye.")
}
