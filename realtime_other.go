//go:build !linux

package yndetect

import "log"

func lockMemory() error {
	log.Printf("Warning: memory locking is only supported on linux")
	return nil
}

func unlockMemory() {}
