//go:build linux

package yndetect

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// lockMemory 锁定当前和以后的所有页，处理循环中不会因为缺页而超时
func lockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall: %w", err)
	}
	return nil
}

func unlockMemory() {
	_ = unix.Munlockall()
}
