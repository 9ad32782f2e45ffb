//go:build linux

package main

import (
	"syscall"
	"unsafe"
)

// enableCbreak disables line buffering and echo so single keys can be read
// without Enter. Output processing stays on so \n still works.
func enableCbreak(fd int) error {
	var state syscall.Termios
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), syscall.TCGETS, uintptr(unsafe.Pointer(&state))); errno != 0 {
		return errno
	}
	state.Lflag &^= syscall.ICANON | syscall.ECHO
	state.Cc[syscall.VMIN] = 1
	state.Cc[syscall.VTIME] = 0
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), syscall.TCSETS, uintptr(unsafe.Pointer(&state))); errno != 0 {
		return errno
	}
	return nil
}
