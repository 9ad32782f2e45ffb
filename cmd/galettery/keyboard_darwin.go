//go:build darwin

package main

import "golang.org/x/sys/unix"

// enableCbreak disables line buffering and echo so single keys can be read
// without Enter
func enableCbreak(fd int) error {
	state, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return err
	}
	state.Lflag &^= unix.ICANON | unix.ECHO
	state.Cc[unix.VMIN] = 1
	state.Cc[unix.VTIME] = 0
	return unix.IoctlSetTermios(fd, unix.TIOCSETA, state)
}
