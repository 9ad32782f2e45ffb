//go:build !linux && !darwin

package main

// enableCbreak is a no-op; keys are read once Enter is pressed
func enableCbreak(fd int) error {
	return nil
}
