package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/galettery/galettery/internal/logger"
)

// listenForKeyboard reads single keys from the terminal until q or Ctrl+C,
// then closes quit
func listenForKeyboard(appLog *logger.SlogLogger, quit chan<- struct{}) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	oldState, err := term.GetState(fd)
	if err != nil {
		return
	}
	if err := enableCbreak(fd); err != nil {
		return
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		if !handleKey(strings.ToLower(string(buf[0])), appLog) {
			fmt.Printf("%sShutting down server...%s\n", yellow, reset)
			close(quit)
			return
		}
	}
}

// handleKey runs a shortcut and reports whether the server should keep running
func handleKey(key string, appLog *logger.SlogLogger) bool {
	switch key {
	case "h":
		if appLog.IsHTTPLoggingEnabled() {
			appLog.DisableHTTPLogging()
			fmt.Printf("%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			appLog.EnableHTTPLogging()
			fmt.Printf("%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		cycleLogLevel(appLog)
	case "?":
		printKeyboardHelp()
	case "q", "\x03": // Ctrl+C
		return false
	}
	return true
}
