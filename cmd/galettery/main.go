package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/galettery/galettery/internal/app"
	"github.com/galettery/galettery/internal/auth"
	"github.com/galettery/galettery/internal/config"
	"github.com/galettery/galettery/internal/logger"
	"github.com/galettery/galettery/pkg/backend"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

// showBanner prints the logo in a box
func showBanner() {
	width := 62
	border := strings.Repeat("═", width)

	logo := []string{
		"     ____       _      _   _                      ",
		"    / ___| __ _| | ___| |_| |_ ___ _ __ _   _     ",
		"   | |  _ / _` | |/ _ \\ __| __/ _ \\ '__| | | |    ",
		"   | |_| | (_| | |  __/ |_| ||  __/ |  | |_| |    ",
		"    \\____|\\__,_|_|\\___|\\__|\\__\\___|_|   \\__, |    ",
		"                                        |___/     ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		for len(line) < width {
			line += " "
		}
		fmt.Printf("  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) {
	var next string
	switch appLog.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	case "ERROR":
		next = "debug"
	default:
		next = "info"
	}

	appLog.SetLevel(logger.ParseLevel(next))
	fmt.Printf("%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Galettery - ordering server for snack restaurants

Usage:
  galettery [options]

Options:
  -port int         HTTP server port (default 8081)
  -db string        SQLite database path (default "galettery.db")
  -adminpw str      Staff password or bcrypt hash (auto-generated if not set)
  -loglevel str     Log level: debug, info, warn, error (default "info")
  -logformat str    Log format: text, json (default "text")
  -baseurl str      Public URL used in menu QR codes
  -backend str      Catalog gateway URL
  -backendkey str   Catalog gateway API key
  -nats str         NATS server URL for order events
  -templates str    Directory of cuisine template YAML files (default "templates")
  -sessionttl dur   Idle lifetime of a customization session (default 30m)
  -noanimate        Skip the startup banner
  -nokeyboard       Disable keyboard shortcuts
  -version          Show version and exit

Every option can also be set with a GALETTERY_* environment variable
(GALETTERY_PORT, GALETTERY_DB, GALETTERY_NATS_URL, ...) or a .env file.

Examples:
  galettery                                   # Run on port 8081 with galettery.db
  galettery -port 8080 -db /data/shop.db      # Custom port and database
  galettery -nats nats://localhost:4222       # Publish order events
  GALETTERY_ENV=production galettery          # Ignore .env

`)
}

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(os.Args[1:], io.Discard)
	if errors.Is(err, flag.ErrHelp) {
		usage()
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		usage()
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("galettery %s\n", version)
		os.Exit(0)
	}

	if !cfg.NoAnimate {
		showBanner()
	}

	// Setup staff authentication
	password := cfg.AdminPassword
	generated := password == ""
	if generated {
		password = auth.GeneratePassword()
	}
	staffAuth, err := auth.New(password)
	if err != nil {
		log.Fatal("Failed to set up staff authentication:", err)
	}

	appLog := logger.NewWithOptions(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
	})

	// The gateway URL comes from config or from the dashboard settings
	backendClient := backend.NewHTTPClient(cfg.BackendURL, appLog)

	a, err := app.New(appLog, cfg, backendClient, staffAuth)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}

	if generated {
		appLog.Info("Staff password", "password", password)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(cfg.Addr())
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	quit := make(chan struct{})
	if !cfg.NoKeyboard {
		printKeyboardHelp()
		go listenForKeyboard(appLog, quit)
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		a.Close()
		if err != nil {
			log.Fatal(err)
		}
	case sig := <-signals:
		appLog.Info("Shutting down", "signal", sig.String())
		a.Close()
	case <-quit:
		a.Close()
	}
}
