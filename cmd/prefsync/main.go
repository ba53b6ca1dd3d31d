package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/five82/prefsync/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	envFile := flag.String("env", ".env", "dotenv file with PREFSYNC_* variables (optional)")
	poll := flag.Duration("poll", 0, "sync interval, e.g. 30s (optional, defaults to config)")
	address := flag.String("address", "", "select this address on start (optional)")
	flag.Parse()

	if err := loadEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "prefsync: %v\n", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Address:    *address,
	}
	if *poll > 0 {
		opts.PollEvery = max(*poll, time.Second)
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "prefsync: %v\n", err)
		return 1
	}
	return 0
}

// loadEnv reads a dotenv file without overriding variables already set. A
// missing file is fine.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
