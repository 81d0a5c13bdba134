// Package main provides usbsas-mock, a stand-in worker binary.
//
// It speaks the full pipe protocol from a scripted device set, so the CLI
// and client library can be exercised without real hardware. The session
// package spawns it exactly like a real worker: pipes on the descriptors
// named by INPUT_PIPE_FD and OUTPUT_PIPE_FD, and a -c config argument.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cea-sec/usbsas/comm"
	"github.com/cea-sec/usbsas/log"
	"github.com/cea-sec/usbsas/mock"
)

func main() {
	// The config path is accepted for invocation compatibility with real
	// workers; the scripted state needs nothing from it.
	var (
		configPath  = flag.String("c", "", "worker config path (ignored)")
		statusDelay = flag.Duration("status-delay", 0, "pause between progress updates")
	)
	flag.Parse()
	_ = configPath

	logger := log.NewLogger("", "usbsas-mock")

	c, err := comm.FromEnv(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "usbsas-mock: %v\n", err)
		os.Exit(1)
	}

	worker := mock.NewWorker(c, mock.Options{
		StatusDelay: *statusDelay,
		Logger:      logger,
	})

	logger.Info("mock worker started", map[string]any{"pid": os.Getpid()})
	start := time.Now()

	if err := worker.Serve(); err != nil {
		logger.Error("serve failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	logger.Info("mock worker done", map[string]any{
		"uptime": time.Since(start).String(),
	})
}
