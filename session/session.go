// Package session owns the worker subprocess and its two communication
// pipes.
//
// A session creates the pipe pair, spawns the worker with the child ends
// handed off as well-known descriptors, and keeps exclusive ownership of
// the parent ends and the worker's process identity. Teardown is the End
// exchange, a termination signal, and a blocking reap; no pipe end stays
// open past it.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/cea-sec/usbsas/client"
	"github.com/cea-sec/usbsas/comm"
	"github.com/cea-sec/usbsas/iox"
	"github.com/cea-sec/usbsas/log"
	"github.com/cea-sec/usbsas/metrics"
)

// ErrWorkerNotFound is returned when the worker binary does not exist at
// the configured path. Checked before any process is created.
var ErrWorkerNotFound = errors.New("worker binary not found")

// Config configures a worker session.
type Config struct {
	// WorkerPath is the path to the worker binary (required).
	WorkerPath string
	// WorkerConfigPath is passed to the worker as `-c <path>`.
	WorkerConfigPath string
	// Env is extra environment entries for the worker, KEY=VALUE form.
	Env []string
	// ReadTimeout bounds each response read. Zero means block indefinitely,
	// matching the worker's own pacing.
	ReadTimeout time.Duration
	// Logger is optional; when nil a session-scoped logger is created.
	Logger *log.Logger
	// Collector is optional.
	Collector *metrics.Collector
}

// Session is a running worker connection. The two parent pipe ends and the
// worker process identity are exclusively owned here; no other component
// may touch them concurrently.
type Session struct {
	id        string
	cmd       *exec.Cmd
	client    *client.Client
	readEnd   *os.File // worker-to-client
	writeEnd  *os.File // client-to-worker
	stderr    bytes.Buffer
	logger    *log.Logger
	collector *metrics.Collector

	mu     sync.Mutex
	closed bool
}

// Start spawns the worker and wires the transport.
//
// Both pipe pairs are created first; the child ends are passed through
// cmd.ExtraFiles (becoming descriptors 3 and 4 in the child, advertised via
// the pipe fd env vars), while the parent ends stay close-on-exec and never
// leak into the child. A spawn failure is fatal: no partial session is ever
// returned.
func Start(ctx context.Context, cfg Config) (*Session, error) {
	if _, err := os.Stat(cfg.WorkerPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkerNotFound, cfg.WorkerPath)
	}

	id := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewLogger(id, cfg.WorkerPath)
	}

	// child-to-parent and parent-to-child pipes
	c2pRead, c2pWrite, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create worker output pipe: %w", err)
	}
	p2cRead, p2cWrite, err := os.Pipe()
	if err != nil {
		iox.CloseAll(c2pRead, c2pWrite)
		return nil, fmt.Errorf("create worker input pipe: %w", err)
	}

	args := []string{}
	if cfg.WorkerConfigPath != "" {
		args = append(args, "-c", cfg.WorkerConfigPath)
	}
	cmd := exec.CommandContext(ctx, cfg.WorkerPath, args...)

	// ExtraFiles[0] and [1] become fds 3 and 4 in the child.
	cmd.ExtraFiles = []*os.File{p2cRead, c2pWrite}
	cmd.Env = append(os.Environ(), cfg.Env...)
	cmd.Env = append(cmd.Env,
		comm.InputPipeFdVar+"="+strconv.Itoa(3),
		comm.OutputPipeFdVar+"="+strconv.Itoa(4),
	)

	s := &Session{
		id:        id,
		cmd:       cmd,
		readEnd:   c2pRead,
		writeEnd:  p2cWrite,
		logger:    logger,
		collector: cfg.Collector,
	}
	cmd.Stderr = &s.stderr

	if err := cmd.Start(); err != nil {
		cfg.Collector.IncWorkerLaunchFailure()
		iox.CloseAll(c2pRead, c2pWrite, p2cRead, p2cWrite)
		return nil, fmt.Errorf("start worker: %w", err)
	}
	cfg.Collector.IncWorkerLaunchSuccess()
	cfg.Collector.IncSessionStarted()

	// The child holds its own duplicates now.
	iox.CloseAll(p2cRead, c2pWrite)

	c := comm.New(c2pRead, p2cWrite, cfg.Collector)
	if cfg.ReadTimeout > 0 {
		c.SetReadTimeout(cfg.ReadTimeout)
	}
	s.client = client.New(c, logger, cfg.Collector)

	logger.Info("worker started", map[string]any{
		"pid":    cmd.Process.Pid,
		"worker": cfg.WorkerPath,
	})

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Pid returns the worker's process id.
func (s *Session) Pid() int {
	return s.cmd.Process.Pid
}

// Client returns the typed client bound to this session.
func (s *Session) Client() *client.Client {
	return s.client
}

// Stderr returns the worker's captured stderr output so far.
func (s *Session) Stderr() []byte {
	return s.stderr.Bytes()
}

// Close tears the session down: a best-effort End exchange, SIGTERM to the
// worker, a blocking reap of its exit status, then release of both parent
// pipe ends. Idempotent; later calls return nil.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	// The worker may already be gone (crash, earlier fatal transport
	// error); End failure is expected then and only logged.
	if err := s.client.End(); err != nil {
		s.logger.Warn("end exchange failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		s.logger.Debug("signal worker failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.cmd.Wait()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
				exitCode = status.ExitStatus()
			} else {
				exitCode = -1
			}
			err = nil
		}
	}

	iox.CloseAll(s.readEnd, s.writeEnd)
	s.collector.IncSessionEnded()

	fields := map[string]any{"exit_code": exitCode}
	if tail := s.stderr.Bytes(); len(tail) > 0 {
		fields["stderr"] = string(tail)
	}
	s.logger.Info("worker reaped", fields)

	if err != nil {
		return fmt.Errorf("wait worker: %w", err)
	}
	return nil
}
