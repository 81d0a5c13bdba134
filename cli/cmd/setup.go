package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cea-sec/usbsas/adapter"
	redisadapter "github.com/cea-sec/usbsas/adapter/redis"
	"github.com/cea-sec/usbsas/adapter/webhook"
	"github.com/cea-sec/usbsas/cli/config"
	"github.com/cea-sec/usbsas/metrics"
	"github.com/cea-sec/usbsas/session"
)

// Exit codes. Business errors from the worker and protocol/transport
// failures are distinguishable outcomes for scripting.
const (
	ExitOK       = 0
	ExitBusiness = 1
	ExitProtocol = 2
	ExitUsage    = 3
)

// sessionOptions is the resolved union of config file and flag values.
type sessionOptions struct {
	cfg         *config.Config
	workerPath  string
	workerCfg   string
	readTimeout time.Duration
}

// resolveOptions loads the config file (when given) and applies flag
// overrides. The worker path is the only required value.
func resolveOptions(c *cli.Context) (*sessionOptions, error) {
	opts := &sessionOptions{cfg: &config.Config{}}

	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, cli.Exit(err.Error(), ExitUsage)
		}
		opts.cfg = cfg
	}

	opts.workerPath = opts.cfg.Worker.Path
	if v := c.String("worker"); v != "" {
		opts.workerPath = v
	}
	opts.workerCfg = opts.cfg.Worker.ConfigPath
	if v := c.String("worker-config"); v != "" {
		opts.workerCfg = v
	}
	opts.readTimeout = opts.cfg.ReadTimeout.Duration
	if v := c.Duration("read-timeout"); v > 0 {
		opts.readTimeout = v
	}

	if opts.workerPath == "" {
		return nil, cli.Exit("no worker binary configured (--worker or worker.path)", ExitUsage)
	}

	return opts, nil
}

// startSession spawns the worker per the resolved options.
func startSession(c *cli.Context, opts *sessionOptions) (*session.Session, *metrics.Collector, error) {
	collector := metrics.NewCollector(opts.workerPath, "")

	sess, err := session.Start(c.Context, session.Config{
		WorkerPath:       opts.workerPath,
		WorkerConfigPath: opts.workerCfg,
		Env:              opts.cfg.Worker.Env,
		ReadTimeout:      opts.readTimeout,
		Collector:        collector,
	})
	if err != nil {
		return nil, nil, cli.Exit(err.Error(), ExitProtocol)
	}
	return sess, collector, nil
}

// newAdapter builds the configured report adapter, or nil when report
// delivery is not configured.
func newAdapter(cfg config.AdapterConfig) (adapter.Adapter, error) {
	retries := webhook.DefaultRetries
	if cfg.Retries != nil {
		retries = *cfg.Retries
	}

	switch cfg.Type {
	case "":
		return nil, nil
	case "webhook":
		return webhook.New(webhook.Config{
			URL:     cfg.URL,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	case "redis":
		return redisadapter.New(redisadapter.Config{
			URL:     cfg.URL,
			Channel: cfg.Channel,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unknown adapter type %q", cfg.Type)
	}
}
