package coordination

import (
	"context"
	"flag"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/grafana/dskit/services"
	"go.uber.org/atomic"
)

// Config configures a worker's coordination client.
type Config struct {
	// WorkerAddr is the address this worker sends coordination messages
	// from.
	WorkerAddr string `yaml:"worker_addr"`

	// HeartbeatInterval is how often the worker announces itself to the
	// controller.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// RegisterFlags registers flags with the default prefix.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("coordination.", f)
}

// RegisterFlagsWithPrefix registers flags with the given prefix.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.WorkerAddr, prefix+"worker-addr", "", "Address this worker sends coordination messages from.")
	f.DurationVar(&cfg.HeartbeatInterval, prefix+"heartbeat-interval", 5*time.Second, "How often the worker sends heartbeats to the controller.")
}

// Sender delivers coordination messages to the controller.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Heartbeater periodically sends heartbeat envelopes to the controller for
// as long as the service is running. The epoch carried in the envelopes can
// be updated concurrently when the controller hands out a new one.
type Heartbeater struct {
	services.Service

	cfg    Config
	sender Sender
	logger log.Logger
	epoch  atomic.Uint64
}

// NewHeartbeater creates a new Heartbeater. The returned service must be
// started by the caller.
func NewHeartbeater(cfg Config, sender Sender, logger log.Logger) *Heartbeater {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	h := &Heartbeater{
		cfg:    cfg,
		sender: sender,
		logger: log.With(logger, "component", "heartbeater"),
	}
	h.Service = services.NewTimerService(cfg.HeartbeatInterval, nil, h.iteration, nil)
	return h
}

// SetEpoch updates the epoch carried in subsequent heartbeats.
func (h *Heartbeater) SetEpoch(epoch Epoch) {
	h.epoch.Store(uint64(epoch))
}

func (h *Heartbeater) iteration(ctx context.Context) error {
	msg := NewHeartbeat(h.cfg.WorkerAddr, Epoch(h.epoch.Load()))
	if err := h.sender.Send(ctx, msg); err != nil {
		// Heartbeats are periodic; a delivery failure is logged and retried
		// on the next tick rather than stopping the service.
		level.Warn(h.logger).Log("msg", "failed to send heartbeat", "err", err)
	}
	return nil
}
