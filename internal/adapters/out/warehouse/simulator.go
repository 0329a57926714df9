// Package warehouse simulates picking and packing. Each line is picked from
// its own bin concurrently; the order is packed once every line is picked.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/ports"

	"golang.org/x/sync/errgroup"
)

const defaultPickers = 4

var (
	ErrNothingToPick                 = errors.New("nothing to pick")
	ErrNoColdStorage                 = errors.New("no refrigerated packing station")
	_                ports.Warehouse = (*Simulator)(nil)
)

type Option func(*Simulator)

// WithLatency delays every line pick by d.
func WithLatency(d time.Duration) Option {
	return func(s *Simulator) { s.latency = d }
}

// WithPickers limits how many lines are picked at the same time.
func WithPickers(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.pickers = n
		}
	}
}

// WithoutColdStorage makes every refrigerated order fail to pack.
func WithoutColdStorage() Option {
	return func(s *Simulator) { s.noColdStorage = true }
}

type Simulator struct {
	latency       time.Duration
	pickers       int
	noColdStorage bool
	logger        *slog.Logger
}

func NewSimulator(logger *slog.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		pickers: defaultPickers,
		logger:  logger.With("component", "warehouse"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) PickAndPack(ctx context.Context, req ports.PickRequest) error {
	if len(req.Lines) == 0 {
		return fmt.Errorf("%w: order %s", ErrNothingToPick, req.OrderNumber)
	}
	if req.Refrigerated && s.noColdStorage {
		return fmt.Errorf("%w: order %s", ErrNoColdStorage, req.OrderNumber)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.pickers)
	for _, line := range req.Lines {
		g.Go(func() error {
			return s.pick(ctx, line)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("pick order %s: %w", req.OrderNumber, err)
	}

	s.logger.InfoContext(ctx, "order packed",
		"order_number", req.OrderNumber,
		"lines", len(req.Lines),
		"refrigerated", req.Refrigerated)
	return nil
}

func (s *Simulator) pick(ctx context.Context, line ports.PickLine) error {
	if line.Quantity <= 0 {
		return fmt.Errorf("line %s: quantity %d", line.Name, line.Quantity)
	}
	if s.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
