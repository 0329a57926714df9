// Package payment holds the payment gateway used outside of production: a
// simulator that charges after a configurable latency and declines amounts
// above a threshold.
package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	"golang.org/x/sync/singleflight"
)

const referenceLen = 8

var _ ports.PaymentGateway = (*Simulator)(nil)

type Option func(*Simulator)

// WithLatency delays every charge by d.
func WithLatency(d time.Duration) Option {
	return func(s *Simulator) { s.latency = d }
}

// WithDeclineAbove declines every charge with an amount greater than limit.
func WithDeclineAbove(limit kernel.Money) Option {
	return func(s *Simulator) { s.declineAbove = &limit }
}

func WithIDGenerator(ids kernel.IDGenerator) Option {
	return func(s *Simulator) { s.ids = ids }
}

// Simulator remembers the reference of every successful charge, so charging
// an order again returns the first reference.
type Simulator struct {
	latency      time.Duration
	declineAbove *kernel.Money
	ids          kernel.IDGenerator

	inflight singleflight.Group
	mu       sync.RWMutex
	charges  map[kernel.UUID]string
}

func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		ids:     kernel.RandomIDGenerator{},
		charges: make(map[kernel.UUID]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Charge(ctx context.Context, req ports.PaymentRequest) (string, error) {
	if ref, ok := s.reference(req.OrderID); ok {
		return ref, nil
	}

	// concurrent charges of one order share a single attempt
	v, err, _ := s.inflight.Do(req.OrderID.String(), func() (any, error) {
		if ref, ok := s.reference(req.OrderID); ok {
			return ref, nil
		}
		return s.charge(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Simulator) charge(ctx context.Context, req ports.PaymentRequest) (string, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if s.declineAbove != nil && req.Amount.GreaterThan(*s.declineAbove) {
		return "", fmt.Errorf("%w: amount %s exceeds limit %s", ports.ErrPaymentDeclined, req.Amount, *s.declineAbove)
	}

	hex := strings.ToUpper(strings.ReplaceAll(s.ids.NewID().String(), "-", ""))
	ref := "PAY-" + hex[:referenceLen]

	s.mu.Lock()
	s.charges[req.OrderID] = ref
	s.mu.Unlock()
	return ref, nil
}

func (s *Simulator) reference(orderID kernel.UUID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.charges[orderID]
	return ref, ok
}
