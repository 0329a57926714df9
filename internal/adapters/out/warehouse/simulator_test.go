package warehouse_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"orderflow/internal/adapters/out/warehouse"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pickRequest(refrigerated bool, quantities ...int) ports.PickRequest {
	req := ports.PickRequest{
		OrderID:      kernel.NewUUID(),
		OrderNumber:  "ORD-20250602140000-ABCD",
		Refrigerated: refrigerated,
	}
	for _, q := range quantities {
		req.Lines = append(req.Lines, ports.PickLine{ItemID: kernel.NewUUID(), Name: "item", Quantity: q})
	}
	return req
}

func TestSimulator_PickAndPack(t *testing.T) {
	tests := []struct {
		name    string
		opts    []warehouse.Option
		req     ports.PickRequest
		wantErr error
	}{
		{
			name: "every line picked",
			opts: []warehouse.Option{warehouse.WithLatency(time.Millisecond), warehouse.WithPickers(2)},
			req:  pickRequest(false, 1, 2, 3),
		},
		{
			name:    "no lines",
			req:     pickRequest(false),
			wantErr: warehouse.ErrNothingToPick,
		},
		{
			name:    "refrigerated without cold storage",
			opts:    []warehouse.Option{warehouse.WithoutColdStorage()},
			req:     pickRequest(true, 1),
			wantErr: warehouse.ErrNoColdStorage,
		},
		{
			name: "shelf stable without cold storage",
			opts: []warehouse.Option{warehouse.WithoutColdStorage()},
			req:  pickRequest(false, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := warehouse.NewSimulator(discardLogger(), tt.opts...)
			err := s.PickAndPack(t.Context(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSimulator_PickAndPack_InvalidQuantity(t *testing.T) {
	s := warehouse.NewSimulator(discardLogger())
	err := s.PickAndPack(t.Context(), pickRequest(false, 1, 0))
	assert.ErrorContains(t, err, "quantity 0")
}

func TestSimulator_PickAndPack_HonoursContext(t *testing.T) {
	s := warehouse.NewSimulator(discardLogger(), warehouse.WithLatency(time.Hour))
	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	err := s.PickAndPack(ctx, pickRequest(false, 1))

	require.ErrorIs(t, err, context.DeadlineExceeded)
}
