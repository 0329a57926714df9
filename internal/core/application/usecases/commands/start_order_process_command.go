package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrStartOrderProcessCommandIsNotConstructed = errors.New(
	"StartOrderProcessCommand must be created via NewStartOrderProcessCommand constructor",
)

// StartOrderProcessCommand (re)starts the lifecycle process of a PENDING order
// whose start failed at placement.
type StartOrderProcessCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewStartOrderProcessCommand(orderID kernel.UUID) (StartOrderProcessCommand, error) {
	if err := orderID.Validate(); err != nil {
		return StartOrderProcessCommand{}, err
	}
	return StartOrderProcessCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c StartOrderProcessCommand) Validate() error {
	return c.guard.Validate(ErrStartOrderProcessCommandIsNotConstructed)
}

func (c StartOrderProcessCommand) OrderID() kernel.UUID {
	return c.orderID
}

type StartOrderProcessCommandHandler struct {
	starter ProcessStarter
}

func NewStartOrderProcessCommandHandler(starter ProcessStarter) StartOrderProcessCommandHandler {
	return StartOrderProcessCommandHandler{starter: starter}
}

// Handle returns the process reference. Starting twice yields the same reference.
func (h *StartOrderProcessCommandHandler) Handle(ctx context.Context, cmd StartOrderProcessCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}
	return h.starter.StartProcess(ctx, cmd.OrderID())
}
