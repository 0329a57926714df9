package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderflow/internal/core/application/workflow"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func named(name string, calls *[]string) ports.WorkHandler {
	return ports.WorkHandlerFunc(func(context.Context, ports.Execution) error {
		*calls = append(*calls, name)
		return nil
	})
}

func TestRegistry_Resolve(t *testing.T) {
	var calls []string
	r := workflow.NewRegistry().
		Register(workflow.AnyCategory, "validate", named("default-validate", &calls)).
		Register("food", "validate", named("food-validate", &calls))

	for _, category := range []string{"food", "clothing"} {
		h, err := r.Resolve(category, "validate")
		require.NoError(t, err)
		require.NoError(t, h.Execute(t.Context(), &fakeExecution{vars: ports.Variables{}}))
	}
	assert.Equal(t, []string{"food-validate", "default-validate"}, calls)

	_, err := r.Resolve("food", "teleport")
	require.ErrorIs(t, err, workflow.ErrNoHandler)
	require.ErrorIs(t, err, ports.ErrStepFailed)
}

func TestRegistry_MiddlewareOrder(t *testing.T) {
	var calls []string
	wrap := func(name string) workflow.Middleware {
		return func(step string, next ports.WorkHandler) ports.WorkHandler {
			return ports.WorkHandlerFunc(func(ctx context.Context, exec ports.Execution) error {
				calls = append(calls, name+":"+step)
				return next.Execute(ctx, exec)
			})
		}
	}
	r := workflow.NewRegistry().
		Register(workflow.AnyCategory, "pay", named("pay", &calls)).
		Use(wrap("outer"), wrap("inner"))

	h, err := r.Resolve("electronics", "pay")
	require.NoError(t, err)
	require.NoError(t, h.Execute(t.Context(), &fakeExecution{vars: ports.Variables{}}))

	assert.Equal(t, []string{"outer:pay", "inner:pay", "pay"}, calls)
}

func TestDeduplicate(t *testing.T) {
	const ttl = time.Minute
	exec := &fakeExecution{id: "job-9", vars: ports.Variables{}}
	key := "orderflow:callback:job-9"

	t.Run("runs and releases the claim", func(t *testing.T) {
		var calls []string
		d := new(MockDeduplicator)
		d.On("Claim", mock.Anything, key, ttl).Return(true, nil).Once()
		d.On("Release", mock.Anything, key).Return(nil).Once()

		h := workflow.Deduplicate(d, ttl, discardLogger())("ship", named("ship", &calls))
		require.NoError(t, h.Execute(t.Context(), exec))

		assert.Equal(t, []string{"ship"}, calls)
		d.AssertExpectations(t)
	})

	t.Run("releases the claim when the handler fails", func(t *testing.T) {
		d := new(MockDeduplicator)
		d.On("Claim", mock.Anything, key, ttl).Return(true, nil).Once()
		d.On("Release", mock.Anything, key).Return(nil).Once()
		boom := errors.New("boom")

		h := workflow.Deduplicate(d, ttl, discardLogger())("ship",
			ports.WorkHandlerFunc(func(context.Context, ports.Execution) error { return boom }))

		require.ErrorIs(t, h.Execute(t.Context(), exec), boom)
		d.AssertExpectations(t)
	})

	t.Run("concurrent delivery is retried later", func(t *testing.T) {
		var calls []string
		d := new(MockDeduplicator)
		d.On("Claim", mock.Anything, key, ttl).Return(false, nil).Once()

		h := workflow.Deduplicate(d, ttl, discardLogger())("ship", named("ship", &calls))
		err := h.Execute(t.Context(), exec)

		require.ErrorIs(t, err, workflow.ErrCallbackInFlight)
		assert.NotErrorIs(t, err, ports.ErrStepFailed)
		assert.Empty(t, calls)
		d.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})
}

func TestTrace_RecordsSpanPerStep(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("orderflow/workflow")

	exec := &fakeExecution{id: "job-3", instanceID: "pi-3", businessKey: "order-3", vars: ports.Variables{}}

	ok := workflow.Trace(tracer)("validate",
		ports.WorkHandlerFunc(func(context.Context, ports.Execution) error { return nil }))
	require.NoError(t, ok.Execute(t.Context(), exec))

	failing := workflow.Trace(tracer)("pay",
		ports.WorkHandlerFunc(func(context.Context, ports.Execution) error { return workflow.ErrPaymentFailed }))
	require.ErrorIs(t, failing.Execute(t.Context(), exec), workflow.ErrPaymentFailed)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "workflow.validate", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("workflow.execution_id", "job-3"))
	assert.Contains(t, spans[0].Attributes(), attribute.String("order.id", "order-3"))

	assert.Equal(t, "workflow.pay", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, spans[1].Attributes(), attribute.Bool("workflow.business_failure", true))
}
