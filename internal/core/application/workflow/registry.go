package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AnyCategory registers a handler for every category without its own.
const AnyCategory = "*"

// ErrCallbackInFlight is returned when another worker still runs the same
// callback. The engine retries it later.
var ErrCallbackInFlight = errors.New("callback already in flight")

// Middleware wraps the handler of step.
type Middleware func(step string, next ports.WorkHandler) ports.WorkHandler

type registryKey struct {
	category string
	step     string
}

// Registry resolves work handlers by category and step. Middlewares apply
// to every resolved handler, the first registered being the outermost.
type Registry struct {
	handlers    map[registryKey]ports.WorkHandler
	middlewares []Middleware
}

var _ ports.WorkHandlerResolver = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[registryKey]ports.WorkHandler)}
}

// Register binds h to step for category, or for every category with AnyCategory.
func (r *Registry) Register(category, step string, h ports.WorkHandler) *Registry {
	r.handlers[registryKey{category: category, step: step}] = h
	return r
}

func (r *Registry) Use(mw ...Middleware) *Registry {
	r.middlewares = append(r.middlewares, mw...)
	return r
}

func (r *Registry) Resolve(category, step string) (ports.WorkHandler, error) {
	h, ok := r.handlers[registryKey{category: category, step: step}]
	if !ok {
		h, ok = r.handlers[registryKey{category: AnyCategory, step: step}]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoHandler, category, step)
	}
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](step, h)
	}
	return h, nil
}

// Deduplicate lets one delivery of a callback run at a time. The claim on
// the execution id is held for at most ttl and released when the handler returns.
func Deduplicate(d ports.CallbackDeduplicator, ttl time.Duration, logger *slog.Logger) Middleware {
	return func(step string, next ports.WorkHandler) ports.WorkHandler {
		return ports.WorkHandlerFunc(func(ctx context.Context, exec ports.Execution) error {
			key := "orderflow:callback:" + exec.ID()
			claimed, err := d.Claim(ctx, key, ttl)
			if err != nil {
				return err
			}
			if !claimed {
				return fmt.Errorf("%w: %s %s", ErrCallbackInFlight, step, exec.ID())
			}

			defer func() {
				// the handler's context may already be done
				if releaseErr := d.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
					logger.WarnContext(ctx, "callback claim not released",
						"key", key,
						"error", releaseErr)
				}
			}()
			return next.Execute(ctx, exec)
		})
	}
}

// Trace runs every handler in a span named after its step.
func Trace(tracer trace.Tracer) Middleware {
	return func(step string, next ports.WorkHandler) ports.WorkHandler {
		return ports.WorkHandlerFunc(func(ctx context.Context, exec ports.Execution) error {
			ctx, span := tracer.Start(ctx, "workflow."+step)
			defer span.End()

			span.SetAttributes(
				attribute.String("workflow.step", step),
				attribute.String("workflow.execution_id", exec.ID()),
				attribute.String("workflow.process_instance_id", exec.ProcessInstanceID()),
				attribute.String("order.id", exec.BusinessKey()),
			)

			err := next.Execute(ctx, exec)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attribute.Bool("workflow.business_failure", errors.Is(err, ports.ErrStepFailed)))
				return err
			}
			span.SetStatus(codes.Ok, "")
			return nil
		})
	}
}
