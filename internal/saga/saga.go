// Package saga executes an ordered list of steps whose side effects span
// subsystems that do not share a transaction boundary.
//
// Each step pairs a forward action with an optional compensation. The
// coordinator records which compensable steps completed; when a later step
// fails, it runs the recorded compensations in reverse order and returns the
// original error. This approximates atomicity without a distributed
// transaction.
//
// There is no durable execution log. If the process dies between a step and
// its compensation, the partial work stays behind for manual reconciliation;
// compensation failures are reported through a hook for the same reason.
package saga

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	dErrors "registrar/pkg/domain-errors"
)

// Step is one unit of forward progress in a saga.
type Step struct {
	// Name identifies the step in logs, spans, and compensation reports.
	Name string

	// Run performs the step's side effect.
	Run func(ctx context.Context) error

	// Compensate semantically undoes Run. It is recorded only after Run
	// succeeds and executed only during an unwind. A nil Compensate marks a
	// step whose effect is never rolled back once made.
	Compensate func(ctx context.Context) error

	// BestEffort marks a step whose failure is recorded as a warning instead
	// of failing the saga. Best-effort failures never trigger an unwind.
	BestEffort bool
}

// Warning records a best-effort step that failed.
type Warning struct {
	Step string
	Err  error
}

// CompensationFailure reports a compensation that itself failed during an
// unwind. The original step error is still returned to the caller; these
// reports exist so orphaned resources can be reconciled by hand.
type CompensationFailure struct {
	// Step whose compensation failed.
	Step string
	// TriggeredBy is the step whose failure started the unwind.
	TriggeredBy string
	Err         error
}

// Result carries the non-error outcomes of a run.
type Result struct {
	// Completed lists steps whose Run succeeded, in execution order.
	Completed []string
	// Warnings lists best-effort steps that failed.
	Warnings []Warning
}

// Coordinator runs sagas. The zero value is not usable; construct with New.
type Coordinator struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	onCompFail func(ctx context.Context, failure CompensationFailure)
}

// Option configures a Coordinator.
type Option func(c *Coordinator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithTracer sets the tracer used for per-step spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Coordinator) { c.tracer = tracer }
}

// WithCompensationFailureHandler registers a hook invoked for every
// compensation that fails during an unwind.
func WithCompensationFailureHandler(fn func(ctx context.Context, failure CompensationFailure)) Option {
	return func(c *Coordinator) { c.onCompFail = fn }
}

// New constructs a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		logger: slog.Default(),
		tracer: otel.Tracer("registrar/internal/saga"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes steps in order.
//
// On a step failure, compensations recorded so far run in reverse order and
// the step's error is returned along with the partial Result. Best-effort
// step failures are collected into Result.Warnings and do not stop the saga.
// A panic inside a step unwinds like a failure and surfaces as an internal
// error rather than crashing the request.
func (c *Coordinator) Run(ctx context.Context, name string, steps []Step) (Result, error) {
	var result Result
	var recorded []Step

	ctx, span := c.tracer.Start(ctx, "saga."+name)
	defer span.End()

	for _, step := range steps {
		err := c.runStep(ctx, name, step)
		if err != nil {
			if step.BestEffort {
				c.logger.WarnContext(ctx, "saga step failed, continuing",
					"saga", name,
					"step", step.Name,
					"error", err.Error(),
				)
				result.Warnings = append(result.Warnings, Warning{Step: step.Name, Err: err})
				continue
			}
			c.logger.ErrorContext(ctx, "saga step failed, compensating",
				"saga", name,
				"step", step.Name,
				"completed", len(recorded),
				"error", err.Error(),
			)
			c.unwind(ctx, name, step.Name, recorded)
			return result, err
		}

		result.Completed = append(result.Completed, step.Name)
		if step.Compensate != nil {
			recorded = append(recorded, step)
		}
	}

	return result, nil
}

// runStep executes a single step inside a span, converting panics into
// internal errors so the unwind still runs.
func (c *Coordinator) runStep(ctx context.Context, saga string, step Step) (err error) {
	ctx, span := c.tracer.Start(ctx, "saga."+saga+"."+step.Name)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = dErrors.Wrap(fmt.Errorf("panic: %v", r), dErrors.CodeInternal,
				fmt.Sprintf("step %s panicked", step.Name))
		}
	}()

	return step.Run(ctx)
}

// unwind runs recorded compensations in reverse order. Compensations are
// best effort: a failure is reported and the unwind continues, because a
// half-finished unwind is still better than none.
func (c *Coordinator) unwind(ctx context.Context, saga, triggeredBy string, recorded []Step) {
	// Compensations must run even when the step failed because the request
	// context was cancelled.
	ctx = context.WithoutCancel(ctx)

	for i := len(recorded) - 1; i >= 0; i-- {
		step := recorded[i]
		if err := step.Compensate(ctx); err != nil {
			c.logger.ErrorContext(ctx, "saga compensation failed",
				"saga", saga,
				"step", step.Name,
				"triggered_by", triggeredBy,
				"error", err.Error(),
			)
			if c.onCompFail != nil {
				c.onCompFail(ctx, CompensationFailure{
					Step:        step.Name,
					TriggeredBy: triggeredBy,
					Err:         err,
				})
			}
			continue
		}
		c.logger.InfoContext(ctx, "saga step compensated",
			"saga", saga,
			"step", step.Name,
			"triggered_by", triggeredBy,
		)
	}
}
