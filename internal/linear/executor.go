package linear

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/steveyegge/linear-cli/internal/telemetry"
)

// Operation is one GraphQL query or mutation with its resolved variables.
type Operation struct {
	Name      string
	Query     string
	Variables map[string]any
}

// Executor drives operations through Retry, Transport and Classify. Each
// Execute call owns its own retry state, so concurrent calls never affect
// each other.
type Executor struct {
	transport *Transport
	policy    RetryPolicy
	logger    *slog.Logger
	inst      *telemetry.APIInstruments
}

// NewExecutor creates an executor. A nil logger discards output.
func NewExecutor(transport *Transport, policy RetryPolicy, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		transport: transport,
		policy:    policy,
		logger:    logger,
		inst:      telemetry.NewAPIInstruments(),
	}
}

// Execute runs op and decodes its data payload into out (which may be nil).
// Every error returned is an *APIError.
func (e *Executor) Execute(ctx context.Context, op Operation, out any) error {
	ctx, span, start := e.inst.Start(ctx, op.Name)

	req := Request{Query: op.Query, Variables: op.Variables}
	if op.Name != "" {
		name := op.Name
		req.OperationName = &name
	}

	policy := e.policy
	notify := policy.Notify
	policy.Notify = func(err error, attempt int, delay time.Duration) {
		kind := KindOf(err).String()
		e.logger.Debug("retrying linear request",
			"operation", op.Name, "attempt", attempt, "kind", kind, "delay", delay)
		e.inst.Retry(ctx, op.Name, kind, delay)
		if notify != nil {
			notify(err, attempt, delay)
		}
	}

	resp, err := Retry(ctx, policy, func(ctx context.Context, attempt int) (*Response, error) {
		began := time.Now()
		resp, err := e.transport.Do(ctx, req)
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		e.logger.Debug("linear request",
			"operation", op.Name, "attempt", attempt, "status", status, "elapsed", time.Since(began))
		e.inst.Request(ctx, op.Name, attempt, status)
		if apiErr := Classify(resp, err); apiErr != nil {
			return nil, apiErr
		}
		return resp, nil
	})

	if err == nil && out != nil {
		if uerr := json.Unmarshal(resp.Envelope.Data, out); uerr != nil {
			err = &APIError{
				Kind:       KindGraphQLValidation,
				Message:    fmt.Sprintf("decode %s response: %v", op.Name, uerr),
				StatusCode: resp.StatusCode,
				Err:        uerr,
			}
		}
	}
	if err != nil {
		e.logger.Debug("linear operation failed", "operation", op.Name, "error", err)
	}
	e.inst.End(ctx, span, start, op.Name, err)
	return err
}

// Do executes op and decodes its data payload into a T.
func Do[T any](ctx context.Context, e *Executor, op Operation) (T, error) {
	var out T
	err := e.Execute(ctx, op, &out)
	return out, err
}
