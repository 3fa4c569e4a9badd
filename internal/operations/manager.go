package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"stocksentiment/internal/infrastructure"
)

// Manager runs pipeline steps one after another. At most one operation runs
// at a time.
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger

	mu      sync.RWMutex
	current *OperationState
	last    *OperationState
	wg      sync.WaitGroup
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   infrastructure.WithComponent(logger, "operations"),
	}
}

// Registry returns the step registry
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Execute runs the requested steps and waits for them to finish
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	state, steps, err := m.begin(req)
	if err != nil {
		return nil, err
	}
	err = m.run(ctx, state, steps)
	return state.Response(), err
}

// Start runs the requested steps in the background and returns the initial
// snapshot. The run is bound to ctx, not to the caller's lifetime.
func (m *Manager) Start(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	state, steps, err := m.begin(req)
	if err != nil {
		return nil, err
	}
	resp := state.Response()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		_ = m.run(ctx, state, steps)
	}()
	return resp, nil
}

// Wait blocks until background operations have finished
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Current returns a snapshot of the running operation
func (m *Manager) Current() (*OperationResponse, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, false
	}
	return m.current.Response(), true
}

// Last returns a snapshot of the most recently finished operation
func (m *Manager) Last() (*OperationResponse, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return nil, false
	}
	return m.last.Response(), true
}

// Running reports whether an operation is in progress
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

func (m *Manager) begin(req OperationRequest) (*OperationState, []Step, error) {
	steps, err := m.registry.Resolve(req.Steps)
	if err != nil {
		return nil, nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	state := NewOperationState(id)
	for _, step := range steps {
		state.AddStage(NewStepState(step.ID(), step.Name()))
	}
	if len(req.CorpusIDs) > 0 {
		state.SetContext(ContextKeyCorpusIDs, req.CorpusIDs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return nil, nil, ErrOperationBusy
	}
	m.current = state
	return state, steps, nil
}

func (m *Manager) end(state *OperationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.last = state
}

func (m *Manager) run(ctx context.Context, state *OperationState, steps []Step) error {
	defer m.end(state)

	ctx = infrastructure.WithTraceID(ctx, state.ID)
	ctx, span := m.tracer.TraceOperation(ctx, state.ID, state.Order)

	state.Start()
	m.logger.InfoContext(ctx, "Operation started",
		slog.String("operation_id", state.ID),
		slog.Any("steps", state.Order))

	err := m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}
	m.tracer.RecordOperationCompletion(ctx, span, state.GetStatus(), err)

	if err != nil {
		m.logger.ErrorContext(ctx, "Operation failed",
			slog.String("operation_id", state.ID),
			slog.String("status", string(state.GetStatus())),
			slog.String("error", err.Error()))
	} else {
		m.logger.InfoContext(ctx, "Operation completed",
			slog.String("operation_id", state.ID),
			slog.Duration("duration", state.Duration()))
	}
	return err
}

func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.InfoContext(ctx, "Executing step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())

	if err := step.Validate(state); err != nil {
		opErr := NewValidationError(step.ID(), err)
		stepState.Fail(opErr)
		return opErr
	}

	stepCtx, cancel := context.WithTimeout(ctx, m.config.GetStepTimeout(step.ID()))
	defer cancel()
	stepCtx, span := m.tracer.TraceStep(stepCtx, state.ID, step.ID())

	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)
	m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, err)

	if err != nil {
		stepState.Fail(err)
		m.logger.ErrorContext(ctx, "Step failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return NewCancellationError(step.ID(), err)
		}
		return NewExecutionError(step.ID(), err)
	}

	stepState.Complete()
	m.logger.InfoContext(ctx, "Step completed",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}
