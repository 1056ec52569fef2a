package orchestrator

import (
	"context"
	"fmt"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// SagaStep represents a single side effect of a run
type SagaStep struct {
	Name string
	Type domain.StepType
	// Status is the run status entered while the step executes
	Status     domain.RunStatus
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// SagaExecutor runs the side-effect steps of a run in order. Steps are
// attempted exactly once. When compensation is enabled, completed steps are
// undone in reverse order after a failure.
type SagaExecutor struct {
	run        *domain.Run
	steps      []SagaStep
	compensate bool
	log        *zap.Logger
}

// NewSagaExecutor creates a new saga executor bound to run
func NewSagaExecutor(run *domain.Run, compensate bool, log *zap.Logger) *SagaExecutor {
	if log == nil {
		log = zap.NewNop()
	}
	return &SagaExecutor{
		run:        run,
		steps:      []SagaStep{},
		compensate: compensate,
		log:        log,
	}
}

// AddStep adds a step to the saga
func (s *SagaExecutor) AddStep(step SagaStep) {
	s.steps = append(s.steps, step)
	s.run.AddStep(step.Type)
}

// Execute runs the steps, compensating on failure when enabled
func (s *SagaExecutor) Execute(ctx context.Context) error {
	for _, step := range s.steps {
		if step.Status != "" {
			s.run.Transition(step.Status)
			s.log.Debug("Run transition", zap.String("status", string(step.Status)))
		}
		s.run.MarkStep(step.Type, domain.StepStatusRunning, nil)
		if err := step.Execute(ctx); err != nil {
			s.run.MarkStep(step.Type, domain.StepStatusFailed, err)
			if !s.compensate {
				return fmt.Errorf("step '%s' failed: %w", step.Name, err)
			}
			// the run context may already be expired
			compCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CompensationTimeout)
			compErr := s.rollback(compCtx)
			cancel()
			if compErr != nil {
				return fmt.Errorf("step '%s' failed: %w, compensation also failed: %v", step.Name, err, compErr)
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name, err)
		}
		s.run.MarkStep(step.Type, domain.StepStatusCompleted, nil)
	}
	return nil
}

func (s *SagaExecutor) rollback(ctx context.Context) error {
	completed := s.run.CompletedSteps()
	if len(completed) == 0 {
		s.log.Debug("No completed steps to compensate")
		return nil
	}
	for _, record := range completed {
		select {
		case <-ctx.Done():
			return fmt.Errorf("compensation canceled: %w", ctx.Err())
		default:
		}
		step := s.findStepByType(record.Type)
		if step == nil || step.Compensate == nil {
			continue
		}
		s.log.Warn("Compensating step", zap.String("step", step.Name))
		if err := s.executeCompensation(ctx, step); err != nil {
			s.log.Error("Compensation failed", zap.String("step", step.Name), zap.Error(err))
			return fmt.Errorf("compensation failed for %s: %w", step.Name, err)
		}
		s.run.MarkStep(step.Type, domain.StepStatusCompensated, nil)
	}
	return nil
}

// executeCompensation retries a compensating action with exponential backoff
func (s *SagaExecutor) executeCompensation(ctx context.Context, step *SagaStep) error {
	strategy := retry.WithMaxRetries(CompensationRetryCount, retry.NewExponential(CompensationRetryDelay))
	return retry.Do(ctx, strategy, func(ctx context.Context) error {
		if err := step.Compensate(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (s *SagaExecutor) findStepByType(stepType domain.StepType) *SagaStep {
	for i := range s.steps {
		if s.steps[i].Type == stepType {
			return &s.steps[i]
		}
	}
	return nil
}
