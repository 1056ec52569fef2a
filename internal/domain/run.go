package domain

import (
	"time"
)

// RunStatus represents the state of a single watch run
type RunStatus string

const (
	RunStatusInit       RunStatus = "init"
	RunStatusFetching   RunStatus = "fetching"
	RunStatusValidating RunStatus = "validating"
	RunStatusNoOp       RunStatus = "noop"
	RunStatusPersisting RunStatus = "persisting"
	RunStatusNotifying  RunStatus = "notifying"
	RunStatusDone       RunStatus = "done"
	RunStatusFailed     RunStatus = "failed"
)

// StepStatus represents the status of an individual saga step
type StepStatus string

const (
	StepStatusPending     StepStatus = "pending"
	StepStatusRunning     StepStatus = "running"
	StepStatusCompleted   StepStatus = "completed"
	StepStatusFailed      StepStatus = "failed"
	StepStatusCompensated StepStatus = "compensated"
)

// StepType identifies the type of step
type StepType string

const (
	StepTypePersistVersion StepType = "persist_version"
	StepTypeNotify         StepType = "notify"
)

// Run records what happened during one invocation
type Run struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Status     RunStatus    `json:"status"`
	Previous   string       `json:"previous"`
	Fetched    string       `json:"fetched"`
	Notified   bool         `json:"notified"`
	DryRun     bool         `json:"dry_run"`
	NoOpReason string       `json:"noop_reason,omitempty"`
	Steps      []StepRecord `json:"steps"`
	Error      string       `json:"error,omitempty"`
}

// StepRecord represents a single step in the run
type StepRecord struct {
	Type        StepType   `json:"type"`
	Status      StepStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// NewRun creates a new run record
func NewRun(id string) *Run {
	now := time.Now()
	return &Run{
		ID:        id,
		StartedAt: now,
		UpdatedAt: now,
		Status:    RunStatusInit,
		Steps:     []StepRecord{},
	}
}

// Transition moves the run to the given status
func (r *Run) Transition(status RunStatus) {
	r.Status = status
	r.UpdatedAt = time.Now()
}

// Fail marks the run as failed
func (r *Run) Fail(err error) {
	r.Transition(RunStatusFailed)
	r.Error = err.Error()
}

// Skip ends the run without side effects
func (r *Run) Skip(reason string) {
	r.NoOpReason = reason
	r.Transition(RunStatusNoOp)
}

// AddStep adds a new pending step record
func (r *Run) AddStep(stepType StepType) {
	r.Steps = append(r.Steps, StepRecord{
		Type:      stepType,
		Status:    StepStatusPending,
		StartedAt: time.Now(),
	})
	r.UpdatedAt = time.Now()
}

// Step returns the record for the given step type
func (r *Run) Step(stepType StepType) *StepRecord {
	for i := range r.Steps {
		if r.Steps[i].Type == stepType {
			return &r.Steps[i]
		}
	}
	return nil
}

// CompletedSteps returns all completed steps in reverse order
func (r *Run) CompletedSteps() []StepRecord {
	var completed []StepRecord
	for i := len(r.Steps) - 1; i >= 0; i-- {
		if r.Steps[i].Status == StepStatusCompleted {
			completed = append(completed, r.Steps[i])
		}
	}
	return completed
}

// MarkStep sets the status of a step, recording the error when given
func (r *Run) MarkStep(stepType StepType, status StepStatus, err error) {
	step := r.Step(stepType)
	if step == nil {
		return
	}
	now := time.Now()
	step.Status = status
	switch status {
	case StepStatusRunning:
		step.StartedAt = now
	case StepStatusCompleted, StepStatusFailed, StepStatusCompensated:
		step.CompletedAt = &now
	}
	if err != nil {
		step.Error = err.Error()
	}
	r.UpdatedAt = now
}
