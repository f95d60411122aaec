package service

import (
	"alcyxob/flexplan/internal/domain"
	"context"
	"errors"
	"log"
	"sync"
)

var (
	ErrOperationInFlight = errors.New("another plan operation is already in progress")
	ErrNoCurrentPlan     = errors.New("there is no current plan")
	ErrStaleResult       = errors.New("plan changed while the operation was running; result discarded")
)

// State of an Orchestrator.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Orchestrator owns the current plan of one session and allows at most one
// plan-mutating operation at a time. The generative call runs outside the lock.
//
// Each operation records the plan generation it started from. If the plan was
// replaced or reset before the call returns, the result is dropped with ErrStaleResult.
type Orchestrator struct {
	plans PlanService

	mu         sync.Mutex
	state      State
	current    *domain.WorkoutPlan
	generation uint64
}

// NewOrchestrator creates an idle orchestrator with no plan.
func NewOrchestrator(plans PlanService) *Orchestrator {
	return &Orchestrator{plans: plans, state: StateIdle}
}

// Create replaces the current plan with one generated from prefs.
func (o *Orchestrator) Create(ctx context.Context, prefs domain.UserPreferences) (*domain.WorkoutPlan, error) {
	gen, _, err := o.begin(false)
	if err != nil {
		return nil, err
	}
	p, err := o.plans.CreatePlan(ctx, prefs)
	return o.finish(OperationCreate, gen, p, err)
}

// Import replaces the current plan with one parsed from rawText.
func (o *Orchestrator) Import(ctx context.Context, rawText string) (*domain.WorkoutPlan, error) {
	gen, _, err := o.begin(false)
	if err != nil {
		return nil, err
	}
	p, err := o.plans.ImportPlan(ctx, rawText)
	return o.finish(OperationImport, gen, p, err)
}

// SubmitRevision revises the current plan. On any failure the current plan is untouched
// and the error is returned as is.
func (o *Orchestrator) SubmitRevision(ctx context.Context, instruction string) (*domain.WorkoutPlan, error) {
	gen, snapshot, err := o.begin(true)
	if err != nil {
		return nil, err
	}
	p, err := o.plans.RevisePlan(ctx, snapshot, instruction)
	return o.finish(OperationRevise, gen, p, err)
}

// Reset drops the current plan and returns to Idle at once. An operation still
// running will have its result discarded when it returns.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil
	o.generation++
	o.state = StateIdle
}

// Current returns a copy of the current plan, or nil if there is none.
func (o *Orchestrator) Current() *domain.WorkoutPlan {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current.Clone()
}

// State reports whether an operation is running.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// HasPlan reports whether a current plan exists.
func (o *Orchestrator) HasPlan() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current != nil
}

// begin moves Idle -> Pending and returns the generation plus, when needPlan is set,
// a private copy of the current plan for use as prompt context.
func (o *Orchestrator) begin(needPlan bool) (uint64, *domain.WorkoutPlan, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StatePending {
		return 0, nil, ErrOperationInFlight
	}
	var snapshot *domain.WorkoutPlan
	if needPlan {
		if o.current == nil {
			return 0, nil, ErrNoCurrentPlan
		}
		snapshot = o.current.Clone()
	}
	o.state = StatePending
	return o.generation, snapshot, nil
}

// finish installs p if nothing changed in the meantime. Only the operation that
// started at the current generation owns the Pending state; a stale one leaves
// the state alone, since Reset already released it and a newer operation may be running.
func (o *Orchestrator) finish(op string, gen uint64, p *domain.WorkoutPlan, err error) (*domain.WorkoutPlan, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	stale := gen != o.generation
	if !stale {
		o.state = StateIdle
	}
	if err != nil {
		return nil, err
	}
	if stale {
		log.Printf("WARN: Discarding stale %s result (started at generation %d, now %d)", op, gen, o.generation)
		return nil, ErrStaleResult
	}
	o.current = p
	o.generation++
	return p.Clone(), nil
}
