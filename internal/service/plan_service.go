package service

import (
	"alcyxob/flexplan/internal/domain"
	"alcyxob/flexplan/internal/generation"
	"alcyxob/flexplan/internal/metrics"
	"alcyxob/flexplan/internal/plan"
	"alcyxob/flexplan/internal/prompt"
	"context"
	"errors"
	"log"
	"strings"
)

// --- Error Definitions ---
var (
	ErrEmptyInstruction = errors.New("revision instruction cannot be empty")
	ErrEmptyImportText  = errors.New("workout text to import cannot be empty")
	ErrNilPlan          = errors.New("current plan is required")
)

// Operation names used for logging and metrics.
const (
	OperationCreate = "create"
	OperationImport = "import"
	OperationRevise = "revise"
)

// --- Service Interface ---

// PlanService runs the create, import and revise pipelines.
// It holds no plan state; every call either returns a fully validated plan
// or fails with *generation.GenerationError or *plan.MalformedPlanError.
type PlanService interface {
	CreatePlan(ctx context.Context, prefs domain.UserPreferences) (*domain.WorkoutPlan, error)
	ImportPlan(ctx context.Context, rawText string) (*domain.WorkoutPlan, error)
	RevisePlan(ctx context.Context, current *domain.WorkoutPlan, instruction string) (*domain.WorkoutPlan, error)
}

// --- Service Implementation ---

type planService struct {
	generator generation.Generator
	metrics   *metrics.Metrics
}

// NewPlanService creates a PlanService backed by gen. m may be nil.
func NewPlanService(gen generation.Generator, m *metrics.Metrics) PlanService {
	if gen == nil {
		panic("plan service requires a generator")
	}
	return &planService{generator: gen, metrics: m}
}

// CreatePlan asks the coach persona for a plan matching prefs.
func (s *planService) CreatePlan(ctx context.Context, prefs domain.UserPreferences) (*domain.WorkoutPlan, error) {
	return s.run(ctx, OperationCreate, prompt.BuildCreationRequest(prefs))
}

// ImportPlan turns free-form workout text into a plan.
func (s *planService) ImportPlan(ctx context.Context, rawText string) (*domain.WorkoutPlan, error) {
	if strings.TrimSpace(rawText) == "" {
		s.metrics.ObservePlanOperation(OperationImport, "invalid_input")
		return nil, ErrEmptyImportText
	}
	return s.run(ctx, OperationImport, prompt.BuildImportRequest(rawText))
}

// RevisePlan returns a full replacement for current. current is only read.
func (s *planService) RevisePlan(ctx context.Context, current *domain.WorkoutPlan, instruction string) (*domain.WorkoutPlan, error) {
	if current == nil {
		return nil, ErrNilPlan
	}
	if strings.TrimSpace(instruction) == "" {
		s.metrics.ObservePlanOperation(OperationRevise, "invalid_input")
		return nil, ErrEmptyInstruction
	}
	return s.run(ctx, OperationRevise, prompt.BuildRevisionRequest(current, instruction))
}

func (s *planService) run(ctx context.Context, op string, req prompt.Request) (*domain.WorkoutPlan, error) {
	raw, err := s.generator.Generate(ctx, req)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = &generation.GenerationError{Persona: req.Persona, Kind: generation.KindEmptyPayload, Err: generation.ErrNoResponse}
	}
	if err != nil {
		s.metrics.ObservePlanOperation(op, "generation_failed")
		log.Printf("ERROR: Plan %s failed: %v", op, err)
		return nil, err
	}

	p, err := plan.Parse(raw)
	if err != nil {
		s.metrics.ObservePlanOperation(op, "malformed_plan")
		log.Printf("ERROR: Plan %s returned an unusable payload: %v", op, err)
		return nil, err
	}

	if dups := plan.DuplicateIDs(p); len(dups) > 0 {
		log.Printf("WARN: Plan %s produced duplicate exercise ids %v", op, dups)
	}
	s.metrics.ObservePlanOperation(op, "success")
	log.Printf("INFO: Plan %s succeeded: %q with %d exercises", op, p.Title, len(p.Exercises))
	return p, nil
}
