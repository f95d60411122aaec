package service

import (
	"alcyxob/flexplan/internal/domain"
	"alcyxob/flexplan/internal/metrics"
	"alcyxob/flexplan/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Session is the in-memory state of one UI session.
type Session struct {
	Plans *Orchestrator

	mu         sync.Mutex
	transcript []domain.ChatMessage
	now        func() time.Time
}

// Transcript returns a copy of the revision conversation.
func (s *Session) Transcript() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *Session) record(role domain.ChatRole, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, domain.ChatMessage{Role: role, Content: content, CreatedAt: s.now().UTC()})
}

func (s *Session) clearTranscript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}

// OpenedSession is what a caller gets back when starting a session.
type OpenedSession struct {
	Info      domain.SessionInfo
	Token     string
	ExpiresAt time.Time
}

// SessionService manages sessions and routes plan operations to each session's Orchestrator.
type SessionService interface {
	Open(ctx context.Context) (*OpenedSession, error)
	Get(ctx context.Context, sessionID string) (*Session, domain.SessionInfo, error)
	Reset(ctx context.Context, sessionID string) error
	CreatePlan(ctx context.Context, sessionID string, prefs domain.UserPreferences) (*domain.WorkoutPlan, error)
	ImportPlan(ctx context.Context, sessionID string, rawText string) (*domain.WorkoutPlan, error)
	RevisePlan(ctx context.Context, sessionID string, instruction string) (*domain.WorkoutPlan, error)
	// SweepIdle removes sessions unused for longer than the idle timeout.
	SweepIdle(ctx context.Context) (int, error)
	// RunSweeper calls SweepIdle every interval until ctx is done.
	RunSweeper(ctx context.Context, interval time.Duration)
}

type sessionService struct {
	repo        repository.SessionRepository[*Session]
	plans       PlanService
	tokens      TokenService
	metrics     *metrics.Metrics
	idleTimeout time.Duration
	now         func() time.Time
}

// SessionOption tweaks a SessionService.
type SessionOption func(*sessionService)

// WithSessionClock replaces time.Now for idle expiry and transcript timestamps.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *sessionService) {
		s.now = now
	}
}

// NewSessionService wires the session store, plan pipelines and token issuer together.
func NewSessionService(
	repo repository.SessionRepository[*Session],
	plans PlanService,
	tokens TokenService,
	m *metrics.Metrics,
	idleTimeout time.Duration,
	opts ...SessionOption,
) SessionService {
	if idleTimeout <= 0 {
		idleTimeout = 2 * time.Hour
	}
	s := &sessionService{
		repo:        repo,
		plans:       plans,
		tokens:      tokens,
		metrics:     m,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a session and a token bound to it.
func (s *sessionService) Open(ctx context.Context) (*OpenedSession, error) {
	sess := &Session{Plans: NewOrchestrator(s.plans), now: s.now}
	info, err := s.repo.Create(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(info.ID)
	if err != nil {
		_ = s.repo.Delete(ctx, info.ID)
		return nil, err
	}
	s.publishCount(ctx)
	log.Printf("INFO: Opened session %s", info.ID)
	return &OpenedSession{Info: info, Token: token, ExpiresAt: expiresAt}, nil
}

// Get loads a session and marks it active.
func (s *sessionService) Get(ctx context.Context, sessionID string) (*Session, domain.SessionInfo, error) {
	sess, info, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.SessionInfo{}, ErrSessionNotFound
		}
		return nil, domain.SessionInfo{}, err
	}
	return sess, info, nil
}

// Reset drops the session's plan and transcript. The session itself stays open.
func (s *sessionService) Reset(ctx context.Context, sessionID string) error {
	sess, _, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Plans.Reset()
	sess.clearTranscript()
	log.Printf("INFO: Reset session %s", sessionID)
	return nil
}

// CreatePlan generates a fresh plan for the session.
func (s *sessionService) CreatePlan(ctx context.Context, sessionID string, prefs domain.UserPreferences) (*domain.WorkoutPlan, error) {
	sess, _, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := sess.Plans.Create(ctx, prefs)
	if err != nil {
		return nil, err
	}
	sess.clearTranscript()
	return p, nil
}

// ImportPlan replaces the session's plan with one parsed from free text.
func (s *sessionService) ImportPlan(ctx context.Context, sessionID string, rawText string) (*domain.WorkoutPlan, error) {
	sess, _, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := sess.Plans.Import(ctx, rawText)
	if err != nil {
		return nil, err
	}
	sess.clearTranscript()
	return p, nil
}

// RevisePlan applies instruction to the session's plan and logs both sides in the transcript.
// Rejected submissions (busy, no plan, empty instruction) and results dropped by a reset are not recorded.
func (s *sessionService) RevisePlan(ctx context.Context, sessionID string, instruction string) (*domain.WorkoutPlan, error) {
	sess, _, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	p, err := sess.Plans.SubmitRevision(ctx, instruction)
	switch {
	case errors.Is(err, ErrOperationInFlight), errors.Is(err, ErrNoCurrentPlan),
		errors.Is(err, ErrEmptyInstruction), errors.Is(err, ErrStaleResult):
		return nil, err
	case err != nil:
		sess.record(domain.ChatRoleUser, instruction)
		sess.record(domain.ChatRoleAssistant, "Sorry, I couldn't update the plan: "+err.Error())
		return nil, err
	}
	sess.record(domain.ChatRoleUser, instruction)
	sess.record(domain.ChatRoleAssistant, fmt.Sprintf("Updated \"%s\": %d exercises.", p.Title, len(p.Exercises)))
	return p, nil
}

func (s *sessionService) SweepIdle(ctx context.Context) (int, error) {
	removed, err := s.repo.DeleteIdle(ctx, s.now().Add(-s.idleTimeout))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("INFO: Expired %d idle sessions", removed)
	}
	s.publishCount(ctx)
	return removed, nil
}

func (s *sessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepIdle(ctx); err != nil && ctx.Err() == nil {
				log.Printf("ERROR: Session sweep failed: %v", err)
			}
		}
	}
}

func (s *sessionService) publishCount(ctx context.Context) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return
	}
	s.metrics.SetActiveSessions(n)
}
