package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status tells the boundary layer whether a session expects more answers.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// SessionStore persists session state between the Begin and Continue entry
// points. Implementations must report unknown ids with an error wrapping
// ErrSessionNotFound.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*State, error)
	Put(ctx context.Context, state *State) error
}

// RunnerDeps aggregates the collaborators of the session runner.
type RunnerDeps struct {
	Store  SessionStore
	Stages *Stages
	Logger *zap.Logger

	// Archive receives completed interviews. Optional.
	Archive *Archive
}

// Runner is the interview state machine. It sequences the stage handlers,
// owns the canonical session state, and exposes the two boundary entry
// points. Stage handlers for one session never run concurrently; the runner
// serializes Continue calls per session id.
type Runner struct {
	store   SessionStore
	stages  *Stages
	logger  *zap.Logger
	archive *Archive

	locks sync.Map // session id -> *sync.Mutex
}

// BeginResult is returned by Begin.
type BeginResult struct {
	SessionID string
	Message   string
}

// ContinueResult is returned by Continue.
type ContinueResult struct {
	Message string
	Status  Status
}

// NewRunner creates the session runner from its dependencies.
func NewRunner(deps *RunnerDeps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		store:   deps.Store,
		stages:  deps.Stages,
		logger:  logger,
		archive: deps.Archive,
	}
}

// Begin creates a session from the resume text, extracts the candidate
// profile, asks the first question and suspends until the answer arrives via
// Continue. maxQuestions falls back to the default when not positive.
func (r *Runner) Begin(ctx context.Context, resumeText string, maxQuestions int) (*BeginResult, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("%w: resume text is required", ErrInputValidation)
	}

	state := NewState(resumeText, maxQuestions)

	started := time.Now()
	if err := r.stages.ExtractProfile(ctx, state); err != nil {
		return nil, err
	}
	if err := r.stages.GenerateQuestion(ctx, state); err != nil {
		return nil, err
	}

	state.UpdatedAt = time.Now().UTC()
	if err := r.store.Put(ctx, state); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	r.logger.Info("interview started",
		zap.String("session_id", state.SessionID),
		zap.Int("max_questions", state.MaxQuestions),
		zap.Duration("duration", time.Since(started)),
	)

	return &BeginResult{
		SessionID: state.SessionID,
		Message:   state.CurrentQuestion,
	}, nil
}

// Continue resumes a suspended session with the candidate's answer. It
// analyzes the answer, then either asks the next question or compiles the
// final feedback. Calls referencing the same session id serialize.
func (r *Runner) Continue(ctx context.Context, sessionID, answer string) (*ContinueResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInputValidation)
	}
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: answer is required", ErrInputValidation)
	}

	unlock := r.lockSession(sessionID)
	defer unlock()

	stored, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stored.InterviewComplete {
		return nil, fmt.Errorf("%w: session %s already completed", ErrSessionNotFound, sessionID)
	}

	// Stages run on a clone; the stored state stays untouched until the whole
	// call succeeded.
	state := stored.Clone()
	state.Messages = append(state.Messages, answer)

	if err := r.stages.AnalyzeAnswer(ctx, state); err != nil {
		return nil, err
	}

	result := &ContinueResult{Status: StatusInProgress}

	switch decision := Route(state.QuestionCount, state.MaxQuestions); decision {
	case DecisionContinueQuestioning:
		if err := r.stages.GenerateQuestion(ctx, state); err != nil {
			return nil, err
		}
		result.Message = state.CurrentQuestion
	case DecisionCompileFeedback:
		if err := r.stages.CompileFeedback(ctx, state); err != nil {
			return nil, err
		}
		result.Message = state.FinalReport
		result.Status = StatusCompleted
	default:
		return nil, fmt.Errorf("%w: unexpected routing decision %q", ErrProtocol, decision)
	}

	state.UpdatedAt = time.Now().UTC()
	if err := r.store.Put(ctx, state); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	if state.InterviewComplete {
		r.finishSession(state)
	}

	r.logger.Info("interview turn finished",
		zap.String("session_id", state.SessionID),
		zap.Int("question_count", state.QuestionCount),
		zap.String("status", string(result.Status)),
	)

	return result, nil
}

func (r *Runner) finishSession(state *State) {
	entry := ArchiveEntry{
		SessionID:        state.SessionID,
		CandidateProfile: state.CandidateProfile,
		FeedbackReports:  state.FeedbackReports,
		FinalReport:      state.FinalReport,
		Questions:        state.QuestionCount,
		StartedAt:        state.CreatedAt,
		CompletedAt:      state.UpdatedAt,
	}

	if err := r.archive.Append(entry); err != nil {
		r.logger.Warn("archiving completed interview failed",
			zap.String("session_id", state.SessionID),
			zap.Error(err),
		)
	}
}

func (r *Runner) lockSession(sessionID string) func() {
	value, _ := r.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
