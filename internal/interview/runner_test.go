package interview

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// mapStore is a minimal SessionStore for runner tests. The real backends live
// in internal/store; importing them here would cycle.
type mapStore struct {
	mu       sync.Mutex
	sessions map[string]*State
	puts     int
}

func newMapStore() *mapStore {
	return &mapStore{sessions: make(map[string]*State)}
}

func (m *mapStore) Get(_ context.Context, sessionID string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return state.Clone(), nil
}

func (m *mapStore) Put(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.puts++
	m.sessions[state.SessionID] = state.Clone()
	return nil
}

func newTestRunner(stub *stageStub, sessions SessionStore, archive *Archive) *Runner {
	return NewRunner(&RunnerDeps{
		Store:   sessions,
		Stages:  newTestStages(stub),
		Logger:  zap.NewNop(),
		Archive: archive,
	})
}

func TestRunnerEndToEnd(t *testing.T) {
	ctx := context.Background()
	sessions := newMapStore()
	runner := newTestRunner(&stageStub{}, sessions, nil)

	begin, err := runner.Begin(ctx, "Jane Doe, Software Engineer, Skills: Python, React. Built inventory dashboard.", 2)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	if begin.SessionID == "" {
		t.Fatalf("expected a session id")
	}

	if begin.Message != IntroductionQuestion {
		t.Fatalf("expected the literal introduction question, got %q", begin.Message)
	}

	first, err := runner.Continue(ctx, begin.SessionID, "I'm Jane, 3 years experience in web dev.")
	if err != nil {
		t.Fatalf("first continue failed: %v", err)
	}

	if first.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %q", first.Status)
	}

	state, err := sessions.Get(ctx, begin.SessionID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if len(state.FeedbackReports) != 1 {
		t.Fatalf("expected 1 report after first answer, got %d", len(state.FeedbackReports))
	}

	if state.QuestionCount != 2 {
		t.Fatalf("expected question_count 2, got %d", state.QuestionCount)
	}

	second, err := runner.Continue(ctx, begin.SessionID, "I used React hooks for state.")
	if err != nil {
		t.Fatalf("second continue failed: %v", err)
	}

	if second.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", second.Status)
	}

	if !strings.HasPrefix(second.Message, FeedbackOpening) {
		t.Fatalf("expected final message to start with %q, got %q", FeedbackOpening, second.Message)
	}

	state, err = sessions.Get(ctx, begin.SessionID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if !state.InterviewComplete {
		t.Fatalf("expected session marked complete")
	}

	if len(state.FeedbackReports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(state.FeedbackReports))
	}
}

func TestRunnerMessageHistoryGrowsByRounds(t *testing.T) {
	ctx := context.Background()
	sessions := newMapStore()
	runner := newTestRunner(&stageStub{}, sessions, nil)

	begin, err := runner.Begin(ctx, "resume text", 3)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	state, _ := sessions.Get(ctx, begin.SessionID)
	if len(state.Messages) != 1 {
		t.Fatalf("expected 1 message after begin, got %d", len(state.Messages))
	}

	for round := 1; round <= 2; round++ {
		if _, err := runner.Continue(ctx, begin.SessionID, fmt.Sprintf("answer %d", round)); err != nil {
			t.Fatalf("continue %d failed: %v", round, err)
		}

		state, _ = sessions.Get(ctx, begin.SessionID)
		expected := 1 + 2*round
		if len(state.Messages) != expected {
			t.Fatalf("expected %d messages after round %d, got %d", expected, round, len(state.Messages))
		}

		if state.QuestionCount != round+1 {
			t.Fatalf("expected question_count %d after round %d, got %d", round+1, round, state.QuestionCount)
		}
	}
}

func TestRunnerBeginValidation(t *testing.T) {
	runner := newTestRunner(&stageStub{}, newMapStore(), nil)

	_, err := runner.Begin(context.Background(), "   ", 5)
	if !errors.Is(err, ErrInputValidation) {
		t.Fatalf("expected ErrInputValidation, got %v", err)
	}
}

func TestRunnerContinueUnknownSession(t *testing.T) {
	runner := newTestRunner(&stageStub{}, newMapStore(), nil)

	_, err := runner.Continue(context.Background(), "missing", "answer")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRunnerContinueCompletedSession(t *testing.T) {
	ctx := context.Background()
	sessions := newMapStore()
	runner := newTestRunner(&stageStub{}, sessions, nil)

	begin, err := runner.Begin(ctx, "resume", 1)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	if _, err := runner.Continue(ctx, begin.SessionID, "my answer"); err != nil {
		t.Fatalf("continue failed: %v", err)
	}

	before, _ := sessions.Get(ctx, begin.SessionID)
	putsBefore := sessions.puts

	_, err = runner.Continue(ctx, begin.SessionID, "another answer")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for completed session, got %v", err)
	}

	after, _ := sessions.Get(ctx, begin.SessionID)
	if sessions.puts != putsBefore || len(after.Messages) != len(before.Messages) {
		t.Fatalf("expected no state mutation after completion")
	}
}

func TestRunnerStageFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	sessions := newMapStore()
	stub := &stageStub{}
	runner := newTestRunner(stub, sessions, nil)

	begin, err := runner.Begin(ctx, "resume", 2)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	before, _ := sessions.Get(ctx, begin.SessionID)

	stub.err = errors.New("model down")
	if _, err := runner.Continue(ctx, begin.SessionID, "answer"); !errors.Is(err, ErrModelInvocation) {
		t.Fatalf("expected ErrModelInvocation, got %v", err)
	}

	after, _ := sessions.Get(ctx, begin.SessionID)
	if len(after.Messages) != len(before.Messages) || len(after.FeedbackReports) != 0 {
		t.Fatalf("expected persisted state untouched after stage failure")
	}

	// The session is still usable once the model recovers.
	stub.err = nil
	result, err := runner.Continue(ctx, begin.SessionID, "answer")
	if err != nil {
		t.Fatalf("continue after recovery failed: %v", err)
	}

	if result.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %q", result.Status)
	}
}

func TestRunnerArchivesCompletedInterview(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "interviews.jsonl")

	runner := newTestRunner(&stageStub{}, newMapStore(), NewArchive(path))

	begin, err := runner.Begin(ctx, "resume", 1)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	if _, err := runner.Continue(ctx, begin.SessionID, "answer"); err != nil {
		t.Fatalf("continue failed: %v", err)
	}

	entries, err := LoadArchiveEntries(path)
	if err != nil {
		t.Fatalf("loading archive failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 archived interview, got %d", len(entries))
	}

	entry := entries[0]
	if entry.SessionID != begin.SessionID {
		t.Fatalf("unexpected session id: %s", entry.SessionID)
	}

	if entry.Questions != 1 || len(entry.FeedbackReports) != 1 {
		t.Fatalf("unexpected archive counters: %+v", entry)
	}

	if !strings.HasPrefix(entry.FinalReport, FeedbackOpening) {
		t.Fatalf("unexpected final report: %q", entry.FinalReport)
	}
}

func TestRunnerSerializesContinuePerSession(t *testing.T) {
	ctx := context.Background()
	sessions := newMapStore()
	runner := newTestRunner(&stageStub{}, sessions, nil)

	begin, err := runner.Begin(ctx, "resume", 10)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			runner.Continue(ctx, begin.SessionID, fmt.Sprintf("concurrent answer %d", n))
		}(i)
	}
	wg.Wait()

	state, _ := sessions.Get(ctx, begin.SessionID)
	if len(state.FeedbackReports) != 4 {
		t.Fatalf("expected 4 reports after 4 serialized continues, got %d", len(state.FeedbackReports))
	}

	if state.QuestionCount != 5 {
		t.Fatalf("expected question_count 5, got %d", state.QuestionCount)
	}
}
