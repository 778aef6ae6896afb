package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/ai-interviewer/internal/interview"
	"github.com/spigell/ai-interviewer/internal/store"
)

type stubGenerator struct {
	err   error
	calls int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++

	if s.err != nil {
		return "", s.err
	}

	switch {
	case strings.Contains(prompt, "expert technical recruiter"):
		return "Name: Jane, Skills: Go", nil
	case strings.Contains(prompt, "Technical Interviewer"):
		return fmt.Sprintf("Question %d?", s.calls), nil
	case strings.Contains(prompt, "grading an interview answer"):
		return "Solid answer.", nil
	case strings.Contains(prompt, "The interview is finished"):
		return interview.FeedbackOpening + " Good session.", nil
	default:
		return "", fmt.Errorf("unexpected prompt")
	}
}

func (s *stubGenerator) Model() string { return "stub-model" }

func newTestServer(t *testing.T, stub *stubGenerator) *Server {
	t.Helper()

	runner := interview.NewRunner(&interview.RunnerDeps{
		Store:  store.NewMemory(),
		Stages: interview.NewStages(&interview.StageDeps{Generator: stub, Logger: zap.NewNop()}),
		Logger: zap.NewNop(),
	})

	return New(runner, zap.NewNop(), ":0")
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	return rec
}

func TestInterviewFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/interviews", map[string]any{
		"resume_text":   "Jane Doe, Software Engineer, Skills: Python, React.",
		"max_questions": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var begin struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &begin))
	require.NotEmpty(t, begin.SessionID)
	require.Equal(t, interview.IntroductionQuestion, begin.Message)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/interviews/"+begin.SessionID+"/answers", map[string]any{
		"answer": "I'm Jane, 3 years experience in web dev.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var first struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Equal(t, "in_progress", first.Status)
	require.NotEmpty(t, first.Message)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/interviews/"+begin.SessionID+"/answers", map[string]any{
		"answer": "I used React hooks for state.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var second struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.Equal(t, "completed", second.Status)
	require.True(t, strings.HasPrefix(second.Message, interview.FeedbackOpening))

	// A completed session rejects further answers.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/interviews/"+begin.SessionID+"/answers", map[string]any{
		"answer": "one more",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBeginValidation(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/interviews", map[string]any{
		"resume_text": "   ",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/interviews/nope/answers", map[string]any{
		"answer": "hello",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModelFailureMapsToBadGateway(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{err: errors.New("model down")})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/interviews", map[string]any{
		"resume_text": "Jane Doe, Software Engineer.",
	})
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
