package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/ai-interviewer/internal/ai"
	"github.com/spigell/ai-interviewer/internal/util"
)

const defaultMaxLogLength = 200

// StageDeps aggregates the collaborators every stage handler needs.
type StageDeps struct {
	Generator ai.Generator
	Logger    *zap.Logger

	// MaxLogLength bounds prompt/response previews in debug logs.
	MaxLogLength int
}

// Stages implements the four handlers of the interview state machine. Each
// handler mutates the passed state and issues at most one model invocation.
type Stages struct {
	gen       ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

// NewStages creates the stage handlers from their dependencies.
func NewStages(deps *StageDeps) *Stages {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxLogLen := deps.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Stages{
		gen:       deps.Generator,
		logger:    logger,
		maxLogLen: maxLogLen,
	}
}

// ExtractProfile summarizes the resume into the candidate profile. The model
// response is stored as-is; downstream stages treat it as opaque text.
func (st *Stages) ExtractProfile(ctx context.Context, s *State) error {
	if strings.TrimSpace(s.ResumeText) == "" {
		return fmt.Errorf("%w: resume text is empty", ErrInputValidation)
	}

	profile, err := st.invoke(ctx, s, "extract_profile", buildExtractProfilePrompt(s.ResumeText))
	if err != nil {
		return err
	}

	s.CandidateProfile = profile
	return nil
}

// GenerateQuestion produces the next question and advances the counter. The
// introduction is emitted verbatim without a model call; every later question
// is model-authored under the mode selected by the counter.
func (st *Stages) GenerateQuestion(ctx context.Context, s *State) error {
	count := s.QuestionCount
	// Failsafe: when the machine is re-entered with history already present
	// but a zeroed counter, skip the introduction instead of repeating it.
	if len(s.Messages) > 0 && count == 0 {
		count = 1
	}

	mode := SelectMode(count, s.MaxQuestions)

	st.logger.Debug("generating question",
		zap.String("session_id", s.SessionID),
		zap.Int("question_count", count),
		zap.String("mode", string(mode)),
	)

	question := IntroductionQuestion
	if mode != ModeIntroduction {
		var err error
		question, err = st.invoke(ctx, s, "generate_question", buildGenerateQuestionPrompt(s, mode, count))
		if err != nil {
			return err
		}
	}

	s.CurrentQuestion = question
	s.Messages = append(s.Messages, question)
	s.QuestionCount = count + 1
	return nil
}

// AnalyzeAnswer grades the most recent answer and records the assessment in
// the hidden report list. The caller must have appended the answer to the
// message history first.
func (st *Stages) AnalyzeAnswer(ctx context.Context, s *State) error {
	if s.CurrentQuestion == "" {
		return fmt.Errorf("%w: no question is pending analysis", ErrProtocol)
	}
	if len(s.Messages) == 0 {
		return fmt.Errorf("%w: message history is empty", ErrProtocol)
	}

	answer := s.Messages[len(s.Messages)-1]

	report, err := st.invoke(ctx, s, "analyze_answer", buildAnalyzeAnswerPrompt(s.CurrentQuestion, answer))
	if err != nil {
		return err
	}

	s.FeedbackReports = append(s.FeedbackReports, report)
	return nil
}

// CompileFeedback builds the final report from the collected assessments and
// marks the session complete. This is the terminal transition.
func (st *Stages) CompileFeedback(ctx context.Context, s *State) error {
	report, err := st.invoke(ctx, s, "compile_feedback", buildFinalFeedbackPrompt(s.FeedbackReports))
	if err != nil {
		return err
	}

	s.FinalReport = report
	s.InterviewComplete = true
	return nil
}

func (st *Stages) invoke(ctx context.Context, s *State, stage, prompt string) (string, error) {
	st.logger.Debug("model request",
		zap.String("session_id", s.SessionID),
		zap.String("stage", stage),
		zap.String("prompt_preview", util.TruncateForLog(prompt, st.maxLogLen)),
	)

	response, err := st.gen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s stage: %w: %v", stage, ErrModelInvocation, err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return "", fmt.Errorf("%s stage: %w: empty response", stage, ErrModelInvocation)
	}

	st.logger.Debug("model response",
		zap.String("session_id", s.SessionID),
		zap.String("stage", stage),
		zap.String("response_preview", util.TruncateForLog(response, st.maxLogLen)),
	)

	return response, nil
}
