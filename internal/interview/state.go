package interview

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxQuestions is used when a session is created without an explicit limit.
const DefaultMaxQuestions = 5

// State is the canonical record of one interview session. It is mutated only
// by stage handlers, through the Runner, and persisted between the Begin and
// Continue entry points.
type State struct {
	SessionID  string `json:"session_id"`
	ResumeText string `json:"resume_text"`

	// CandidateProfile holds the model's structured summary of the resume.
	// It is written once by the extraction stage and treated as opaque text
	// afterwards.
	CandidateProfile string `json:"candidate_profile"`

	// Messages is the append-only question/answer history. The first entry
	// is the assistant's introduction question; after that entries alternate
	// assistant/user.
	Messages []string `json:"messages"`

	// CurrentQuestion is the most recently generated question awaiting an
	// answer.
	CurrentQuestion string `json:"current_question"`

	// FeedbackReports collects one internal assessment per analyzed answer.
	// The candidate never sees these directly.
	FeedbackReports []string `json:"feedback_reports"`

	// FinalReport is set by the feedback stage when the interview completes.
	FinalReport string `json:"final_report"`

	QuestionCount     int  `json:"question_count"`
	MaxQuestions      int  `json:"max_questions"`
	InterviewComplete bool `json:"interview_complete"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates the state for a fresh session. maxQuestions falls back to
// DefaultMaxQuestions when not positive.
func NewState(resumeText string, maxQuestions int) *State {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}

	now := time.Now().UTC()

	return &State{
		SessionID:    uuid.NewString(),
		ResumeText:   resumeText,
		MaxQuestions: maxQuestions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy of the state. The runner mutates a clone and
// persists it only after every stage of a call succeeded, so a failed stage
// never leaves a half-written session behind.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	copied := *s
	copied.Messages = append([]string(nil), s.Messages...)
	copied.FeedbackReports = append([]string(nil), s.FeedbackReports...)

	return &copied
}
