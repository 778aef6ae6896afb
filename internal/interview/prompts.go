package interview

import (
	"fmt"
	"strconv"
	"strings"

	_ "embed"
)

// Mode selects the instruction block of the question-generation prompt. The
// thresholds are plain integer comparisons so the interview's structure stays
// auditable independent of model behavior.
type Mode string

const (
	ModeIntroduction Mode = "introduction"
	ModeExperience   Mode = "experience"
	ModeTechnical    Mode = "technical"
	ModeBehavioral   Mode = "behavioral"
)

// IntroductionQuestion opens every interview. It is emitted verbatim, without
// a model call, so the first turn never varies.
const IntroductionQuestion = "Hello! To start, could you please introduce yourself and tell me a bit about your background?"

// FeedbackOpening is the sentence the final report is instructed to start with.
const FeedbackOpening = "Thank you for taking the time to interview with us today."

//go:embed prompts/extract_profile.md
var extractProfileTemplate string

//go:embed prompts/generate_question.md
var generateQuestionTemplate string

//go:embed prompts/analyze_answer.md
var analyzeAnswerTemplate string

//go:embed prompts/final_feedback.md
var finalFeedbackTemplate string

const (
	experienceInstruction = `Topic: **Deep Dive into Experience/Projects**
- Look at the candidate's 'Key Projects' or 'Work Experience' in the profile.
- Ask a specific implementation question (e.g., "How did you optimize X?", "What challenges did you face building Y?").
- Do not ask generic definitions. Ask about THEIR work.`

	technicalInstruction = `Topic: **Core Technical Skills (Programming Languages)**
- Look at the 'Top Skills' in the profile (e.g., Python, Java, React, SQL).
- Ask a conceptual or debugging question related to those languages.
- Example: "In Python, how do you handle memory management?" or "Explain the React Virtual DOM."`

	behavioralInstruction = `Topic: **Behavioral & Soft Skills**
- Ask a question about teamwork, conflict resolution, or problem-solving under pressure.
- Example: "Tell me about a time you had a disagreement with a team member. How did you resolve it?"`
)

// SelectMode maps the question counter onto an instruction mode:
// the first question introduces, the next two dig into projects, the middle
// of the interview covers technical skills, and the last question is
// behavioral.
func SelectMode(questionCount, maxQuestions int) Mode {
	switch {
	case questionCount == 0:
		return ModeIntroduction
	case questionCount < 3:
		return ModeExperience
	case questionCount < maxQuestions-1:
		return ModeTechnical
	default:
		return ModeBehavioral
	}
}

func instructionFor(mode Mode) string {
	switch mode {
	case ModeExperience:
		return experienceInstruction
	case ModeTechnical:
		return technicalInstruction
	case ModeBehavioral:
		return behavioralInstruction
	default:
		return fmt.Sprintf("Ask exactly: %q", IntroductionQuestion)
	}
}

func buildExtractProfilePrompt(resumeText string) string {
	return strings.ReplaceAll(extractProfileTemplate, "{{RESUME_TEXT}}", resumeText)
}

func buildGenerateQuestionPrompt(s *State, mode Mode, effectiveCount int) string {
	prompt := strings.ReplaceAll(generateQuestionTemplate, "{{NUMBER}}", strconv.Itoa(effectiveCount+1))
	prompt = strings.ReplaceAll(prompt, "{{TOTAL}}", strconv.Itoa(s.MaxQuestions))
	prompt = strings.ReplaceAll(prompt, "{{PROFILE}}", s.CandidateProfile)
	prompt = strings.ReplaceAll(prompt, "{{HISTORY}}", formatHistory(s.Messages))
	return strings.ReplaceAll(prompt, "{{INSTRUCTION}}", instructionFor(mode))
}

func buildAnalyzeAnswerPrompt(question, answer string) string {
	prompt := strings.ReplaceAll(analyzeAnswerTemplate, "{{QUESTION}}", question)
	return strings.ReplaceAll(prompt, "{{ANSWER}}", answer)
}

func buildFinalFeedbackPrompt(reports []string) string {
	var builder strings.Builder
	for i, report := range reports {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, report)
	}
	if builder.Len() == 0 {
		builder.WriteString("(no reports recorded)\n")
	}
	return strings.ReplaceAll(finalFeedbackTemplate, "{{REPORTS}}", strings.TrimSuffix(builder.String(), "\n"))
}

func formatHistory(messages []string) string {
	if len(messages) == 0 {
		return "(empty)"
	}

	lines := make([]string, 0, len(messages))
	for i, message := range messages {
		// The history starts with the assistant's introduction, then
		// alternates assistant/user.
		role := "Interviewer"
		if i%2 == 1 {
			role = "Candidate"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, message))
	}

	return strings.Join(lines, "\n")
}
