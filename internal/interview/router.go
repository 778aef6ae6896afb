package interview

// Decision tells the runner what to do after an answer has been analyzed.
type Decision string

const (
	DecisionContinueQuestioning Decision = "continue_questioning"
	DecisionCompileFeedback     Decision = "compile_feedback"
)

// Route is the pure routing function of the state machine: once the question
// counter reaches the session limit the interview moves to feedback
// compilation, otherwise another question is asked.
func Route(questionCount, maxQuestions int) Decision {
	if questionCount >= maxQuestions {
		return DecisionCompileFeedback
	}
	return DecisionContinueQuestioning
}
