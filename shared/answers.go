package shared

import "strings"

// AnswerMatches is the single comparison policy for quiz answers.
// Multiple choice and true/false answers are app-supplied verbatim strings,
// so they compare exactly; typed fill-in-the-gap answers compare
// case-insensitively after trimming.
func AnswerMatches(questionType, correctAnswer, userAnswer string) bool {
	switch questionType {
	case QuestionTypeFillInTheGap:
		return strings.EqualFold(strings.TrimSpace(correctAnswer), strings.TrimSpace(userAnswer))
	default:
		return correctAnswer == userAnswer
	}
}

// Score converts a correct count into the 0-100 integer score.
func Score(correctCount, totalQuestions int) int {
	if totalQuestions == 0 {
		return 0
	}
	return int(float64(correctCount)/float64(totalQuestions)*100 + 0.5)
}
