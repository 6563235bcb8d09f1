package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerMatches(t *testing.T) {
	tests := []struct {
		name          string
		questionType  string
		correctAnswer string
		userAnswer    string
		want          bool
	}{
		{"multiple choice exact", QuestionTypeMultipleChoice, "sits", "sits", true},
		{"multiple choice case mismatch", QuestionTypeMultipleChoice, "sits", "Sits", false},
		{"true/false exact", QuestionTypeTrueFalse, "True", "True", true},
		{"true/false wrong option", QuestionTypeTrueFalse, "True", "False", false},
		{"true/false case mismatch", QuestionTypeTrueFalse, "True", "true", false},
		{"gap exact", QuestionTypeFillInTheGap, "whom", "whom", true},
		{"gap case insensitive", QuestionTypeFillInTheGap, "Whom", "whom", true},
		{"gap trims whitespace", QuestionTypeFillInTheGap, "whom", "  whom  ", true},
		{"gap wrong word", QuestionTypeFillInTheGap, "whom", "who", false},
		{"gap internal spaces not collapsed", QuestionTypeFillInTheGap, "give up", "give  up", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnswerMatches(tt.questionType, tt.correctAnswer, tt.userAnswer))
		})
	}
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0, Score(0, 0))
	assert.Equal(t, 0, Score(0, 4))
	assert.Equal(t, 50, Score(1, 2))
	assert.Equal(t, 100, Score(3, 3))
	// 1/3 rounds half up to 33, 2/3 to 67.
	assert.Equal(t, 33, Score(1, 3))
	assert.Equal(t, 67, Score(2, 3))
}
