package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airmems/meme_api/shared"
)

func validLessonReply(t *testing.T) []byte {
	t.Helper()
	reply, err := json.Marshal(map[string]interface{}{
		"vocabulary": []map[string]string{
			{"word": "idiom", "definition": "a fixed expression", "example": "Break a leg!"},
		},
		"questions": []map[string]interface{}{
			{
				"id":            "q1",
				"type":          shared.QuestionTypeMultipleChoice,
				"question":      "The cat ___ on the mat.",
				"options":       []string{"sits", "sit", "sitting"},
				"correctAnswer": "sits",
				"explanation":   "Third person singular takes -s.",
			},
		},
	})
	require.NoError(t, err)
	return reply
}

func TestBuildLessonFromReply(t *testing.T) {
	lesson, err := BuildLessonFromReply("m1", shared.LevelBeginner, validLessonReply(t))
	require.NoError(t, err)

	assert.Equal(t, "m1", lesson.MemeID)
	assert.Equal(t, shared.LevelBeginner, lesson.Level)
	assert.Regexp(t, `^lesson_m1_beginner_\d+$`, lesson.ID)

	questions, err := lesson.ParseQuestions()
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "sits", questions[0].CorrectAnswer)

	vocab, err := lesson.ParseVocabulary()
	require.NoError(t, err)
	require.Len(t, vocab, 1)
	assert.Equal(t, "idiom", vocab[0].Word)
}

func TestBuildLessonFromReplyRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", `the model apologised instead`},
		{"missing vocabulary", `{"questions":[{"id":"q1","type":"true_false","question":"Q","correctAnswer":"True"}]}`},
		{"missing questions", `{"vocabulary":[{"word":"w","definition":"d","example":"e"}]}`},
		{"question missing id", `{"vocabulary":[{"word":"w","definition":"d","example":"e"}],"questions":[{"type":"true_false","question":"Q","correctAnswer":"True"}]}`},
		{"question missing answer", `{"vocabulary":[{"word":"w","definition":"d","example":"e"}],"questions":[{"id":"q1","type":"true_false","question":"Q"}]}`},
		{"unknown question type", `{"vocabulary":[{"word":"w","definition":"d","example":"e"}],"questions":[{"id":"q1","type":"essay","question":"Q","correctAnswer":"True"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildLessonFromReply("m1", shared.LevelBeginner, []byte(tt.reply))
			require.Error(t, err)
			appErr, ok := shared.GetAppError(err)
			require.True(t, ok)
			assert.Equal(t, fiber.StatusBadGateway, appErr.StatusCode)
		})
	}
}

func TestAIServiceRequiresKey(t *testing.T) {
	svc := &AIService{}

	_, err := svc.ExplainMeme(context.Background(), "m1", "title", "https://i.redd.it/m1.jpg", "english")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusInternalServerError, appErr.StatusCode)

	_, err = svc.GenerateLesson(context.Background(), "m1", "title", "https://i.redd.it/m1.jpg", shared.LevelBeginner)
	require.Error(t, err)
}
