package dto

import (
	"github.com/airmems/meme_api/model"
)

// Generation proxy DTOs. These keep the wire shape of the upstream proxy
// contract: camelCase fields, epoch-millis timestamps, no response envelope.

type ExplainMemeRequest struct {
	MemeID    string `json:"memeId" validate:"required"`
	MemeTitle string `json:"memeTitle" validate:"required"`
	MemeURL   string `json:"memeUrl" validate:"required,url"`
	Language  string `json:"language" validate:"required"`
}

type ExplanationResponse struct {
	ID              string `json:"id"`
	MemeID          string `json:"memeId"`
	Language        string `json:"language"`
	Explanation     string `json:"explanation"`
	CulturalContext string `json:"culturalContext,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
}

type GenerateLessonRequest struct {
	MemeID    string `json:"memeId" validate:"required"`
	MemeTitle string `json:"memeTitle" validate:"required"`
	MemeURL   string `json:"memeUrl" validate:"required,url"`
	Level     string `json:"level" validate:"required,oneof=beginner intermediate advanced"`
}

type VocabularyItemResponse struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

type QuizQuestionResponse struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type LessonResponse struct {
	ID          string                   `json:"id"`
	MemeID      string                   `json:"memeId"`
	Level       string                   `json:"level"`
	Explanation string                   `json:"explanation"`
	Vocabulary  []VocabularyItemResponse `json:"vocabulary"`
	Questions   []QuizQuestionResponse   `json:"questions"`
	CreatedAt   int64                    `json:"createdAt"`
}

type LessonListResponse struct {
	Lessons []LessonResponse `json:"lessons"`
	Total   int              `json:"total"`
}

type SavedLessonResponse struct {
	Lesson  LessonResponse `json:"lesson"`
	SavedAt int64          `json:"savedAt"`
}

type SavedLessonListResponse struct {
	Saved []SavedLessonResponse `json:"saved"`
	Total int                   `json:"total"`
}

type ProgressResponse struct {
	LessonID    string            `json:"lessonId"`
	Answers     map[string]string `json:"answers"`
	Score       int               `json:"score"`
	CompletedAt int64             `json:"completedAt"`
}

type AccountStatsResponse struct {
	LessonsGenerated int            `json:"lessonsGenerated"`
	LessonsCompleted int            `json:"lessonsCompleted"`
	AverageScore     int            `json:"averageScore"`
	SavedLessons     int            `json:"savedLessons"`
	LessonsByLevel   map[string]int `json:"lessonsByLevel"`
}

func MapLessonToResponse(l *model.Lesson) (*LessonResponse, error) {
	vocab, err := l.ParseVocabulary()
	if err != nil {
		return nil, err
	}
	questions, err := l.ParseQuestions()
	if err != nil {
		return nil, err
	}

	resp := &LessonResponse{
		ID:          l.ID,
		MemeID:      l.MemeID,
		Level:       l.Level,
		Explanation: l.Explanation,
		Vocabulary:  make([]VocabularyItemResponse, len(vocab)),
		Questions:   make([]QuizQuestionResponse, len(questions)),
		CreatedAt:   l.CreatedAt.UnixMilli(),
	}
	for i, v := range vocab {
		resp.Vocabulary[i] = VocabularyItemResponse(v)
	}
	for i, q := range questions {
		resp.Questions[i] = QuizQuestionResponse{
			ID:            q.ID,
			Type:          q.Type,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}
	return resp, nil
}

func MapExplanationToResponse(e *model.Explanation) ExplanationResponse {
	return ExplanationResponse{
		ID:              e.ID,
		MemeID:          e.MemeID,
		Language:        e.Language,
		Explanation:     e.Explanation,
		CulturalContext: e.CulturalContext,
		CreatedAt:       e.CreatedAt.UnixMilli(),
	}
}
