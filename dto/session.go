package dto

// Lesson workflow session DTOs

type StartSessionRequest struct {
	MemeID string `json:"memeId" validate:"required"`
}

type RequestExplanationRequest struct {
	Language string `json:"language" validate:"required"`
}

type SelectLevelRequest struct {
	Level string `json:"level" validate:"required,oneof=beginner intermediate advanced"`
}

type SubmitAnswersRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

type SessionResponse struct {
	ID            string               `json:"id"`
	MemeID        string               `json:"memeId"`
	State         string               `json:"state"`
	SelectedLevel string               `json:"selectedLevel,omitempty"`
	Explanation   *ExplanationResponse `json:"explanation,omitempty"`
	Lesson        *LessonResponse      `json:"lesson,omitempty"`
	LastError     string               `json:"lastError,omitempty"`
}

type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

type SubmitAnswersResponse struct {
	Score        int              `json:"score"`
	CorrectCount int              `json:"correctCount"`
	Total        int              `json:"total"`
	Results      []QuestionResult `json:"results"`
}
