package model

import (
	"encoding/json"
	"time"
)

// Lesson is a generated vocabulary + quiz unit tied to one meme and level.
// Immutable after creation; "saved" is a separate marker record.
type Lesson struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	MemeID      string          `json:"meme_id" gorm:"not null;index"`
	Level       string          `json:"level" gorm:"not null"` // beginner, intermediate, advanced
	Explanation string          `json:"explanation" gorm:"type:text"`
	Vocabulary  json.RawMessage `json:"vocabulary" gorm:"type:text"` // JSON array of VocabularyItem
	Questions   json.RawMessage `json:"questions" gorm:"type:text"`  // JSON array of QuizQuestion
	CreatedAt   time.Time       `json:"created_at"`
}

// VocabularyItem is one word entry inside a lesson.
type VocabularyItem struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

// QuizQuestion is one interactive question inside a lesson
type QuizQuestion struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"` // multiple_choice, fill_in_the_gap, true_false
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Explanation is a generated description of a meme in one target language.
// Repeated requests for the same (meme, language) create new rows.
type Explanation struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	MemeID          string    `json:"meme_id" gorm:"not null;index"`
	Language        string    `json:"language" gorm:"not null"`
	Explanation     string    `json:"explanation" gorm:"type:text"`
	CulturalContext string    `json:"cultural_context,omitempty" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
}

// Progress records the submitted answers and score for one lesson.
// Keyed by lesson id; resubmission overwrites.
type Progress struct {
	LessonID    string          `json:"lesson_id" gorm:"primaryKey"`
	Answers     json.RawMessage `json:"answers" gorm:"type:text"` // questionId -> submitted answer
	Score       int             `json:"score"`
	CompletedAt time.Time       `json:"completed_at"`
}

// SavedLesson marks a lesson as bookmarked. Presence is the whole signal.
type SavedLesson struct {
	LessonID string    `json:"lesson_id" gorm:"primaryKey"`
	SavedAt  time.Time `json:"saved_at"`
}

// ParseQuestions decodes the stored question array.
func (l *Lesson) ParseQuestions() ([]QuizQuestion, error) {
	var questions []QuizQuestion
	if len(l.Questions) == 0 {
		return questions, nil
	}
	if err := json.Unmarshal(l.Questions, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ParseVocabulary decodes the stored vocabulary array.
func (l *Lesson) ParseVocabulary() ([]VocabularyItem, error) {
	var vocab []VocabularyItem
	if len(l.Vocabulary) == 0 {
		return vocab, nil
	}
	if err := json.Unmarshal(l.Vocabulary, &vocab); err != nil {
		return nil, err
	}
	return vocab, nil
}
