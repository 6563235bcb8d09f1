package handlers

import (
	"context"

	"github.com/airmems/meme_api/dto"
)

type FeedServiceInterface interface {
	GetFeedPage(ctx context.Context, page int) (*dto.MemeFeedResponse, error)
	GetMemeByID(id string) (*dto.MemeResponse, error)
}

type LessonServiceInterface interface {
	GetLesson(lessonID string) (*dto.LessonResponse, error)
	ListLessons() (*dto.LessonListResponse, error)
	DeleteLesson(lessonID string) error
	SaveLesson(lessonID string) error
	ListSavedLessons() (*dto.SavedLessonListResponse, error)
	SubmitAnswers(lessonID string, answers map[string]string) (*dto.SubmitAnswersResponse, error)
	GetProgress(lessonID string) (*dto.ProgressResponse, error)
	GetStats() (*dto.AccountStatsResponse, error)
	ClearData() error
}

type SessionServiceInterface interface {
	StartWorkflow(memeID string) (*dto.SessionResponse, error)
	GetWorkflow(sessionID string) (*dto.SessionResponse, error)
	RequestWorkflowExplanation(ctx context.Context, sessionID, language string) (*dto.SessionResponse, error)
	SkipWorkflowExplanation(sessionID string) (*dto.SessionResponse, error)
	SelectWorkflowLevel(ctx context.Context, sessionID, level string) (*dto.SessionResponse, error)
	SubmitSessionAnswers(sessionID string, answers map[string]string) (*dto.SubmitAnswersResponse, error)
}

type ProxyServiceInterface interface {
	ExplainMemeDirect(ctx context.Context, req dto.ExplainMemeRequest) (*dto.ExplanationResponse, error)
	GenerateLessonDirect(ctx context.Context, req dto.GenerateLessonRequest) (*dto.LessonResponse, error)
}
