package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/airmems/meme_api/dto"
	"github.com/airmems/meme_api/model"
	"github.com/airmems/meme_api/shared"
)

// WorkflowState is the single discriminated value driving the lesson
// workflow. Every operation's legality depends on it alone, so contradictory
// step combinations cannot be represented.
type WorkflowState string

const (
	StateExplanationPending WorkflowState = "explanation_pending"
	StateLevelSelection     WorkflowState = "level_selection"
	StateLessonPending      WorkflowState = "lesson_pending"
	StateLessonReady        WorkflowState = "lesson_ready"
)

// LessonSession is one user's pass through the workflow for one meme.
type LessonSession struct {
	ID            string
	Meme          *model.Meme
	State         WorkflowState
	SelectedLevel string
	Explanation   *model.Explanation
	Lesson        *model.Lesson
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const sessionTTL = 2 * time.Hour

// LessonService drives the lesson workflow: level selection, generation,
// answer tracking, scoring and persistence. Sessions live in memory; all
// durable records go through the store.
type LessonService struct {
	appContext.DefaultService

	sqlSvc *SqliteService
	aiSvc  *AIService

	mu       sync.RWMutex
	sessions map[string]*LessonSession

	stop chan struct{}
}

const LESSON_SVC = "lesson_svc"

func (svc *LessonService) Id() string {
	return LESSON_SVC
}

func (svc *LessonService) Configure(ctx *appContext.Context) error {
	svc.sessions = make(map[string]*LessonSession)
	svc.stop = make(chan struct{})
	return svc.DefaultService.Configure(ctx)
}

func (svc *LessonService) Start() error {
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.aiSvc = svc.Service(AI_SVC).(*AIService)

	go svc.expireSessions()
	return nil
}

func (svc *LessonService) Shutdown() {
	close(svc.stop)
}

func (svc *LessonService) expireSessions() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-svc.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-sessionTTL)
			svc.mu.Lock()
			for id, session := range svc.sessions {
				if session.UpdatedAt.Before(cutoff) {
					delete(svc.sessions, id)
				}
			}
			svc.mu.Unlock()
		}
	}
}

// ==================== WORKFLOW ====================

// StartSession opens a workflow for a known meme, entering the optional
// explanation step.
func (svc *LessonService) StartSession(memeID string) (*LessonSession, error) {
	meme, err := svc.sqlSvc.Store().GetMeme(memeID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	if meme == nil {
		return nil, shared.NewNotFoundError("Meme not found")
	}

	session := &LessonSession{
		ID:        uuid.NewString(),
		Meme:      meme,
		State:     StateExplanationPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	svc.mu.Lock()
	svc.sessions[session.ID] = session
	svc.mu.Unlock()

	log.WithFields(log.Fields{"session": session.ID, "meme": memeID}).Info("Lesson session started")
	return session, nil
}

func (svc *LessonService) GetSession(sessionID string) (*LessonSession, error) {
	svc.mu.RLock()
	session, ok := svc.sessions[sessionID]
	svc.mu.RUnlock()
	if !ok {
		return nil, shared.NewNotFoundError("Session not found")
	}
	return session, nil
}

// RequestExplanation issues an explanation request for the session's meme in
// the chosen language. Legal while the explanation step is showing and after
// it was skipped; it never changes level-selection readiness.
func (svc *LessonService) RequestExplanation(ctx context.Context, sessionID, language string) (*model.Explanation, error) {
	session, err := svc.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !shared.IsValidLanguage(language) {
		return nil, shared.NewBadRequestError(nil, "Unsupported language")
	}

	svc.mu.Lock()
	if session.State != StateExplanationPending && session.State != StateLevelSelection {
		state := session.State
		svc.mu.Unlock()
		return nil, shared.NewConflictError(fmt.Sprintf("Cannot request explanation in state %s", state))
	}
	meme := session.Meme
	svc.mu.Unlock()

	explanation, err := svc.aiSvc.ExplainMeme(ctx, meme.ID, meme.Title, meme.URL, language)
	if err != nil {
		svc.recordError(session, err)
		return nil, err
	}

	// Cache the explanation; a storage failure degrades to display only.
	if err := svc.sqlSvc.Store().PutExplanation(explanation); err != nil {
		log.WithError(err).Warn("Failed to cache explanation")
	}

	svc.mu.Lock()
	session.Explanation = explanation
	session.LastError = ""
	session.UpdatedAt = time.Now()
	svc.mu.Unlock()

	return explanation, nil
}

// SkipExplanation advances past the explanation step by explicit user action.
func (svc *LessonService) SkipExplanation(sessionID string) (*LessonSession, error) {
	session, err := svc.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if session.State != StateExplanationPending {
		return nil, shared.NewConflictError(fmt.Sprintf("Cannot skip explanation in state %s", session.State))
	}
	session.State = StateLevelSelection
	session.UpdatedAt = time.Now()
	return session, nil
}

// SelectLevel triggers lesson generation for (meme, level). The session sits
// in lesson_pending for the duration of the upstream call; failure reverts to
// level_selection with the error surfaced, ready for a re-click.
func (svc *LessonService) SelectLevel(ctx context.Context, sessionID, level string) (*LessonSession, error) {
	session, err := svc.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !shared.IsValidLevel(level) {
		return nil, shared.NewBadRequestError(nil, "Level must be one of: beginner, intermediate, advanced")
	}

	svc.mu.Lock()
	if session.State != StateLevelSelection {
		state := session.State
		svc.mu.Unlock()
		return nil, shared.NewConflictError(fmt.Sprintf("Cannot select level in state %s", state))
	}
	session.State = StateLessonPending
	session.SelectedLevel = level
	session.UpdatedAt = time.Now()
	meme := session.Meme
	svc.mu.Unlock()

	lesson, err := svc.aiSvc.GenerateLesson(ctx, meme.ID, meme.Title, meme.URL, level)
	if err != nil {
		svc.mu.Lock()
		session.State = StateLevelSelection
		session.LastError = err.Error()
		session.UpdatedAt = time.Now()
		svc.mu.Unlock()
		return nil, err
	}

	if err := svc.sqlSvc.Store().PutLesson(lesson); err != nil {
		err = svc.sqlSvc.HandleError(err)
		svc.mu.Lock()
		session.State = StateLevelSelection
		session.LastError = err.Error()
		session.UpdatedAt = time.Now()
		svc.mu.Unlock()
		return nil, err
	}

	svc.mu.Lock()
	session.Lesson = lesson
	session.State = StateLessonReady
	session.LastError = ""
	session.UpdatedAt = time.Now()
	svc.mu.Unlock()

	log.WithFields(log.Fields{"session": sessionID, "lesson": lesson.ID, "level": level}).Info("Lesson generated")
	return session, nil
}

func (svc *LessonService) recordError(session *LessonSession, err error) {
	svc.mu.Lock()
	session.LastError = err.Error()
	session.UpdatedAt = time.Now()
	svc.mu.Unlock()
}

// SubmitSessionAnswers scores the session's ready lesson.
func (svc *LessonService) SubmitSessionAnswers(sessionID string, answers map[string]string) (*dto.SubmitAnswersResponse, error) {
	session, err := svc.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	svc.mu.RLock()
	state := session.State
	lesson := session.Lesson
	svc.mu.RUnlock()

	if state != StateLessonReady || lesson == nil {
		return nil, shared.NewConflictError(fmt.Sprintf("No lesson to answer in state %s", state))
	}
	return svc.scoreAndPersist(lesson, answers)
}

// SubmitAnswers scores a persisted lesson directly, for revisiting saved
// lessons outside a live session.
func (svc *LessonService) SubmitAnswers(lessonID string, answers map[string]string) (*dto.SubmitAnswersResponse, error) {
	lesson, err := svc.sqlSvc.Store().GetLesson(lessonID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	if lesson == nil {
		return nil, shared.NewNotFoundError("Lesson not found")
	}
	return svc.scoreAndPersist(lesson, answers)
}

func (svc *LessonService) scoreAndPersist(lesson *model.Lesson, answers map[string]string) (*dto.SubmitAnswersResponse, error) {
	questions, err := lesson.ParseQuestions()
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, shared.NewBadRequestError(nil, "Lesson has no questions")
	}

	correctCount := 0
	results := make([]dto.QuestionResult, len(questions))
	for i, question := range questions {
		userAnswer := answers[question.ID]
		isCorrect := userAnswer != "" && shared.AnswerMatches(question.Type, question.CorrectAnswer, userAnswer)
		if isCorrect {
			correctCount++
		}
		results[i] = dto.QuestionResult{
			QuestionID:    question.ID,
			UserAnswer:    userAnswer,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   question.Explanation,
		}
	}

	score := shared.Score(correctCount, len(questions))

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	progress := &model.Progress{
		LessonID:    lesson.ID,
		Answers:     answersJSON,
		Score:       score,
		CompletedAt: time.Now(),
	}
	if err := svc.sqlSvc.Store().PutProgress(progress); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	return &dto.SubmitAnswersResponse{
		Score:        score,
		CorrectCount: correctCount,
		Total:        len(questions),
		Results:      results,
	}, nil
}

// ==================== LESSON LIBRARY ====================

func (svc *LessonService) GetLesson(lessonID string) (*dto.LessonResponse, error) {
	lesson, err := svc.sqlSvc.Store().GetLesson(lessonID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	if lesson == nil {
		return nil, shared.NewNotFoundError("Lesson not found")
	}
	return dto.MapLessonToResponse(lesson)
}

// ListLessons returns every generated lesson, newest first.
func (svc *LessonService) ListLessons() (*dto.LessonListResponse, error) {
	lessons, err := svc.sqlSvc.Store().GetAllLessons()
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].CreatedAt.After(lessons[j].CreatedAt)
	})

	resp := &dto.LessonListResponse{Lessons: make([]dto.LessonResponse, 0, len(lessons)), Total: len(lessons)}
	for i := range lessons {
		mapped, err := dto.MapLessonToResponse(&lessons[i])
		if err != nil {
			log.WithError(err).WithField("lesson", lessons[i].ID).Warn("Skipping unparsable lesson")
			continue
		}
		resp.Lessons = append(resp.Lessons, *mapped)
	}
	resp.Total = len(resp.Lessons)
	return resp, nil
}

func (svc *LessonService) DeleteLesson(lessonID string) error {
	return svc.sqlSvc.HandleError(svc.sqlSvc.Store().DeleteLesson(lessonID))
}

// SaveLesson bookmarks a generated lesson.
func (svc *LessonService) SaveLesson(lessonID string) error {
	lesson, err := svc.sqlSvc.Store().GetLesson(lessonID)
	if err != nil {
		return svc.sqlSvc.HandleError(err)
	}
	if lesson == nil {
		return shared.NewNotFoundError("Lesson not found")
	}
	return svc.sqlSvc.HandleError(svc.sqlSvc.Store().MarkLessonSaved(lessonID))
}

// ListSavedLessons joins saved markers to their lessons, newest save first.
// Markers whose lesson was deleted are skipped.
func (svc *LessonService) ListSavedLessons() (*dto.SavedLessonListResponse, error) {
	markers, err := svc.sqlSvc.Store().GetSavedLessons()
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	sort.Slice(markers, func(i, j int) bool {
		return markers[i].SavedAt.After(markers[j].SavedAt)
	})

	resp := &dto.SavedLessonListResponse{Saved: make([]dto.SavedLessonResponse, 0, len(markers))}
	for _, marker := range markers {
		lesson, err := svc.sqlSvc.Store().GetLesson(marker.LessonID)
		if err != nil {
			return nil, svc.sqlSvc.HandleError(err)
		}
		if lesson == nil {
			continue
		}
		mapped, err := dto.MapLessonToResponse(lesson)
		if err != nil {
			continue
		}
		resp.Saved = append(resp.Saved, dto.SavedLessonResponse{
			Lesson:  *mapped,
			SavedAt: marker.SavedAt.UnixMilli(),
		})
	}
	resp.Total = len(resp.Saved)
	return resp, nil
}

func (svc *LessonService) GetProgress(lessonID string) (*dto.ProgressResponse, error) {
	progress, err := svc.sqlSvc.Store().GetProgress(lessonID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	if progress == nil {
		return nil, shared.NewNotFoundError("Progress not found")
	}

	answers := map[string]string{}
	if len(progress.Answers) > 0 {
		if err := json.Unmarshal(progress.Answers, &answers); err != nil {
			return nil, err
		}
	}
	return &dto.ProgressResponse{
		LessonID:    progress.LessonID,
		Answers:     answers,
		Score:       progress.Score,
		CompletedAt: progress.CompletedAt.UnixMilli(),
	}, nil
}

// GetStats computes account page statistics from local records.
func (svc *LessonService) GetStats() (*dto.AccountStatsResponse, error) {
	store := svc.sqlSvc.Store()

	lessons, err := store.GetAllLessons()
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	progress, err := store.GetAllProgress()
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	markers, err := store.GetSavedLessons()
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	byLevel := map[string]int{}
	for _, l := range lessons {
		byLevel[l.Level]++
	}

	avgScore := 0
	if len(progress) > 0 {
		total := 0
		for _, p := range progress {
			total += p.Score
		}
		avgScore = int(float64(total)/float64(len(progress)) + 0.5)
	}

	return &dto.AccountStatsResponse{
		LessonsGenerated: len(lessons),
		LessonsCompleted: len(progress),
		AverageScore:     avgScore,
		SavedLessons:     len(markers),
		LessonsByLevel:   byLevel,
	}, nil
}

// ClearData wipes lessons, progress, markers and explanations, plus the
// in-memory sessions pointing at them. Cached memes survive.
func (svc *LessonService) ClearData() error {
	if err := svc.sqlSvc.Store().ClearAll(); err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	svc.mu.Lock()
	svc.sessions = make(map[string]*LessonSession)
	svc.mu.Unlock()
	return nil
}

// ==================== HANDLER-FACING WRAPPERS ====================

// sessionView copies the mutable session fields under the read lock so a
// concurrent transition can never race the response mapping.
func (svc *LessonService) sessionView(session *LessonSession) LessonSession {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return *session
}

func (svc *LessonService) StartWorkflow(memeID string) (*dto.SessionResponse, error) {
	session, err := svc.StartSession(memeID)
	if err != nil {
		return nil, err
	}
	view := svc.sessionView(session)
	return MapSessionToResponse(&view)
}

func (svc *LessonService) GetWorkflow(sessionID string) (*dto.SessionResponse, error) {
	session, err := svc.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	view := svc.sessionView(session)
	return MapSessionToResponse(&view)
}

func (svc *LessonService) RequestWorkflowExplanation(ctx context.Context, sessionID, language string) (*dto.SessionResponse, error) {
	if _, err := svc.RequestExplanation(ctx, sessionID, language); err != nil {
		return nil, err
	}
	return svc.GetWorkflow(sessionID)
}

func (svc *LessonService) SkipWorkflowExplanation(sessionID string) (*dto.SessionResponse, error) {
	session, err := svc.SkipExplanation(sessionID)
	if err != nil {
		return nil, err
	}
	view := svc.sessionView(session)
	return MapSessionToResponse(&view)
}

func (svc *LessonService) SelectWorkflowLevel(ctx context.Context, sessionID, level string) (*dto.SessionResponse, error) {
	session, err := svc.SelectLevel(ctx, sessionID, level)
	if err != nil {
		return nil, err
	}
	view := svc.sessionView(session)
	return MapSessionToResponse(&view)
}

// ==================== PROXY OPERATIONS ====================

// ExplainMemeDirect serves the stateless proxy contract: generate, cache,
// return the bare explanation body.
func (svc *LessonService) ExplainMemeDirect(ctx context.Context, req dto.ExplainMemeRequest) (*dto.ExplanationResponse, error) {
	explanation, err := svc.aiSvc.ExplainMeme(ctx, req.MemeID, req.MemeTitle, req.MemeURL, req.Language)
	if err != nil {
		return nil, err
	}

	if err := svc.sqlSvc.Store().PutExplanation(explanation); err != nil {
		log.WithError(err).Warn("Failed to cache explanation")
	}

	mapped := dto.MapExplanationToResponse(explanation)
	return &mapped, nil
}

// GenerateLessonDirect generates and persists a lesson for the proxy
// contract, without a workflow session.
func (svc *LessonService) GenerateLessonDirect(ctx context.Context, req dto.GenerateLessonRequest) (*dto.LessonResponse, error) {
	lesson, err := svc.aiSvc.GenerateLesson(ctx, req.MemeID, req.MemeTitle, req.MemeURL, req.Level)
	if err != nil {
		return nil, err
	}

	if err := svc.sqlSvc.Store().PutLesson(lesson); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	return dto.MapLessonToResponse(lesson)
}

// MapSessionToResponse shapes a session for the API. It expects a stable
// snapshot (sessionView), not the live session shared across goroutines.
func MapSessionToResponse(session *LessonSession) (*dto.SessionResponse, error) {
	resp := &dto.SessionResponse{
		ID:            session.ID,
		MemeID:        session.Meme.ID,
		State:         string(session.State),
		SelectedLevel: session.SelectedLevel,
		LastError:     session.LastError,
	}
	if session.Explanation != nil {
		mapped := dto.MapExplanationToResponse(session.Explanation)
		resp.Explanation = &mapped
	}
	if session.Lesson != nil {
		mapped, err := dto.MapLessonToResponse(session.Lesson)
		if err != nil {
			return nil, err
		}
		resp.Lesson = mapped
	}
	return resp, nil
}
