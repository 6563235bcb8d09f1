package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/airmems/meme_api/model"
	"github.com/airmems/meme_api/services/repositories"
	"github.com/airmems/meme_api/shared"
)

func newTestLessonService(t *testing.T) *LessonService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store := repositories.NewStore(db)
	require.NoError(t, store.Initialize())

	svc := &LessonService{
		sqlSvc:   &SqliteService{db: db, store: store},
		aiSvc:    &AIService{}, // no client configured
		sessions: make(map[string]*LessonSession),
		stop:     make(chan struct{}),
	}
	t.Cleanup(func() { _ = store.Close() })
	return svc
}

func seedMeme(t *testing.T, svc *LessonService, id string) {
	t.Helper()
	require.NoError(t, svc.sqlSvc.Store().PutMemes([]model.Meme{{
		ID:        id,
		Title:     "When the code compiles first try",
		URL:       "https://i.redd.it/" + id + ".jpg",
		Subreddit: "r/ProgrammerHumor",
		Permalink: "https://reddit.com/r/ProgrammerHumor/" + id,
		Upvotes:   100,
		Author:    "dev",
		CreatedAt: time.Now(),
	}}))
}

func seedLesson(t *testing.T, svc *LessonService, id string, questions []model.QuizQuestion) *model.Lesson {
	t.Helper()
	vocab, _ := json.Marshal([]model.VocabularyItem{{Word: "compile", Definition: "turn source into a binary", Example: "It compiles!"}})
	qs, _ := json.Marshal(questions)
	lesson := &model.Lesson{
		ID:         id,
		MemeID:     "m1",
		Level:      shared.LevelBeginner,
		Vocabulary: vocab,
		Questions:  qs,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, svc.sqlSvc.Store().PutLesson(lesson))
	return lesson
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, status, appErr.StatusCode)
}

func TestStartSessionUnknownMeme(t *testing.T) {
	svc := newTestLessonService(t)

	_, err := svc.StartSession("missing")
	requireStatus(t, err, fiber.StatusNotFound)
}

func TestStartSessionEntersExplanationStep(t *testing.T) {
	svc := newTestLessonService(t)
	seedMeme(t, svc, "m1")

	session, err := svc.StartSession("m1")
	require.NoError(t, err)
	assert.Equal(t, StateExplanationPending, session.State)
	assert.NotEmpty(t, session.ID)

	got, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestSkipExplanationOnlyFromExplanationStep(t *testing.T) {
	svc := newTestLessonService(t)
	seedMeme(t, svc, "m1")
	session, err := svc.StartSession("m1")
	require.NoError(t, err)

	session, err = svc.SkipExplanation(session.ID)
	require.NoError(t, err)
	assert.Equal(t, StateLevelSelection, session.State)

	_, err = svc.SkipExplanation(session.ID)
	requireStatus(t, err, fiber.StatusConflict)
}

func TestRequestExplanationValidation(t *testing.T) {
	svc := newTestLessonService(t)
	seedMeme(t, svc, "m1")
	session, err := svc.StartSession("m1")
	require.NoError(t, err)

	_, err = svc.RequestExplanation(context.Background(), session.ID, "klingon")
	requireStatus(t, err, fiber.StatusBadRequest)

	// Explanation stays available after skipping, but not once a lesson is up.
	_, err = svc.SkipExplanation(session.ID)
	require.NoError(t, err)

	svc.mu.Lock()
	session.State = StateLessonReady
	svc.mu.Unlock()
	_, err = svc.RequestExplanation(context.Background(), session.ID, "english")
	requireStatus(t, err, fiber.StatusConflict)
}

func TestSelectLevelValidation(t *testing.T) {
	svc := newTestLessonService(t)
	seedMeme(t, svc, "m1")
	session, err := svc.StartSession("m1")
	require.NoError(t, err)

	_, err = svc.SelectLevel(context.Background(), session.ID, "expert")
	requireStatus(t, err, fiber.StatusBadRequest)

	// Level selection is not reachable until the explanation step is resolved.
	_, err = svc.SelectLevel(context.Background(), session.ID, shared.LevelBeginner)
	requireStatus(t, err, fiber.StatusConflict)
}

func TestSelectLevelRevertsOnGenerationFailure(t *testing.T) {
	svc := newTestLessonService(t)
	seedMeme(t, svc, "m1")
	session, err := svc.StartSession("m1")
	require.NoError(t, err)
	_, err = svc.SkipExplanation(session.ID)
	require.NoError(t, err)

	// The AI client is unconfigured, so generation fails; the session must
	// return to level selection with the error surfaced for a retry.
	_, err = svc.SelectLevel(context.Background(), session.ID, shared.LevelIntermediate)
	require.Error(t, err)

	got, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, StateLevelSelection, got.State)
	assert.NotEmpty(t, got.LastError)
	assert.Nil(t, got.Lesson)
}

func TestSubmitSessionAnswersRequiresReadyLesson(t *testing.T) {
	svc := newTestLessonService(t)
	seedMeme(t, svc, "m1")
	session, err := svc.StartSession("m1")
	require.NoError(t, err)

	_, err = svc.SubmitSessionAnswers(session.ID, map[string]string{"q1": "sits"})
	requireStatus(t, err, fiber.StatusConflict)
}

func TestSubmitAnswersScoring(t *testing.T) {
	svc := newTestLessonService(t)
	seedLesson(t, svc, "l1", []model.QuizQuestion{
		{
			ID:            "q1",
			Type:          shared.QuestionTypeMultipleChoice,
			Question:      "The cat ___ on the mat.",
			Options:       []string{"sits", "sit", "sitting"},
			CorrectAnswer: "sits",
			Explanation:   "Third person singular takes -s.",
		},
		{
			ID:            "q2",
			Type:          shared.QuestionTypeTrueFalse,
			Question:      "'Whom' is falling out of everyday use.",
			CorrectAnswer: "True",
			Explanation:   "Informal English mostly uses 'who'.",
		},
	})

	resp, err := svc.SubmitAnswers("l1", map[string]string{"q1": "sits", "q2": "False"})
	require.NoError(t, err)

	assert.Equal(t, 50, resp.Score)
	assert.Equal(t, 1, resp.CorrectCount)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].IsCorrect)
	assert.False(t, resp.Results[1].IsCorrect)
	assert.Equal(t, "True", resp.Results[1].CorrectAnswer)

	// Scoring also persists progress for the account page.
	progress, err := svc.GetProgress("l1")
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Score)
	assert.Equal(t, "sits", progress.Answers["q1"])
}

func TestSubmitAnswersUnansweredCountsWrong(t *testing.T) {
	svc := newTestLessonService(t)
	seedLesson(t, svc, "l1", []model.QuizQuestion{
		{ID: "q1", Type: shared.QuestionTypeFillInTheGap, Question: "Fill it", CorrectAnswer: "whom"},
	})

	resp, err := svc.SubmitAnswers("l1", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
	assert.False(t, resp.Results[0].IsCorrect)
}

func TestSubmitAnswersNoQuestions(t *testing.T) {
	svc := newTestLessonService(t)
	seedLesson(t, svc, "l1", nil)

	_, err := svc.SubmitAnswers("l1", map[string]string{})
	requireStatus(t, err, fiber.StatusBadRequest)
}

func TestSubmitAnswersUnknownLesson(t *testing.T) {
	svc := newTestLessonService(t)

	_, err := svc.SubmitAnswers("missing", map[string]string{})
	requireStatus(t, err, fiber.StatusNotFound)
}

func TestSaveAndListSavedLessons(t *testing.T) {
	svc := newTestLessonService(t)

	err := svc.SaveLesson("missing")
	requireStatus(t, err, fiber.StatusNotFound)

	seedLesson(t, svc, "l1", []model.QuizQuestion{
		{ID: "q1", Type: shared.QuestionTypeTrueFalse, Question: "Q", CorrectAnswer: "True"},
	})
	require.NoError(t, svc.SaveLesson("l1"))

	saved, err := svc.ListSavedLessons()
	require.NoError(t, err)
	require.Equal(t, 1, saved.Total)
	assert.Equal(t, "l1", saved.Saved[0].Lesson.ID)

	// Deleting the lesson orphans the marker; it must be skipped, not fail.
	require.NoError(t, svc.DeleteLesson("l1"))
	saved, err = svc.ListSavedLessons()
	require.NoError(t, err)
	assert.Equal(t, 0, saved.Total)
}

func TestGetStats(t *testing.T) {
	svc := newTestLessonService(t)
	seedLesson(t, svc, "l1", []model.QuizQuestion{
		{ID: "q1", Type: shared.QuestionTypeTrueFalse, Question: "Q", CorrectAnswer: "True"},
	})
	lesson2 := seedLesson(t, svc, "l2", []model.QuizQuestion{
		{ID: "q1", Type: shared.QuestionTypeTrueFalse, Question: "Q", CorrectAnswer: "True"},
	})
	lesson2.Level = shared.LevelAdvanced
	require.NoError(t, svc.sqlSvc.Store().PutLesson(lesson2))

	_, err := svc.SubmitAnswers("l1", map[string]string{"q1": "True"})
	require.NoError(t, err)
	_, err = svc.SubmitAnswers("l2", map[string]string{"q1": "False"})
	require.NoError(t, err)
	require.NoError(t, svc.SaveLesson("l1"))

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.LessonsGenerated)
	assert.Equal(t, 2, stats.LessonsCompleted)
	assert.Equal(t, 50, stats.AverageScore)
	assert.Equal(t, 1, stats.SavedLessons)
	assert.Equal(t, 1, stats.LessonsByLevel[shared.LevelBeginner])
	assert.Equal(t, 1, stats.LessonsByLevel[shared.LevelAdvanced])
}

func TestGetWorkflowDuringTransitions(t *testing.T) {
	svc := newTestLessonService(t)
	seedMeme(t, svc, "m1")
	session, err := svc.StartSession("m1")
	require.NoError(t, err)

	// Readers map the session while another goroutine drives transitions and
	// error updates; the mapper must snapshot under the lock.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := svc.GetWorkflow(session.ID); err != nil {
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		_, _ = svc.SkipExplanation(session.ID)
		for i := 0; i < 200; i++ {
			svc.recordError(session, errors.New("generation unavailable"))
		}
	}()
	wg.Wait()

	view, err := svc.GetWorkflow(session.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StateLevelSelection), view.State)
	assert.NotEmpty(t, view.LastError)
}

func TestStoreFailureMapsToAppError(t *testing.T) {
	svc := newTestLessonService(t)

	// Break the schema underneath the store; the raw gorm error must come
	// back as a typed storage AppError, not leak to the HTTP layer as-is.
	require.NoError(t, svc.sqlSvc.Db().Migrator().DropTable(&model.Lesson{}))

	_, err := svc.ListLessons()
	requireStatus(t, err, fiber.StatusInternalServerError)
	appErr, _ := shared.GetAppError(err)
	assert.Equal(t, "Storage operation failed", appErr.Message)
}

func TestClearDataResetsSessionsButKeepsMemes(t *testing.T) {
	svc := newTestLessonService(t)
	seedMeme(t, svc, "m1")
	session, err := svc.StartSession("m1")
	require.NoError(t, err)
	seedLesson(t, svc, "l1", []model.QuizQuestion{
		{ID: "q1", Type: shared.QuestionTypeTrueFalse, Question: "Q", CorrectAnswer: "True"},
	})

	require.NoError(t, svc.ClearData())

	_, err = svc.GetSession(session.ID)
	requireStatus(t, err, fiber.StatusNotFound)

	lessons, err := svc.ListLessons()
	require.NoError(t, err)
	assert.Equal(t, 0, lessons.Total)

	count, err := svc.sqlSvc.Store().CountMemes()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
