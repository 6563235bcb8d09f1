package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/airmems/meme_api/model"
	"github.com/airmems/meme_api/shared"
)

// Store is the durable local record store: four independent collections
// (memes, lessons, progress, saved-lesson markers) plus cached explanations,
// each keyed by id. It is explicitly constructed and must be initialized
// before use; there are no cross-collection transactions.
type Store struct {
	db          *gorm.DB
	initialized bool
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Initialize migrates the collections. Idempotent; every other method fails
// with StoreNotInitialized until it has run.
func (s *Store) Initialize() error {
	if s.initialized {
		return nil
	}

	err := s.db.AutoMigrate(
		&model.Meme{},
		&model.Lesson{},
		&model.Explanation{},
		&model.Progress{},
		&model.SavedLesson{},
	)
	if err != nil {
		return shared.NewStorageUnavailableError(err)
	}

	s.initialized = true
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.initialized = false
	return sqlDB.Close()
}

func (s *Store) guard() error {
	if !s.initialized {
		return shared.ErrStoreNotInitialized
	}
	return nil
}

// ==================== MEMES ====================

// PutMemes upserts each meme by id. No batch atomicity: a failure part way
// through leaves the earlier items written.
func (s *Store) PutMemes(memes []model.Meme) error {
	if err := s.guard(); err != nil {
		return err
	}

	for i := range memes {
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&memes[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// GetMemes returns memes in insertion order, sliced by offset and limit.
// Upserts update rows in place, so rowid order is first-insert order.
func (s *Store) GetMemes(limit, offset int) ([]model.Meme, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var memes []model.Meme
	err := s.db.Order("rowid").Offset(offset).Limit(limit).Find(&memes).Error
	return memes, err
}

// GetMeme returns nil without error when the id is absent.
func (s *Store) GetMeme(id string) (*model.Meme, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var meme model.Meme
	err := s.db.First(&meme, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meme, nil
}

func (s *Store) CountMemes() (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.Model(&model.Meme{}).Count(&count).Error
	return count, err
}

// ==================== LESSONS ====================

func (s *Store) PutLesson(lesson *model.Lesson) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(lesson).Error
}

func (s *Store) GetLesson(id string) (*model.Lesson, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var lesson model.Lesson
	err := s.db.First(&lesson, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// GetAllLessons returns lessons unsorted; callers order by created_at for
// display.
func (s *Store) GetAllLessons() ([]model.Lesson, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var lessons []model.Lesson
	err := s.db.Find(&lessons).Error
	return lessons, err
}

func (s *Store) GetLessonsByMeme(memeID string) ([]model.Lesson, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var lessons []model.Lesson
	err := s.db.Where("meme_id = ?", memeID).Find(&lessons).Error
	return lessons, err
}

func (s *Store) DeleteLesson(id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.Delete(&model.Lesson{}, "id = ?", id).Error
}

// ==================== EXPLANATIONS ====================

func (s *Store) PutExplanation(explanation *model.Explanation) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(explanation).Error
}

func (s *Store) GetExplanations(memeID string) ([]model.Explanation, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var explanations []model.Explanation
	err := s.db.Where("meme_id = ?", memeID).Find(&explanations).Error
	return explanations, err
}

// ==================== PROGRESS ====================

// PutProgress upserts by lesson id; resubmission overwrites.
func (s *Store) PutProgress(progress *model.Progress) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lesson_id"}},
		UpdateAll: true,
	}).Create(progress).Error
}

func (s *Store) GetProgress(lessonID string) (*model.Progress, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var progress model.Progress
	err := s.db.First(&progress, "lesson_id = ?", lessonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *Store) GetAllProgress() ([]model.Progress, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var progress []model.Progress
	err := s.db.Find(&progress).Error
	return progress, err
}

// ==================== SAVED LESSONS ====================

// MarkLessonSaved creates or refreshes the bookmark marker for a lesson.
func (s *Store) MarkLessonSaved(lessonID string) error {
	if err := s.guard(); err != nil {
		return err
	}

	marker := model.SavedLesson{
		LessonID: lessonID,
		SavedAt:  time.Now(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lesson_id"}},
		UpdateAll: true,
	}).Create(&marker).Error
}

func (s *Store) GetSavedLessons() ([]model.SavedLesson, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var markers []model.SavedLesson
	err := s.db.Find(&markers).Error
	return markers, err
}

func (s *Store) UnmarkLessonSaved(lessonID string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.Delete(&model.SavedLesson{}, "lesson_id = ?", lessonID).Error
}

// ==================== CLEAR ====================

// ClearAll wipes lessons, explanations, progress and saved markers. Memes
// stay: they are a re-fetchable cache, not user data.
func (s *Store) ClearAll() error {
	if err := s.guard(); err != nil {
		return err
	}

	for _, m := range []interface{}{
		&model.Lesson{},
		&model.Explanation{},
		&model.Progress{},
		&model.SavedLesson{},
	} {
		if err := s.db.Where("1 = 1").Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
