// Package store persists processed courses in a local SQLite database
// through GORM, keeping the pipeline results browsable across runs.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound reports a lookup that matched no row.
var ErrNotFound = errors.New("not found")

// Course is a processed video with its chapter tree.
type Course struct {
	ID           string `gorm:"primaryKey;size:36"`
	Title        string `gorm:"size:512;not null"`
	SourceURL    string `gorm:"size:1024"`
	VideoPath    string `gorm:"size:1024"`
	VideoURL     string `gorm:"size:1024"`
	DurationSec  *int
	Chapters     []Chapter `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Chapter groups segments under a title, ordered within its course.
type Chapter struct {
	ID         string `gorm:"primaryKey;size:36"`
	CourseID   string `gorm:"size:36;not null;index"`
	Title      string `gorm:"size:512;not null"`
	OrderIndex int    `gorm:"not null"`
	Segments   []Segment `gorm:"constraint:OnDelete:CASCADE"`
}

// Segment is one timed slice of the source video.
type Segment struct {
	ID            string `gorm:"primaryKey;size:36"`
	ChapterID     string `gorm:"size:36;not null;index"`
	Title         string `gorm:"size:512;not null"`
	Description   string `gorm:"type:text"`
	StartSec      int    `gorm:"not null"`
	EndSec        int    `gorm:"not null"`
	DurationSec   *int
	OrderIndex    int    `gorm:"not null"`
	ClipPath      string `gorm:"size:1024"`
	ThumbnailPath string `gorm:"size:1024"`
}

// Store wraps the database handle.
type Store struct {
	db     *gorm.DB
	logger hclog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(l hclog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.Named("store")
		}
	}
}

// Open opens (or creates) the SQLite database at path and migrates the
// schema.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Course{}, &Chapter{}, &Segment{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	s := &Store{db: db, logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateCourse inserts a course with its full chapter tree in one
// transaction. Missing IDs are filled in.
func (s *Store) CreateCourse(ctx context.Context, course *Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	for ci := range course.Chapters {
		ch := &course.Chapters[ci]
		if ch.ID == "" {
			ch.ID = uuid.NewString()
		}
		ch.CourseID = course.ID
		for si := range ch.Segments {
			seg := &ch.Segments[si]
			if seg.ID == "" {
				seg.ID = uuid.NewString()
			}
			seg.ChapterID = ch.ID
		}
	}
	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("creating course: %w", err)
	}
	s.logger.Debug("course created", "id", course.ID, "chapters", len(course.Chapters))
	return nil
}

// GetCourse loads one course with chapters and segments in order.
func (s *Store) GetCourse(ctx context.Context, id string) (*Course, error) {
	var course Course
	err := s.db.WithContext(ctx).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index")
		}).
		Preload("Chapters.Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index")
		}).
		First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading course %s: %w", id, err)
	}
	return &course, nil
}

// ListCourses returns all courses, newest first, without their chapter
// trees.
func (s *Store) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return courses, nil
}

// SetSegmentClip records the rendered clip and thumbnail paths for a
// segment.
func (s *Store) SetSegmentClip(ctx context.Context, segmentID, clipPath, thumbnailPath string) error {
	res := s.db.WithContext(ctx).Model(&Segment{}).
		Where("id = ?", segmentID).
		Updates(map[string]any{"clip_path": clipPath, "thumbnail_path": thumbnailPath})
	if res.Error != nil {
		return fmt.Errorf("updating segment %s: %w", segmentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("segment %s: %w", segmentID, ErrNotFound)
	}
	return nil
}

// DeleteCourse removes a course and its chapter tree.
func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chapterIDs []string
		if err := tx.Model(&Chapter{}).Where("course_id = ?", id).Pluck("id", &chapterIDs).Error; err != nil {
			return fmt.Errorf("listing chapters of %s: %w", id, err)
		}
		if len(chapterIDs) > 0 {
			if err := tx.Where("chapter_id IN ?", chapterIDs).Delete(&Segment{}).Error; err != nil {
				return fmt.Errorf("deleting segments of %s: %w", id, err)
			}
		}
		if err := tx.Where("course_id = ?", id).Delete(&Chapter{}).Error; err != nil {
			return fmt.Errorf("deleting chapters of %s: %w", id, err)
		}
		res := tx.Delete(&Course{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("deleting course %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("course %s: %w", id, ErrNotFound)
		}
		return nil
	})
}
