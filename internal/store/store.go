package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/storychain/story-chain-backend/internal/engine"
	"github.com/storychain/story-chain-backend/internal/session"
)

// CompletedStory is one archived round.
type CompletedStory struct {
	ID         uint   `gorm:"primaryKey"`
	RoomCode   string `gorm:"index"`
	Text       string
	WordCount  int
	Slot1Score int
	Slot2Score int
	FinishedAt time.Time
	CreatedAt  time.Time
}

// Store archives finished stories to Postgres. The session treats archival
// as fire-and-forget, so failures here are logged, never fatal.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&CompletedStory{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) ArchiveStory(ctx context.Context, rec session.StoryRecord) error {
	row := CompletedStory{
		RoomCode:   rec.RoomCode,
		Text:       engine.StoryText(rec.Words),
		WordCount:  len(rec.Words),
		Slot1Score: rec.Scores[1],
		Slot2Score: rec.Scores[2],
		FinishedAt: rec.FinishedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("archive story: %w", err)
	}
	s.log.Info("story archived",
		zap.String("room_code", rec.RoomCode),
		zap.Int("words", row.WordCount))
	return nil
}
