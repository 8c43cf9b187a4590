package karma

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rounds-social/rounds/models"
)

// DBActivityStore persists the ledger in the karma_activities table.
type DBActivityStore struct {
	db *gorm.DB
}

func NewDBActivityStore(db *gorm.DB) (*DBActivityStore, error) {
	if err := db.AutoMigrate(&models.KarmaActivity{}); err != nil {
		return nil, fmt.Errorf("migrating karma_activities: %w", err)
	}
	return &DBActivityStore{db: db}, nil
}

func (s *DBActivityStore) Append(ctx context.Context, act *models.KarmaActivity) error {
	if err := s.db.WithContext(ctx).Create(act).Error; err != nil {
		return fmt.Errorf("appending karma activity: %w", err)
	}
	return nil
}

func (s *DBActivityStore) ListForUser(ctx context.Context, userID string) ([]models.KarmaActivity, error) {
	var rows []models.KarmaActivity
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing karma activities: %w", err)
	}
	return rows, nil
}

func (s *DBActivityStore) TotalForUser(ctx context.Context, userID string) (int64, error) {
	var total *int64
	if err := s.db.WithContext(ctx).
		Model(&models.KarmaActivity{}).
		Where("user_id = ?", userID).
		Select("sum(points)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("summing karma activities: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (s *DBActivityStore) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	q := s.db.WithContext(ctx).
		Model(&models.KarmaActivity{}).
		Select("user_id, sum(points) as total").
		Group("user_id").
		Order("total desc, user_id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("ranking users by karma: %w", err)
	}
	return entries, nil
}
