package moderation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rounds-social/rounds/models"
)

// DBOffenseStore persists offense state in the user_offenses table, one row
// per user.
type DBOffenseStore struct {
	db *gorm.DB
}

func NewDBOffenseStore(db *gorm.DB) (*DBOffenseStore, error) {
	if err := db.AutoMigrate(&models.UserOffense{}); err != nil {
		return nil, fmt.Errorf("migrating user_offenses: %w", err)
	}
	return &DBOffenseStore{db: db}, nil
}

func (s *DBOffenseStore) Get(ctx context.Context, userID string) (*OffenseState, error) {
	var row models.UserOffense
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &OffenseState{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading offense state: %w", err)
	}
	return &OffenseState{
		Count:       row.Count,
		LastOffense: row.LastOffense,
		IsBanned:    row.IsBanned,
	}, nil
}

func (s *DBOffenseStore) Set(ctx context.Context, userID string, state *OffenseState) error {
	row := models.UserOffense{
		UserID:      userID,
		Count:       state.Count,
		LastOffense: state.LastOffense,
		IsBanned:    state.IsBanned,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"count", "last_offense", "is_banned", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("writing offense state: %w", err)
	}
	return nil
}
