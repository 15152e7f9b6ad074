package services

import (
	"gorm.io/gorm/clause"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
	"github.com/jstittsworth/dfs-live-tracker/pkg/database"
)

// ContestStore persists the contest candidate pool between poll cycles.
type ContestStore struct {
	db *database.DB
}

func NewContestStore(db *database.DB) (*ContestStore, error) {
	if err := db.AutoMigrate(&models.Contest{}); err != nil {
		return nil, err
	}
	return &ContestStore{db: db}, nil
}

// Upsert inserts or refreshes candidate contests by id.
func (s *ContestStore) Upsert(contests []models.Contest) error {
	if len(contests) == 0 {
		return nil
	}
	return s.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&contests).Error
}

// BySport returns the sport's candidate pool ordered by entry fee descending,
// then entry pool, then start time, then id.
func (s *ContestStore) BySport(sport string) ([]models.Contest, error) {
	var contests []models.Contest
	err := s.db.
		Where("sport = ?", sport).
		Order("entry_fee_cents DESC, entries DESC, start_time DESC, id").
		Find(&contests).Error
	return contests, err
}
