package dedup

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BonusAnnouncement tracks the highest bonus count already announced for one
// player/bonus pair in one contest. The composite unique index is the CAS key.
type BonusAnnouncement struct {
	ID                 uint      `gorm:"primaryKey"`
	ContestID          string    `gorm:"not null;uniqueIndex:idx_bonus_announcement_key"`
	Sport              string    `gorm:"not null;uniqueIndex:idx_bonus_announcement_key"`
	PlayerName         string    `gorm:"column:normalized_player_name;not null;uniqueIndex:idx_bonus_announcement_key"`
	BonusCode          string    `gorm:"not null;uniqueIndex:idx_bonus_announcement_key"`
	LastAnnouncedCount int       `gorm:"not null;default:0"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (BonusAnnouncement) TableName() string {
	return "bonus_announcements"
}

// Store persists announcement watermarks so repeated polls never repeat a
// webhook message.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&BonusAnnouncement{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// LastCount returns the announced watermark for the key, zero when the key has
// never been announced.
func (s *Store) LastCount(contestID, sport, playerName, bonusCode string) (int, error) {
	var row BonusAnnouncement
	err := s.db.
		Where("contest_id = ? AND sport = ? AND normalized_player_name = ? AND bonus_code = ?",
			contestID, sport, playerName, bonusCode).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.LastAnnouncedCount, nil
}

// EnsureRow creates the watermark row at count zero if it does not exist yet.
func (s *Store) EnsureRow(contestID, sport, playerName, bonusCode string) error {
	row := BonusAnnouncement{
		ContestID:  contestID,
		Sport:      sport,
		PlayerName: playerName,
		BonusCode:  bonusCode,
		UpdatedAt:  time.Now().UTC(),
	}
	return s.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "contest_id"},
				{Name: "sport"},
				{Name: "normalized_player_name"},
				{Name: "bonus_code"},
			},
			DoNothing: true,
		}).
		Create(&row).Error
}

// AdvanceCount moves the watermark from oldCount to newCount. The update is
// gated on the watermark still being oldCount; false means another run
// advanced it first and this run must not announce.
func (s *Store) AdvanceCount(contestID, sport, playerName, bonusCode string, oldCount, newCount int) (bool, error) {
	tx := s.db.Model(&BonusAnnouncement{}).
		Where("contest_id = ? AND sport = ? AND normalized_player_name = ? AND bonus_code = ? AND last_announced_count = ?",
			contestID, sport, playerName, bonusCode, oldCount).
		Updates(map[string]interface{}{
			"last_announced_count": newCount,
			"updated_at":           time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
