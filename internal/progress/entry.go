package progress

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one day of a user's smoking log. The (user_id, date) unique
// index gives the ledger its update-or-insert semantics: a second write
// for the same day updates the existing row.
type Entry struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;uniqueIndex:idx_progress_user_date" json:"user_id"`
	Date             datatypes.Date `gorm:"not null;uniqueIndex:idx_progress_user_date" json:"date"`
	StageID          *uint          `gorm:"index" json:"stage_id"`
	CigarettesSmoked int            `json:"cigarettes_smoked"`
	MoneySaved       float64        `json:"money_saved"`
	HealthStatus     string         `json:"health_status"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (Entry) TableName() string { return "progress_entries" }

// Upsert writes the entry for (user, date), updating the logged values in
// place when the day already exists.
func Upsert(db *gorm.DB, e *Entry) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stage_id", "cigarettes_smoked", "money_saved", "health_status", "updated_at",
		}),
	}).Create(e).Error
}

// EntriesInRange loads a user's entries with dates in [from, to], oldest
// first.
func EntriesInRange(db *gorm.DB, userID uint, from, to time.Time) ([]Entry, error) {
	var entries []Entry
	err := db.Where("user_id = ? AND date >= ? AND date <= ?", userID, datatypes.Date(from), datatypes.Date(to)).
		Order("date asc").
		Find(&entries).Error
	return entries, err
}
