package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportRun is an immutable record of one confirmed client import
type ImportRun struct {
	ID                string    `json:"id" gorm:"primaryKey;type:uuid"`
	ImportID          string    `json:"import_id" gorm:"not null;uniqueIndex"`
	AdminID           string    `json:"admin_id" gorm:"type:uuid;not null;index"`
	FileName          string    `json:"file_name" gorm:"not null"`
	ReferenceField    string    `json:"reference_field"`
	UpdateExisting    bool      `json:"update_existing"`
	RemoveNotInFile   bool      `json:"remove_not_in_file"`
	Created           int       `json:"created"`
	Updated           int       `json:"updated"`
	Skipped           int       `json:"skipped"`
	Removed           int       `json:"removed"`
	DuplicatesIgnored int       `json:"duplicates_ignored"`
	Failed            int       `json:"failed"`
	CreatedAt         time.Time `json:"created_at" gorm:"index"`

	Admin *Admin `json:"admin,omitempty" gorm:"foreignKey:AdminID"`
}

// TableName returns the table name for ImportRun
func (ImportRun) TableName() string {
	return "import_runs"
}

// BeforeCreate assigns an id when the caller did not supply one
func (r *ImportRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
