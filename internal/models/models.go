package models

import (
	"time"
)

// Media is a catalogue entry for a file persisted under the storage root
type Media struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Path         string    `gorm:"type:varchar(512);not null;uniqueIndex" json:"path"`
	Kind         string    `gorm:"type:varchar(20);index" json:"kind"`
	Folder       string    `gorm:"type:varchar(255);index" json:"folder"`
	Filename     string    `gorm:"type:varchar(255)" json:"filename"`
	DeclaredMime string    `gorm:"type:varchar(255)" json:"declared_mime"`
	DetectedMime string    `gorm:"type:varchar(255)" json:"detected_mime"`
	Extension    string    `gorm:"type:varchar(20)" json:"extension"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Media) TableName() string {
	return "media"
}
