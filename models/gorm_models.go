// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormGameRecord is the archive row for a finished game.
type GormGameRecord struct {
	gorm.Model
	RoomID    string                 `gorm:"index;not null"`
	BoardSize int                    `gorm:"not null"`
	Players   map[string]interface{} `gorm:"type:jsonb;serializer:json"`
	WinnerID  string                 `gorm:"not null"`
	Reason    string                 `gorm:"not null"`
	TurnCount int                    `gorm:"default:0"`
	Duration  int                    `gorm:"default:0"` // seconds
}
