package models

import (
	"time"

	"gorm.io/datatypes"
)

// OutfitHistory records an accepted outfit. ClothingIDs are weak references:
// garments may have been deleted since, so lookups must tolerate misses.
type OutfitHistory struct {
	ID           string                      `gorm:"primaryKey;size:64" json:"id"`
	ClothingIDs  datatypes.JSONSlice[string] `json:"clothing_ids"`
	Occasion     string                      `gorm:"index;size:50" json:"occasion"`
	Weather      *string                     `json:"weather,omitempty"`
	Temperature  *float64                    `json:"temperature,omitempty"`
	Rating       *int                        `json:"rating,omitempty"`
	AISuggestion *string                     `gorm:"type:text" json:"ai_suggestion,omitempty"`
	Image        Blob                        `gorm:"embedded;embeddedPrefix:image_" json:"-"`
	CreatedAt    time.Time                   `gorm:"index" json:"created_at"`
}

// OutfitHistoryDetail is a history entry with its garment references resolved.
type OutfitHistoryDetail struct {
	OutfitHistory
	Clothes    []Clothing `json:"clothes"`
	MissingIDs []string   `json:"missing_ids"`
}
