package models

import "time"

// RecognitionResult is the strict schema of the AI garment-recognition reply.
type RecognitionResult struct {
	ColorPrimary   string           `json:"colorPrimary" validate:"required"`
	ColorSecondary *string          `json:"colorSecondary,omitempty"`
	Category       ClothingCategory `json:"category" validate:"required,category"`
	Type           string           `json:"type" validate:"required"`
	SubType        *string          `json:"subType,omitempty"`
	Style          []string         `json:"style" validate:"required"`
	Pattern        string           `json:"pattern" validate:"required"`
	Season         []string         `json:"season" validate:"required"`
	Material       []string         `json:"material,omitempty"`
	Thickness      Thickness        `json:"thickness" validate:"required,thickness"`
	WarmthLevel    int              `json:"warmthLevel" validate:"min=1,max=5"`
}

// OutfitRecommendation is one AI-proposed outfit.
type OutfitRecommendation struct {
	ID          string   `json:"id" validate:"required"`
	ClothingIDs []string `json:"clothingIds" validate:"required,min=1"`
	Reason      string   `json:"reason" validate:"required"`
	Score       float64  `json:"score" validate:"gte=0,lte=100"`
	Occasion    string   `json:"occasion"`
	Temperature float64  `json:"temperature"`
}

// DailyPick is the strict schema of the daily suggestion reply.
type DailyPick struct {
	Recommendation string   `json:"recommendation" validate:"required"`
	ClothingIDs    []string `json:"clothingIds" validate:"required"`
}

// DailyRecommendation is the cached "outfit of the day".
type DailyRecommendation struct {
	Date           string          `json:"date"`
	Recommendation string          `json:"recommendation"`
	ClothingIDs    []string        `json:"clothing_ids"`
	Weather        *CurrentWeather `json:"weather,omitempty"`
	CachedAt       time.Time       `json:"cached_at"`
}
