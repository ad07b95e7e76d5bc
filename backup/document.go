package backup

import (
	"time"

	"wardrobeapi/models"
)

// FormatVersion is written into every exported document.
const FormatVersion = "1.0.0"

// Document is the portable backup file. Binary assets travel as codec tokens.
type Document struct {
	Version       string           `json:"version"`
	ExportedAt    time.Time        `json:"exportedAt"`
	UserProfile   *ProfileRecord   `json:"userProfile"`
	Clothes       []ClothingRecord `json:"clothes"`
	OutfitHistory []HistoryRecord  `json:"outfitHistory"`
}

type ProfileRecord struct {
	ID              string    `json:"id"`
	Gender          string    `json:"gender"`
	Height          float64   `json:"height"`
	Weight          float64   `json:"weight"`
	Bust            float64   `json:"bust"`
	Waist           float64   `json:"waist"`
	Hips            float64   `json:"hips"`
	Shoulder        *float64  `json:"shoulder,omitempty"`
	BodyType        *string   `json:"bodyType,omitempty"`
	StylePreference []string  `json:"stylePreference"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ClothingRecord struct {
	ID              string   `json:"id"`
	ImageBase64     string   `json:"imageBase64"`
	ThumbnailBase64 string   `json:"thumbnailBase64"`
	Name            *string  `json:"name,omitempty"`
	Brand           *string  `json:"brand,omitempty"`
	ColorPrimary    string   `json:"colorPrimary"`
	ColorSecondary  *string  `json:"colorSecondary,omitempty"`
	ColorTertiary   *string  `json:"colorTertiary,omitempty"`
	Category        string   `json:"category"`
	Type            string   `json:"type"`
	SubType         *string  `json:"subType,omitempty"`
	Material        []string `json:"material"`
	Thickness       string   `json:"thickness"`
	WarmthLevel     int      `json:"warmthLevel"`
	Windproof       *bool    `json:"windproof,omitempty"`
	Waterproof      *bool    `json:"waterproof,omitempty"`
	FleeceLined     *bool    `json:"fleeceLined,omitempty"`
	// Older documents spell the field fleeceLinned. Read only.
	FleeceLinned *bool      `json:"fleeceLinned,omitempty"`
	Style        []string   `json:"style"`
	Pattern      string     `json:"pattern"`
	Occasion     []string   `json:"occasion"`
	Season       []string   `json:"season"`
	TempRangeMin *float64   `json:"tempRangeMin,omitempty"`
	TempRangeMax *float64   `json:"tempRangeMax,omitempty"`
	Layering     string     `json:"layering"`
	FitType      *string    `json:"fitType,omitempty"`
	Length       *string    `json:"length,omitempty"`
	Favorite     bool       `json:"favorite"`
	WearCount    int        `json:"wearCount"`
	LastWorn     *time.Time `json:"lastWorn,omitempty"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type HistoryRecord struct {
	ID           string    `json:"id"`
	ClothingIDs  []string  `json:"clothingIds"`
	Occasion     string    `json:"occasion"`
	Weather      *string   `json:"weather,omitempty"`
	Temperature  *float64  `json:"temperature,omitempty"`
	Rating       *int      `json:"rating,omitempty"`
	AISuggestion *string   `json:"aiSuggestion,omitempty"`
	ImageBase64  string    `json:"imageBase64,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func profileRecord(p *models.UserProfile) *ProfileRecord {
	if p == nil {
		return nil
	}
	r := &ProfileRecord{
		ID:              p.ID,
		Gender:          string(p.Gender),
		Height:          p.Height,
		Weight:          p.Weight,
		Bust:            p.Bust,
		Waist:           p.Waist,
		Hips:            p.Hips,
		Shoulder:        p.Shoulder,
		StylePreference: p.StylePreference,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.BodyType != nil {
		r.BodyType = models.StrPointer(string(*p.BodyType))
	}
	return r
}

func (r ProfileRecord) model() *models.UserProfile {
	p := &models.UserProfile{
		JsonModel:       models.JsonModel{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
		Gender:          models.Gender(r.Gender),
		Height:          r.Height,
		Weight:          r.Weight,
		Bust:            r.Bust,
		Waist:           r.Waist,
		Hips:            r.Hips,
		Shoulder:        r.Shoulder,
		StylePreference: r.StylePreference,
	}
	if r.BodyType != nil {
		bt := models.BodyType(*r.BodyType)
		p.BodyType = &bt
	}
	return p
}

func clothingRecord(c models.Clothing, image, thumbnail string) ClothingRecord {
	r := ClothingRecord{
		ID:              c.ID,
		ImageBase64:     image,
		ThumbnailBase64: thumbnail,
		Name:            c.Name,
		Brand:           c.Brand,
		ColorPrimary:    c.ColorPrimary,
		ColorSecondary:  c.ColorSecondary,
		ColorTertiary:   c.ColorTertiary,
		Category:        string(c.Category),
		Type:            c.Type,
		SubType:         c.SubType,
		Material:        c.Material,
		Thickness:       string(c.Thickness),
		WarmthLevel:     c.WarmthLevel,
		Windproof:       c.Windproof,
		Waterproof:      c.Waterproof,
		FleeceLined:     c.FleeceLined,
		Style:           c.Style,
		Pattern:         c.Pattern,
		Occasion:        c.Occasion,
		Season:          c.Season,
		TempRangeMin:    c.TempRangeMin,
		TempRangeMax:    c.TempRangeMax,
		Layering:        string(c.Layering),
		Favorite:        c.Favorite,
		WearCount:       c.WearCount,
		LastWorn:        c.LastWorn,
		PurchaseDate:    c.PurchaseDate,
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.FitType != nil {
		r.FitType = models.StrPointer(string(*c.FitType))
	}
	if c.Length != nil {
		r.Length = models.StrPointer(string(*c.Length))
	}
	return r
}

func (r ClothingRecord) model(image, thumbnail models.Blob) models.Clothing {
	c := models.Clothing{
		JsonModel:      models.JsonModel{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
		Image:          image,
		Thumbnail:      thumbnail,
		Name:           r.Name,
		Brand:          r.Brand,
		ColorPrimary:   r.ColorPrimary,
		ColorSecondary: r.ColorSecondary,
		ColorTertiary:  r.ColorTertiary,
		Category:       models.ClothingCategory(r.Category),
		Type:           r.Type,
		SubType:        r.SubType,
		Material:       r.Material,
		Thickness:      models.Thickness(r.Thickness),
		WarmthLevel:    r.WarmthLevel,
		Windproof:      r.Windproof,
		Waterproof:     r.Waterproof,
		FleeceLined:    r.FleeceLined,
		Style:          r.Style,
		Pattern:        r.Pattern,
		Occasion:       r.Occasion,
		Season:         r.Season,
		TempRangeMin:   r.TempRangeMin,
		TempRangeMax:   r.TempRangeMax,
		Layering:       models.Layering(r.Layering),
		Favorite:       r.Favorite,
		WearCount:      r.WearCount,
		LastWorn:       r.LastWorn,
		PurchaseDate:   r.PurchaseDate,
		Notes:          r.Notes,
	}
	if c.FleeceLined == nil {
		c.FleeceLined = r.FleeceLinned
	}
	if r.FitType != nil {
		ft := models.FitType(*r.FitType)
		c.FitType = &ft
	}
	if r.Length != nil {
		l := models.ClothingLength(*r.Length)
		c.Length = &l
	}
	return c
}

func historyRecord(h models.OutfitHistory, image string) HistoryRecord {
	r := HistoryRecord{
		ID:           h.ID,
		ClothingIDs:  h.ClothingIDs,
		Occasion:     h.Occasion,
		Rating:       h.Rating,
		AISuggestion: h.AISuggestion,
		Weather:      h.Weather,
		Temperature:  h.Temperature,
		ImageBase64:  image,
		CreatedAt:    h.CreatedAt,
	}
	return r
}

func (r HistoryRecord) model(image models.Blob) models.OutfitHistory {
	h := models.OutfitHistory{
		ID:           r.ID,
		ClothingIDs:  r.ClothingIDs,
		Occasion:     r.Occasion,
		Rating:       r.Rating,
		AISuggestion: r.AISuggestion,
		Weather:      r.Weather,
		Temperature:  r.Temperature,
		Image:        image,
		CreatedAt:    r.CreatedAt,
	}
	return h
}
