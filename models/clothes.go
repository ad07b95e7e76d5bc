package models

import (
	"time"

	"gorm.io/datatypes"
)

// Clothing is a cataloged garment. It exclusively owns its two image blobs.
type Clothing struct {
	JsonModel
	Image          Blob                        `gorm:"embedded;embeddedPrefix:image_" json:"-"`
	Thumbnail      Blob                        `gorm:"embedded;embeddedPrefix:thumbnail_" json:"-"`
	Name           *string                     `json:"name,omitempty" validate:"omitempty,max=100"`
	Brand          *string                     `json:"brand,omitempty" validate:"omitempty,max=100"`
	ColorPrimary   string                      `json:"color_primary" validate:"required,max=50"`
	ColorSecondary *string                     `json:"color_secondary,omitempty"`
	ColorTertiary  *string                     `json:"color_tertiary,omitempty"`
	Category       ClothingCategory            `gorm:"index;size:20" json:"category" validate:"required,category"`
	Type           string                      `json:"type" validate:"required,max=50"`
	SubType        *string                     `json:"sub_type,omitempty"`
	Material       datatypes.JSONSlice[string] `json:"material"`
	Thickness      Thickness                   `json:"thickness" validate:"required,thickness"`
	WarmthLevel    int                         `gorm:"index" json:"warmth_level" validate:"min=1,max=5"`
	Windproof      *bool                       `json:"windproof,omitempty"`
	Waterproof     *bool                       `json:"waterproof,omitempty"`
	FleeceLined    *bool                       `json:"fleece_lined,omitempty"`
	Style          datatypes.JSONSlice[string] `json:"style"`
	Pattern        string                      `json:"pattern"`
	Occasion       datatypes.JSONSlice[string] `json:"occasion"`
	Season         datatypes.JSONSlice[string] `json:"season"`
	TempRangeMin   *float64                    `json:"temp_range_min,omitempty"`
	TempRangeMax   *float64                    `json:"temp_range_max,omitempty"`
	Layering       Layering                    `json:"layering" validate:"required,layering"`
	FitType        *FitType                    `json:"fit_type,omitempty" validate:"omitempty,fittype"`
	Length         *ClothingLength             `json:"length,omitempty" validate:"omitempty,clothinglength"`
	Favorite       bool                        `gorm:"index" json:"favorite"`
	WearCount      int                         `json:"wear_count" validate:"min=0"`
	LastWorn       *time.Time                  `json:"last_worn,omitempty"`
	PurchaseDate   *time.Time                  `json:"purchase_date,omitempty"`
	Notes          *string                     `gorm:"type:text" json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (Clothing) TableName() string {
	return "clothes"
}

// DisplayName falls back to the garment type when no name was given.
func (c Clothing) DisplayName() string {
	if c.Name != nil && *c.Name != "" {
		return *c.Name
	}
	return c.Type
}

// ClothingPatch is a partial update. Nil fields are left untouched.
type ClothingPatch struct {
	Name           *string           `json:"name" validate:"omitempty,max=100"`
	Brand          *string           `json:"brand" validate:"omitempty,max=100"`
	ColorPrimary   *string           `json:"color_primary" validate:"omitempty,max=50"`
	ColorSecondary *string           `json:"color_secondary"`
	Category       *ClothingCategory `json:"category" validate:"omitempty,category"`
	Type           *string           `json:"type" validate:"omitempty,max=50"`
	SubType        *string           `json:"sub_type"`
	Material       *[]string         `json:"material"`
	Thickness      *Thickness        `json:"thickness" validate:"omitempty,thickness"`
	WarmthLevel    *int              `json:"warmth_level" validate:"omitempty,min=1,max=5"`
	Style          *[]string         `json:"style"`
	Pattern        *string           `json:"pattern"`
	Occasion       *[]string         `json:"occasion"`
	Season         *[]string         `json:"season"`
	Layering       *Layering         `json:"layering" validate:"omitempty,layering"`
	FitType        *FitType          `json:"fit_type" validate:"omitempty,fittype"`
	Length         *ClothingLength   `json:"length" validate:"omitempty,clothinglength"`
	Favorite       *bool             `json:"favorite"`
	WearCount      *int              `json:"wear_count" validate:"omitempty,min=0"`
	LastWorn       *time.Time        `json:"last_worn"`
	Notes          *string           `json:"notes" validate:"omitempty,max=500"`
}

// Columns maps the non-nil patch fields onto column updates.
func (p ClothingPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	set := func(name string, ok bool, v interface{}) {
		if ok {
			cols[name] = v
		}
	}
	set("name", p.Name != nil, p.Name)
	set("brand", p.Brand != nil, p.Brand)
	if p.ColorPrimary != nil {
		cols["color_primary"] = *p.ColorPrimary
	}
	set("color_secondary", p.ColorSecondary != nil, p.ColorSecondary)
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Type != nil {
		cols["type"] = *p.Type
	}
	set("sub_type", p.SubType != nil, p.SubType)
	if p.Material != nil {
		cols["material"] = datatypes.JSONSlice[string](*p.Material)
	}
	if p.Thickness != nil {
		cols["thickness"] = *p.Thickness
	}
	if p.WarmthLevel != nil {
		cols["warmth_level"] = *p.WarmthLevel
	}
	if p.Style != nil {
		cols["style"] = datatypes.JSONSlice[string](*p.Style)
	}
	if p.Pattern != nil {
		cols["pattern"] = *p.Pattern
	}
	if p.Occasion != nil {
		cols["occasion"] = datatypes.JSONSlice[string](*p.Occasion)
	}
	if p.Season != nil {
		cols["season"] = datatypes.JSONSlice[string](*p.Season)
	}
	if p.Layering != nil {
		cols["layering"] = *p.Layering
	}
	set("fit_type", p.FitType != nil, p.FitType)
	set("length", p.Length != nil, p.Length)
	if p.Favorite != nil {
		cols["favorite"] = *p.Favorite
	}
	if p.WearCount != nil {
		cols["wear_count"] = *p.WearCount
	}
	set("last_worn", p.LastWorn != nil, p.LastWorn)
	set("notes", p.Notes != nil, p.Notes)
	return cols
}

// ClothingSummary is the compact view of a garment sent to the AI.
type ClothingSummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    ClothingCategory `json:"category"`
	Type        string           `json:"type"`
	Color       string           `json:"color"`
	WarmthLevel int              `json:"warmthLevel"`
	Style       []string         `json:"style"`
	Layering    Layering         `json:"layering"`
}

func (c Clothing) Summary() ClothingSummary {
	return ClothingSummary{
		ID:          c.ID,
		Name:        c.DisplayName(),
		Category:    c.Category,
		Type:        c.Type,
		Color:       c.ColorPrimary,
		WarmthLevel: c.WarmthLevel,
		Style:       c.Style,
		Layering:    c.Layering,
	}
}
