package models

import "gorm.io/datatypes"

type Gender string

const (
	GenderMale   Gender = "男"
	GenderFemale Gender = "女"
)

type BodyType string

const (
	BodyTypeSlim     BodyType = "偏瘦"
	BodyTypeStandard BodyType = "标准"
	BodyTypeFull     BodyType = "偏胖"
)

// UserProfile is the singleton body/style profile of the installation.
type UserProfile struct {
	JsonModel
	Gender          Gender                      `gorm:"size:4" json:"gender" validate:"required,oneof=男 女"`
	Height          float64                     `json:"height" validate:"gt=0"`
	Weight          float64                     `json:"weight" validate:"gt=0"`
	Bust            float64                     `json:"bust" validate:"gte=0"`
	Waist           float64                     `json:"waist" validate:"gte=0"`
	Hips            float64                     `json:"hips" validate:"gte=0"`
	Shoulder        *float64                    `json:"shoulder,omitempty" validate:"omitempty,gte=0"`
	BodyType        *BodyType                   `gorm:"size:8" json:"body_type,omitempty" validate:"omitempty,oneof=偏瘦 标准 偏胖"`
	StylePreference datatypes.JSONSlice[string] `json:"style_preference"`
}

func (p UserProfile) BodyTypeOrDefault() BodyType {
	if p.BodyType == nil || *p.BodyType == "" {
		return BodyTypeStandard
	}
	return *p.BodyType
}
