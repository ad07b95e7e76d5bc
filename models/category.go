package models

import (
	"slices"

	"github.com/go-playground/validator"
)

type ClothingCategory string

const (
	CategoryTop       ClothingCategory = "上装"
	CategoryBottom    ClothingCategory = "下装"
	CategoryOuterwear ClothingCategory = "外套"
	CategoryInner     ClothingCategory = "内搭"
	CategoryShoes     ClothingCategory = "鞋子"
	CategoryAccessory ClothingCategory = "配饰"
	CategorySet       ClothingCategory = "套装"
)

var ClothingCategories = []ClothingCategory{
	CategoryTop, CategoryBottom, CategoryOuterwear, CategoryInner,
	CategoryShoes, CategoryAccessory, CategorySet,
}

type Thickness string

const (
	ThicknessThin   Thickness = "薄款"
	ThicknessNormal Thickness = "常规"
	ThicknessThick  Thickness = "加厚"
	ThicknessExtra  Thickness = "特厚"
)

var Thicknesses = []Thickness{ThicknessThin, ThicknessNormal, ThicknessThick, ThicknessExtra}

type Layering string

const (
	LayeringInner     Layering = "内搭"
	LayeringMiddle    Layering = "中层"
	LayeringOuter     Layering = "外层"
	LayeringUniversal Layering = "通用"
)

var Layerings = []Layering{LayeringInner, LayeringMiddle, LayeringOuter, LayeringUniversal}

type FitType string

var FitTypes = []FitType{"修身", "合身", "宽松", "超宽松"}

type ClothingLength string

var ClothingLengths = []ClothingLength{"短款", "常规", "中长", "长款"}

const (
	MinWarmthLevel = 1
	MaxWarmthLevel = 5
)

func (c ClothingCategory) Valid() bool {
	return slices.Contains(ClothingCategories, c)
}

func (t Thickness) Valid() bool {
	return slices.Contains(Thicknesses, t)
}

func (l Layering) Valid() bool {
	return slices.Contains(Layerings, l)
}

func ValidateCategory(fl validator.FieldLevel) bool {
	return ClothingCategory(fl.Field().String()).Valid()
}

func ValidateThickness(fl validator.FieldLevel) bool {
	return Thickness(fl.Field().String()).Valid()
}

func ValidateLayering(fl validator.FieldLevel) bool {
	return Layering(fl.Field().String()).Valid()
}

func ValidateFitType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || slices.Contains(FitTypes, FitType(value))
}

func ValidateClothingLength(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || slices.Contains(ClothingLengths, ClothingLength(value))
}

// NewValidator returns a validator with every wardrobe enum registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("category", ValidateCategory)
	v.RegisterValidation("thickness", ValidateThickness)
	v.RegisterValidation("layering", ValidateLayering)
	v.RegisterValidation("fittype", ValidateFitType)
	v.RegisterValidation("clothinglength", ValidateClothingLength)
	return v
}

var defaultValidator = NewValidator()

// Validate checks a struct against its validate tags with the wardrobe enums registered.
func Validate(i interface{}) error {
	return defaultValidator.Struct(i)
}
