package models

import "time"

// JsonModel carries the caller supplied string id and the timestamps every
// mutable record has.
type JsonModel struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Blob is an opaque binary asset (an image) together with its MIME type.
type Blob struct {
	MimeType string `gorm:"size:100" json:"mime_type,omitempty"`
	Data     []byte `json:"-"`
}

func (b Blob) IsEmpty() bool {
	return len(b.Data) == 0
}

func StrPointer(s string) *string {
	return &s
}

func IntPointer(i int) *int {
	return &i
}

func Float64Pointer(f float64) *float64 {
	return &f
}

func BoolPointer(b bool) *bool {
	return &b
}
