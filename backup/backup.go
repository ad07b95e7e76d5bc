// Package backup exports the wardrobe to a single portable JSON document and
// restores it. Import replaces profile, garments and history wholesale; it
// never merges.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"wardrobeapi/codec"
	"wardrobeapi/models"
	"wardrobeapi/store"
)

var ErrInvalidDocument = errors.New("backup: invalid document")

// RecordError pins a failure to one record of the document.
type RecordError struct {
	Collection string
	Index      int
	ID         string
	Err        error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("backup: %s[%d] (id %q): %v", e.Collection, e.Index, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

type ImportSummary struct {
	Version       string    `json:"version"`
	ExportedAt    time.Time `json:"exported_at"`
	Profile       bool      `json:"profile"`
	Clothes       int       `json:"clothes"`
	OutfitHistory int       `json:"outfit_history"`
}

type Service struct {
	store *store.Store
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(s *store.Store, opts ...Option) *Service {
	svc := &Service{store: s, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Filename is the suggested name of a backup taken at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("wardrobe-backup-%s.json", t.Format("2006-01-02"))
}

// Export reads the whole store into a Document.
func (s *Service) Export(ctx context.Context) (*Document, error) {
	profile, err := s.store.GetUserProfile(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	clothes, err := s.store.GetAllClothes(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading clothes: %w", err)
	}
	history, err := s.store.GetAllOutfitHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading outfit history: %w", err)
	}

	doc := &Document{
		Version:       FormatVersion,
		ExportedAt:    s.now().UTC(),
		UserProfile:   profileRecord(profile),
		Clothes:       make([]ClothingRecord, 0, len(clothes)),
		OutfitHistory: make([]HistoryRecord, 0, len(history)),
	}
	for _, c := range clothes {
		doc.Clothes = append(doc.Clothes, clothingRecord(c, codec.Encode(c.Image), codec.Encode(c.Thumbnail)))
	}
	for _, h := range history {
		doc.OutfitHistory = append(doc.OutfitHistory, historyRecord(h, codec.Encode(h.Image)))
	}
	return doc, nil
}

// ExportJSON renders Export as indented JSON.
func (s *Service) ExportJSON(ctx context.Context) ([]byte, error) {
	doc, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Parse decodes raw and checks it has the shape of a backup document.
func Parse(raw []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	for _, name := range []string{"version", "clothes", "outfitHistory"} {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrInvalidDocument, name)
		}
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("%w: empty version", ErrInvalidDocument)
	}
	if doc.Clothes == nil || doc.OutfitHistory == nil {
		return nil, fmt.Errorf("%w: clothes and outfitHistory must be arrays", ErrInvalidDocument)
	}
	return &doc, nil
}

type decoded struct {
	profile *models.UserProfile
	clothes []models.Clothing
	history []models.OutfitHistory
}

// decode converts every record and decodes every token. Nothing is written.
func decode(doc *Document) (*decoded, error) {
	out := &decoded{
		clothes: make([]models.Clothing, 0, len(doc.Clothes)),
		history: make([]models.OutfitHistory, 0, len(doc.OutfitHistory)),
	}
	if doc.UserProfile != nil {
		p := doc.UserProfile.model()
		if err := models.Validate(p); err != nil {
			return nil, &RecordError{Collection: "userProfile", ID: p.ID, Err: fmt.Errorf("%w: %v", ErrInvalidDocument, err)}
		}
		out.profile = p
	}

	seen := map[string]bool{}
	for i, r := range doc.Clothes {
		fail := func(err error) error {
			return &RecordError{Collection: "clothes", Index: i, ID: r.ID, Err: err}
		}
		if r.ID == "" || seen[r.ID] {
			return nil, fail(fmt.Errorf("%w: missing or duplicate id", ErrInvalidDocument))
		}
		seen[r.ID] = true
		image, err := codec.Decode(r.ImageBase64)
		if err != nil {
			return nil, fail(err)
		}
		thumbnail, err := codec.Decode(r.ThumbnailBase64)
		if err != nil {
			return nil, fail(err)
		}
		c := r.model(image, thumbnail)
		if err := models.Validate(c); err != nil {
			return nil, fail(fmt.Errorf("%w: %v", ErrInvalidDocument, err))
		}
		out.clothes = append(out.clothes, c)
	}

	seen = map[string]bool{}
	for i, r := range doc.OutfitHistory {
		fail := func(err error) error {
			return &RecordError{Collection: "outfitHistory", Index: i, ID: r.ID, Err: err}
		}
		if r.ID == "" || seen[r.ID] {
			return nil, fail(fmt.Errorf("%w: missing or duplicate id", ErrInvalidDocument))
		}
		seen[r.ID] = true
		image, err := codec.Decode(r.ImageBase64)
		if err != nil {
			return nil, fail(err)
		}
		out.history = append(out.history, r.model(image))
	}
	return out, nil
}

// Import validates the whole document and decodes every asset before
// touching the store, then replaces profile, garments and history in one
// transaction. A failing document leaves the store unchanged.
func (s *Service) Import(ctx context.Context, raw []byte) (*ImportSummary, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	records, err := decode(doc)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceAll(ctx, records.profile, records.clothes, records.history); err != nil {
		return nil, fmt.Errorf("replacing wardrobe: %w", err)
	}

	summary := &ImportSummary{
		Version:       doc.Version,
		ExportedAt:    doc.ExportedAt,
		Profile:       records.profile != nil,
		Clothes:       len(records.clothes),
		OutfitHistory: len(records.history),
	}
	log.Info().
		Str("version", summary.Version).
		Bool("profile", summary.Profile).
		Int("clothes", summary.Clothes).
		Int("outfit_history", summary.OutfitHistory).
		Msg("backup imported")
	return summary, nil
}
