// Package store is the local persistent store: garments, the singleton user
// profile, outfit history and the capped chat log.
//
// Reads by id, updates and deletes of a missing id return ErrNotFound.
// List reads never fail on emptiness, they return an empty slice.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wardrobeapi/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalid   = errors.New("invalid record")
	ErrDuplicate = errors.New("record already exists")
)

// DefaultHistoryLimit is used when GetOutfitHistory is called without a limit.
const DefaultHistoryLimit = 20

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now for timestamps written by the store.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.Session(&gorm.Session{Context: ctx, NowFunc: s.now})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

func newID() string {
	return uuid.NewString()
}

// AddClothing inserts c. An empty id is assigned a fresh uuid.
func (s *Store) AddClothing(ctx context.Context, c *models.Clothing) error {
	if err := models.Validate(c); err != nil {
		return invalid(err)
	}
	if c.ID == "" {
		c.ID = newID()
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	return translate(s.conn(ctx).Create(c).Error)
}

func (s *Store) GetClothing(ctx context.Context, id string) (*models.Clothing, error) {
	var c models.Clothing
	if err := s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// GetAllClothes lists every garment, newest first.
func (s *Store) GetAllClothes(ctx context.Context) ([]models.Clothing, error) {
	clothes := []models.Clothing{}
	err := s.conn(ctx).Order("created_at DESC").Order("id").Find(&clothes).Error
	return clothes, translate(err)
}

func (s *Store) GetClothesByCategory(ctx context.Context, category models.ClothingCategory) ([]models.Clothing, error) {
	clothes := []models.Clothing{}
	err := s.conn(ctx).
		Where("category = ?", category).
		Order("created_at DESC").Order("id").
		Find(&clothes).Error
	return clothes, translate(err)
}

// UpdateClothing applies the non-nil fields of patch and refreshes UpdatedAt.
func (s *Store) UpdateClothing(ctx context.Context, id string, patch models.ClothingPatch) (*models.Clothing, error) {
	if err := models.Validate(patch); err != nil {
		return nil, invalid(err)
	}
	cols := patch.Columns()
	cols["updated_at"] = s.now()
	if err := s.updateColumns(ctx, id, cols); err != nil {
		return nil, err
	}
	return s.GetClothing(ctx, id)
}

// MarkWorn increments the wear count and stamps LastWorn.
func (s *Store) MarkWorn(ctx context.Context, id string) (*models.Clothing, error) {
	now := s.now()
	err := s.updateColumns(ctx, id, map[string]interface{}{
		"wear_count": gorm.Expr("wear_count + 1"),
		"last_worn":  now,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	return s.GetClothing(ctx, id)
}

func (s *Store) updateColumns(ctx context.Context, id string, cols map[string]interface{}) error {
	result := s.conn(ctx).Model(&models.Clothing{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteClothing(ctx context.Context, id string) error {
	result := s.conn(ctx).Delete(&models.Clothing{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolveClothes looks up garments by id. Found garments keep the order of
// ids; ids that no longer resolve are returned in missing.
func (s *Store) ResolveClothes(ctx context.Context, ids []string) (found []models.Clothing, missing []string, err error) {
	found = []models.Clothing{}
	missing = []string{}
	if len(ids) == 0 {
		return found, missing, nil
	}
	var rows []models.Clothing
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, nil, translate(err)
	}
	byID := make(map[string]models.Clothing, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			found = append(found, c)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

func (s *Store) CountClothes(ctx context.Context) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Clothing{}).Count(&count).Error
	return count, translate(err)
}

// GetUserProfile returns the installation profile or ErrNotFound.
func (s *Store) GetUserProfile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.conn(ctx).Order("created_at").First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// SaveUserProfile updates the existing profile when any record exists and
// inserts p otherwise. It returns the id of the stored profile.
func (s *Store) SaveUserProfile(ctx context.Context, p *models.UserProfile) (string, error) {
	if err := models.Validate(p); err != nil {
		return "", invalid(err)
	}
	now := s.now()
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.UserProfile
		err := tx.Order("created_at").First(&existing).Error
		switch {
		case err == nil:
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			p.UpdatedAt = now
			return tx.Save(p).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if p.ID == "" {
				p.ID = newID()
			}
			p.CreatedAt = now
			p.UpdatedAt = now
			return tx.Create(p).Error
		default:
			return err
		}
	})
	if err != nil {
		return "", translate(err)
	}
	return p.ID, nil
}

// AddOutfitHistory inserts an entry. Entries are never mutated afterwards.
func (s *Store) AddOutfitHistory(ctx context.Context, h *models.OutfitHistory) error {
	if len(h.ClothingIDs) == 0 {
		return invalid(errors.New("outfit history needs at least one clothing id"))
	}
	if h.ID == "" {
		h.ID = newID()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = s.now()
	}
	return translate(s.conn(ctx).Create(h).Error)
}

// GetOutfitHistory returns up to limit entries, newest first.
func (s *Store) GetOutfitHistory(ctx context.Context, limit int) ([]models.OutfitHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	entries := []models.OutfitHistory{}
	err := s.conn(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, translate(err)
}

// GetAllOutfitHistory returns every entry, newest first.
func (s *Store) GetAllOutfitHistory(ctx context.Context) ([]models.OutfitHistory, error) {
	entries := []models.OutfitHistory{}
	err := s.conn(ctx).Order("created_at DESC").Order("id DESC").Find(&entries).Error
	return entries, translate(err)
}

// GetOutfitHistoryEntry returns the entry with its garment ids resolved.
func (s *Store) GetOutfitHistoryEntry(ctx context.Context, id string) (*models.OutfitHistoryDetail, error) {
	var h models.OutfitHistory
	if err := s.conn(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	found, missing, err := s.ResolveClothes(ctx, h.ClothingIDs)
	if err != nil {
		return nil, err
	}
	return &models.OutfitHistoryDetail{OutfitHistory: h, Clothes: found, MissingIDs: missing}, nil
}

func (s *Store) DeleteOutfitHistory(ctx context.Context, id string) error {
	result := s.conn(ctx).Delete(&models.OutfitHistory{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddChatMessage appends m to the chat log. When the log grows past
// models.MaxChatMessages the single oldest message is removed.
func (s *Store) AddChatMessage(ctx context.Context, m *models.ChatMessage) error {
	if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
		return invalid(fmt.Errorf("unknown chat role %q", m.Role))
	}
	if m.ID == "" {
		m.ID = newID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&models.ChatMessage{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return err
		}
		m.Seq = last + 1
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.ChatMessage{}).Count(&count).Error; err != nil {
			return err
		}
		if count <= models.MaxChatMessages {
			return nil
		}
		var oldest models.ChatMessage
		if err := tx.Order("seq").First(&oldest).Error; err != nil {
			return err
		}
		return tx.Delete(&oldest).Error
	})
	return translate(err)
}

// GetChatMessages returns the chat log, oldest first.
func (s *Store) GetChatMessages(ctx context.Context) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	err := s.conn(ctx).Order("seq").Find(&messages).Error
	return messages, translate(err)
}

func (s *Store) ClearChatMessages(ctx context.Context) error {
	err := s.conn(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ChatMessage{}).Error
	return translate(err)
}

const replaceBatchSize = 20

// ReplaceAll clears profile, garments and history and inserts the given
// records in one transaction. The chat log is left alone.
func (s *Store) ReplaceAll(ctx context.Context, profile *models.UserProfile, clothes []models.Clothing, history []models.OutfitHistory) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&models.OutfitHistory{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&models.Clothing{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&models.UserProfile{}).Error; err != nil {
			return err
		}
		if profile != nil {
			if err := tx.Create(profile).Error; err != nil {
				return fmt.Errorf("profile: %w", err)
			}
		}
		if len(clothes) > 0 {
			if err := tx.CreateInBatches(&clothes, replaceBatchSize).Error; err != nil {
				return fmt.Errorf("clothes: %w", err)
			}
		}
		if len(history) > 0 {
			if err := tx.CreateInBatches(&history, replaceBatchSize).Error; err != nil {
				return fmt.Errorf("outfit history: %w", err)
			}
		}
		return nil
	})
	return translate(err)
}
