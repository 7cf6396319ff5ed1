package crm

import (
	"context"

	"crm-copilot/backend/internal/models"

	"gorm.io/gorm"
)

// ContactStore reads a user's contacts for AI grounding
type ContactStore interface {
	// ListByOwner returns the owner's contacts ordered by most recent
	// interaction first, with company and tags resolved.
	ListByOwner(ctx context.Context, userID uint) ([]models.Contact, error)
}

// ActivityStore reads and appends a user's CRM audit trail
type ActivityStore interface {
	// ListRecent returns up to limit activities, most recent first.
	ListRecent(ctx context.Context, userID uint, limit int) ([]models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
}

// UserStore resolves internal users by id
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type GormContactStore struct {
	db *gorm.DB
}

func NewGormContactStore(db *gorm.DB) *GormContactStore {
	return &GormContactStore{db: db}
}

func (s *GormContactStore) ListByOwner(ctx context.Context, userID uint) ([]models.Contact, error) {
	var contacts []models.Contact
	err := s.db.WithContext(ctx).
		Preload("Company").
		Preload("Tags").
		Where("created_by_id = ?", userID).
		Order("last_interaction DESC NULLS LAST").
		Find(&contacts).Error
	return contacts, err
}

type GormActivityStore struct {
	db *gorm.DB
}

func NewGormActivityStore(db *gorm.DB) *GormActivityStore {
	return &GormActivityStore{db: db}
}

func (s *GormActivityStore) ListRecent(ctx context.Context, userID uint, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

func (s *GormActivityStore) Create(ctx context.Context, activity *models.Activity) error {
	return s.db.WithContext(ctx).Create(activity).Error
}

type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
