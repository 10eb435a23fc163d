package repositories

import (
	"errors"
	"fmt"

	"socios/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMMemberRepository is a GORM implementation of MemberRepository.
type GORMMemberRepository struct {
	db *gorm.DB
}

// NewGORMMemberRepository creates a new instance of GORMMemberRepository.
func NewGORMMemberRepository(db *gorm.DB) *GORMMemberRepository {
	return &GORMMemberRepository{db: db}
}

// Create inserts a new member, assigning an ID when none is set.
func (r *GORMMemberRepository) Create(member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if err := r.db.Omit("Documents").Create(member).Error; err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// GetByID retrieves a member by ID.
func (r *GORMMemberRepository) GetByID(id string) (*models.Member, error) {
	return r.first("id = ?", id)
}

// GetByEmail retrieves a member by email.
func (r *GORMMemberRepository) GetByEmail(email string) (*models.Member, error) {
	return r.first("email = ?", email)
}

func (r *GORMMemberRepository) first(query string, arg string) (*models.Member, error) {
	var member models.Member
	if err := r.db.First(&member, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member %s: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member %s: %w", arg, err)
	}
	return &member, nil
}

// ListByUser returns the members owned by userID, oldest first.
func (r *GORMMemberRepository) ListByUser(userID string) ([]models.Member, error) {
	var members []models.Member
	if err := r.db.Where("user_id = ?", userID).Order("created_at, id").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to list members for user %s: %w", userID, err)
	}
	return members, nil
}

// Update writes every mutable column of member, including nil spouse fields.
func (r *GORMMemberRepository) Update(member *models.Member) error {
	res := r.db.Model(member).
		Select("*").
		Omit("id", "user_id", "created_at", "Documents").
		Updates(member)
	if res.Error != nil {
		return fmt.Errorf("failed to update member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("member %s: %w", member.ID, ErrNotFound)
	}
	return nil
}

// DeleteWithDocuments deletes the member's documents and then the member in one
// transaction. Nothing is removed if any step fails.
func (r *GORMMemberRepository) DeleteWithDocuments(id string) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", id).Find(&docs).Error; err != nil {
			return fmt.Errorf("failed to load documents: %w", err)
		}
		if err := tx.Where("member_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return fmt.Errorf("failed to delete documents: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Member{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete member: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("member %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
