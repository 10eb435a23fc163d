package repositories

import (
	"errors"
	"fmt"
	"time"

	"socios/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMDocumentRepository is a GORM implementation of DocumentRepository.
type GORMDocumentRepository struct {
	db *gorm.DB
}

// NewGORMDocumentRepository creates a new instance of GORMDocumentRepository.
func NewGORMDocumentRepository(db *gorm.DB) *GORMDocumentRepository {
	return &GORMDocumentRepository{db: db}
}

// Create inserts a document. UploadedAt defaults to the current time.
func (r *GORMDocumentRepository) Create(doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetByID retrieves a document by ID.
func (r *GORMDocumentRepository) GetByID(id string) (*models.Document, error) {
	var doc models.Document
	if err := r.db.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &doc, nil
}

// ListByMember returns every document of a member in upload order.
func (r *GORMDocumentRepository) ListByMember(memberID string) ([]models.Document, error) {
	var docs []models.Document
	if err := r.db.Where("member_id = ?", memberID).Order("uploaded_at, id").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents for member %s: %w", memberID, err)
	}
	return docs, nil
}
