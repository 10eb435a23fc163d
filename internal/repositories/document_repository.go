package repositories

import "socios/internal/models"

// DocumentRepository defines the interface for document data access.
type DocumentRepository interface {
	Create(doc *models.Document) error
	GetByID(id string) (*models.Document, error)
	ListByMember(memberID string) ([]models.Document, error)
}
