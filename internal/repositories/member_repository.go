package repositories

import "socios/internal/models"

// MemberRepository defines the interface for member data access.
type MemberRepository interface {
	Create(member *models.Member) error
	GetByID(id string) (*models.Member, error)
	GetByEmail(email string) (*models.Member, error)
	ListByUser(userID string) ([]models.Member, error)
	Update(member *models.Member) error
	// DeleteWithDocuments removes the member and all of its documents atomically
	// and returns the documents that were removed.
	DeleteWithDocuments(id string) ([]models.Document, error)
}
