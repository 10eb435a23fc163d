package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"socios/internal/metrics"
	"socios/internal/models"
	"socios/internal/repositories"
	"socios/internal/storage"
	"socios/pkg/rabbitmq"
)

// MemberInput is the full set of editable member attributes.
type MemberInput struct {
	GivenName             string
	PaternalSurname       string
	MaternalSurname       string
	RFC                   string
	CURP                  string
	BirthDate             time.Time
	Address               string
	Email                 string
	Landline              *string
	Mobile                *string
	MaritalStatus         models.MaritalStatus
	SpouseGivenName       *string
	SpousePaternalSurname *string
	SpouseMaternalSurname *string
}

// MemberService handles registration, editing and deletion of members.
type MemberService struct {
	members   repositories.MemberRepository
	documents repositories.DocumentRepository
	blobs     storage.BlobStore
	events    EventPublisher
	metrics   *metrics.Metrics
}

// NewMemberService creates a new MemberService. events and m may be nil.
func NewMemberService(members repositories.MemberRepository, documents repositories.DocumentRepository,
	blobs storage.BlobStore, events EventPublisher, m *metrics.Metrics) *MemberService {
	return &MemberService{
		members:   members,
		documents: documents,
		blobs:     blobs,
		events:    events,
		metrics:   m,
	}
}

// Register creates a member owned by userID.
func (s *MemberService) Register(userID string, in MemberInput) (*models.Member, error) {
	if !in.MaritalStatus.Valid() {
		return nil, NewValidationError("marital_status", fmt.Sprintf("unknown marital status %q", in.MaritalStatus))
	}
	if err := s.ensureEmailFree(in.Email, ""); err != nil {
		return nil, err
	}

	member := &models.Member{UserID: userID}
	apply(member, in)

	if err := s.members.Create(member); err != nil {
		return nil, persistenceError("register member", err)
	}

	s.metrics.IncrementMembersRegistered()
	publish(s.events, rabbitmq.Event{Type: rabbitmq.EventMemberRegistered, MemberID: member.ID, UserID: userID})
	return member, nil
}

// Get returns a member owned by userID.
func (s *MemberService) Get(userID, id string) (*models.Member, error) {
	member, err := s.members.GetByID(id)
	if err != nil {
		return nil, lookupError("get member", err)
	}
	if err := authorize(member, userID); err != nil {
		return nil, err
	}
	return member, nil
}

// GetWithDocuments returns a member owned by userID together with its documents.
func (s *MemberService) GetWithDocuments(userID, id string) (*models.Member, []models.Document, error) {
	member, err := s.Get(userID, id)
	if err != nil {
		return nil, nil, err
	}
	docs, err := s.documents.ListByMember(member.ID)
	if err != nil {
		return nil, nil, persistenceError("list documents", err)
	}
	return member, docs, nil
}

// List returns every member owned by userID.
func (s *MemberService) List(userID string) ([]models.Member, error) {
	members, err := s.members.ListByUser(userID)
	if err != nil {
		return nil, persistenceError("list members", err)
	}
	return members, nil
}

// Update replaces the attributes of a member owned by userID.
// Leaving the married status discards the spouse fields for good.
func (s *MemberService) Update(userID, id string, in MemberInput) (*models.Member, error) {
	if !in.MaritalStatus.Valid() {
		return nil, NewValidationError("marital_status", fmt.Sprintf("unknown marital status %q", in.MaritalStatus))
	}
	member, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if in.Email != member.Email {
		if err := s.ensureEmailFree(in.Email, member.ID); err != nil {
			return nil, err
		}
	}

	apply(member, in)

	if err := s.members.Update(member); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("update member %s: %w", id, ErrNotFound)
		}
		return nil, persistenceError("update member", err)
	}

	publish(s.events, rabbitmq.Event{Type: rabbitmq.EventMemberUpdated, MemberID: member.ID, UserID: userID})
	return member, nil
}

// Delete removes a member owned by userID and all of its documents in one transaction.
// Stored files are removed afterwards on a best-effort basis.
func (s *MemberService) Delete(ctx context.Context, userID, id string) error {
	member, err := s.Get(userID, id)
	if err != nil {
		return err
	}

	removed, err := s.members.DeleteWithDocuments(member.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("delete member %s: %w", id, ErrNotFound)
		}
		return persistenceError("delete member", err)
	}

	for _, doc := range removed {
		if s.blobs == nil {
			break
		}
		if err := s.blobs.Delete(ctx, doc.FilePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			log.Printf("Warning: failed to remove file %s of deleted member %s: %v", doc.FilePath, member.ID, err)
		}
	}

	s.metrics.IncrementMembersDeleted()
	publish(s.events, rabbitmq.Event{Type: rabbitmq.EventMemberDeleted, MemberID: member.ID, UserID: userID})
	return nil
}

func (s *MemberService) ensureEmailFree(email, selfID string) error {
	existing, err := s.members.GetByEmail(email)
	if err == nil && existing != nil && existing.ID != selfID {
		return NewValidationError("email", "email already registered")
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return persistenceError("check member email", err)
	}
	return nil
}

// apply copies in onto member and reconciles the spouse fields with the status.
func apply(member *models.Member, in MemberInput) {
	member.GivenName = in.GivenName
	member.PaternalSurname = in.PaternalSurname
	member.MaternalSurname = in.MaternalSurname
	member.RFC = in.RFC
	member.CURP = in.CURP
	member.BirthDate = in.BirthDate
	member.Address = in.Address
	member.Email = in.Email
	member.Landline = in.Landline
	member.Mobile = in.Mobile
	member.MaritalStatus = in.MaritalStatus

	if in.MaritalStatus != models.MaritalStatusMarried {
		member.SpouseGivenName = nil
		member.SpousePaternalSurname = nil
		member.SpouseMaternalSurname = nil
		return
	}
	member.SpouseGivenName = presentOrEmpty(in.SpouseGivenName)
	member.SpousePaternalSurname = presentOrEmpty(in.SpousePaternalSurname)
	member.SpouseMaternalSurname = presentOrEmpty(in.SpouseMaternalSurname)
}

func presentOrEmpty(s *string) *string {
	v := ""
	if s != nil {
		v = *s
	}
	return &v
}
