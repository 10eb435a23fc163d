package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"socios/internal/metrics"
	"socios/internal/models"
	"socios/internal/repositories"
	"socios/internal/requirements"
	"socios/internal/storage"
	"socios/pkg/rabbitmq"

	"github.com/google/uuid"
)

// AllowedExtensions are the accepted upload file types, lower case and without the dot.
var AllowedExtensions = []string{"pdf", "docx", "jpg", "png"}

const (
	uploadPrefix       = "uploads/"
	maxStoredNameBytes = 150
)

// UploadInput describes one uploaded file.
type UploadInput struct {
	DocType     string
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// DocumentService handles uploads, downloads and completeness of member documents.
type DocumentService struct {
	members   repositories.MemberRepository
	documents repositories.DocumentRepository
	blobs     storage.BlobStore
	events    EventPublisher
	metrics   *metrics.Metrics
}

// NewDocumentService creates a new DocumentService. events and m may be nil.
func NewDocumentService(members repositories.MemberRepository, documents repositories.DocumentRepository,
	blobs storage.BlobStore, events EventPublisher, m *metrics.Metrics) *DocumentService {
	return &DocumentService{
		members:   members,
		documents: documents,
		blobs:     blobs,
		events:    events,
		metrics:   m,
	}
}

// Upload stores a file for a member owned by userID and records it as a document.
func (s *DocumentService) Upload(ctx context.Context, userID, memberID string, in UploadInput) (*models.Document, error) {
	member, err := s.member(userID, memberID)
	if err != nil {
		return nil, err
	}

	if !requirements.IsAllowed(member.MaritalStatus, in.DocType) {
		return nil, NewValidationError("doc_type", fmt.Sprintf("%q is not a document type for this member", in.DocType))
	}
	if !allowedExtension(in.Filename) {
		return nil, NewValidationError("document", "allowed file types: "+strings.Join(AllowedExtensions, ", "))
	}

	key := uploadPrefix + uuid.New().String() + "_" + sanitizeFilename(in.Filename)
	if err := s.blobs.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, persistenceError("store document", err)
	}

	doc := &models.Document{
		DocType:  in.DocType,
		FilePath: key,
		MemberID: member.ID,
	}
	if err := s.documents.Create(doc); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			log.Printf("Warning: failed to remove orphaned file %s: %v", key, delErr)
		}
		return nil, persistenceError("record document", err)
	}

	s.metrics.IncrementDocumentsUploaded(doc.DocType)
	publish(s.events, rabbitmq.Event{Type: rabbitmq.EventDocumentUploaded, MemberID: member.ID, UserID: userID, DocType: doc.DocType})
	return doc, nil
}

// Status evaluates which documents a member owned by userID still has to submit.
func (s *DocumentService) Status(userID, memberID string) (*models.Member, requirements.Completeness, error) {
	member, err := s.member(userID, memberID)
	if err != nil {
		return nil, requirements.Completeness{}, err
	}
	docs, err := s.documents.ListByMember(member.ID)
	if err != nil {
		return nil, requirements.Completeness{}, persistenceError("list documents", err)
	}
	submitted := make([]string, 0, len(docs))
	for _, d := range docs {
		submitted = append(submitted, d.DocType)
	}
	return member, requirements.Evaluate(member.MaritalStatus, submitted), nil
}

// Open returns the stored file of a document belonging to a member owned by userID.
// The caller must close the reader.
func (s *DocumentService) Open(ctx context.Context, userID, memberID, docID string) (io.ReadCloser, *models.Document, error) {
	member, err := s.member(userID, memberID)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.documents.GetByID(docID)
	if err != nil {
		return nil, nil, lookupError("get document", err)
	}
	if doc.MemberID != member.ID {
		return nil, nil, fmt.Errorf("document %s of member %s: %w", docID, memberID, ErrNotFound)
	}
	rc, err := s.blobs.Get(ctx, doc.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, fmt.Errorf("file of document %s: %w", docID, ErrNotFound)
		}
		return nil, nil, persistenceError("open document", err)
	}
	return rc, doc, nil
}

func (s *DocumentService) member(userID, memberID string) (*models.Member, error) {
	member, err := s.members.GetByID(memberID)
	if err != nil {
		return nil, lookupError("get member", err)
	}
	if err := authorize(member, userID); err != nil {
		return nil, err
	}
	return member, nil
}

func allowedExtension(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// sanitizeFilename keeps ASCII letters, digits, dots, dashes and underscores of the
// base name and bounds its length, preserving the extension.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	clean := strings.TrimLeft(b.String(), ".")
	if clean == "" {
		clean = "file"
	}
	if len(clean) > maxStoredNameBytes {
		ext := filepath.Ext(clean)
		clean = clean[:maxStoredNameBytes-len(ext)] + ext
	}
	return clean
}
