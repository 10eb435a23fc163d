package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"socios/internal/models"
	"socios/internal/repositories"
)

var (
	// ErrNotFound means the referenced member, document or file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the acting user does not own the member.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means a unique username or email is already taken.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries field-level messages for rejected input. No state was changed.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a store failure. Any transaction involved was rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + " failed: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// persistenceError logs the cause for operators and wraps it.
func persistenceError(op string, err error) error {
	log.Printf("%s failed: %v", op, err)
	return &PersistenceError{Op: op, Err: err}
}

// lookupError maps a repository error to ErrNotFound or a PersistenceError.
func lookupError(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return persistenceError(op, err)
}

// authorize allows access to member only for its owner.
func authorize(member *models.Member, userID string) error {
	if !member.OwnedBy(userID) {
		return fmt.Errorf("member %s is not owned by user %s: %w", member.ID, userID, ErrForbidden)
	}
	return nil
}
