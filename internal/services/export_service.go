package services

import (
	"encoding/csv"
	"fmt"
	"io"

	"socios/internal/metrics"
	"socios/internal/models"
	"socios/internal/repositories"
)

// ExportFilename is the suggested download name of the member export.
const ExportFilename = "socios.csv"

// ExportHeader is the fixed first row of the member export.
var ExportHeader = []string{
	"Given Name",
	"Paternal Surname",
	"Maternal Surname",
	"RFC",
	"CURP",
	"Birth Date",
	"Address",
	"Email",
	"Landline",
	"Mobile",
	"Marital Status",
	"Spouse Given Name",
	"Spouse Paternal Surname",
	"Spouse Maternal Surname",
}

// ExportService writes a user's members as CSV.
type ExportService struct {
	members repositories.MemberRepository
	metrics *metrics.Metrics
}

// NewExportService creates a new ExportService. m may be nil.
func NewExportService(members repositories.MemberRepository, m *metrics.Metrics) *ExportService {
	return &ExportService{members: members, metrics: m}
}

// WriteCSV writes the header and one row per member owned by userID to w.
func (s *ExportService) WriteCSV(w io.Writer, userID string) error {
	members, err := s.members.ListByUser(userID)
	if err != nil {
		return persistenceError("export members", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for i := range members {
		if err := cw.Write(exportRow(&members[i])); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}

	s.metrics.IncrementExports()
	return nil
}

func exportRow(m *models.Member) []string {
	return []string{
		m.GivenName,
		m.PaternalSurname,
		m.MaternalSurname,
		m.RFC,
		m.CURP,
		m.BirthDate.Format("2006-01-02"),
		m.Address,
		m.Email,
		deref(m.Landline),
		deref(m.Mobile),
		m.MaritalStatus.Label(),
		deref(m.SpouseGivenName),
		deref(m.SpousePaternalSurname),
		deref(m.SpouseMaternalSurname),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
