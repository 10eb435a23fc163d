// Package requirements decides which identification documents a member must
// submit and how far along a member is in submitting them.
package requirements

import "socios/internal/models"

// Document type labels.
const (
	VoterID              = "Voter ID"
	BirthCertificate     = "Birth Certificate"
	TaxStatusCertificate = "Tax Status Certificate"
	ProofOfAddress       = "Proof of Address"

	SpouseVoterID          = "Voter ID (Spouse)"
	SpouseBirthCertificate = "Birth Certificate (Spouse)"
	MarriageCertificate    = "Marriage Certificate"

	AdditionalProofOfAddress = "Additional Proof of Address (Optional)"
)

// RequiredDocuments returns the labels a member with the given status must submit.
// Married members additionally need their spouse's documents and the marriage certificate.
func RequiredDocuments(status models.MaritalStatus) []string {
	docs := []string{
		VoterID,
		BirthCertificate,
		TaxStatusCertificate,
		ProofOfAddress,
	}
	if status == models.MaritalStatusMarried {
		docs = append(docs,
			SpouseVoterID,
			SpouseBirthCertificate,
			MarriageCertificate,
		)
	}
	return docs
}

// OptionalDocuments returns the labels that may be submitted but are never required.
func OptionalDocuments() []string {
	return []string{AdditionalProofOfAddress}
}

// AllowedDocuments returns every label that can be uploaded for the given status,
// required ones first.
func AllowedDocuments(status models.MaritalStatus) []string {
	return append(RequiredDocuments(status), OptionalDocuments()...)
}

// IsAllowed reports whether docType is one of AllowedDocuments(status).
func IsAllowed(status models.MaritalStatus, docType string) bool {
	for _, d := range AllowedDocuments(status) {
		if d == docType {
			return true
		}
	}
	return false
}
