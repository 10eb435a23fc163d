package models

import "time"

// MaritalStatus is the closed set of marital states a member can be in.
type MaritalStatus string

const (
	MaritalStatusSingle   MaritalStatus = "soltero"
	MaritalStatusMarried  MaritalStatus = "casado"
	MaritalStatusDivorced MaritalStatus = "divorciado"
	MaritalStatusWidowed  MaritalStatus = "viudo"
)

// MaritalStatuses lists every valid status in display order.
var MaritalStatuses = []MaritalStatus{
	MaritalStatusSingle,
	MaritalStatusMarried,
	MaritalStatusDivorced,
	MaritalStatusWidowed,
}

// Valid reports whether s is one of the four defined statuses.
func (s MaritalStatus) Valid() bool {
	switch s {
	case MaritalStatusSingle, MaritalStatusMarried, MaritalStatusDivorced, MaritalStatusWidowed:
		return true
	}
	return false
}

// Label returns the human readable name used in exports.
func (s MaritalStatus) Label() string {
	switch s {
	case MaritalStatusSingle:
		return "Soltero"
	case MaritalStatusMarried:
		return "Casado"
	case MaritalStatusDivorced:
		return "Divorciado"
	case MaritalStatusWidowed:
		return "Viudo"
	}
	return string(s)
}

// Member (socio) is a person registered by a User.
// Spouse fields are non-nil exactly when MaritalStatus is MaritalStatusMarried.
type Member struct {
	ID                    string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	GivenName             string        `json:"given_name" gorm:"type:varchar(100);not null"`
	PaternalSurname       string        `json:"paternal_surname" gorm:"type:varchar(100);not null"`
	MaternalSurname       string        `json:"maternal_surname" gorm:"type:varchar(100);not null"`
	RFC                   string        `json:"rfc" gorm:"column:rfc;type:varchar(13);not null"`
	CURP                  string        `json:"curp" gorm:"column:curp;type:varchar(18);not null"`
	BirthDate             time.Time     `json:"birth_date" gorm:"type:date;not null"`
	Address               string        `json:"address" gorm:"type:varchar(200);not null"`
	Email                 string        `json:"email" gorm:"uniqueIndex;type:varchar(120);not null"`
	Landline              *string       `json:"landline,omitempty" gorm:"type:varchar(20)"`
	Mobile                *string       `json:"mobile,omitempty" gorm:"type:varchar(20)"`
	MaritalStatus         MaritalStatus `json:"marital_status" gorm:"type:varchar(10);not null"`
	SpouseGivenName       *string       `json:"spouse_given_name" gorm:"type:varchar(100)"`
	SpousePaternalSurname *string       `json:"spouse_paternal_surname" gorm:"type:varchar(100)"`
	SpouseMaternalSurname *string       `json:"spouse_maternal_surname" gorm:"type:varchar(100)"`
	UserID                string        `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Documents             []Document    `json:"documents,omitempty" gorm:"foreignKey:MemberID;constraint:OnDelete:RESTRICT"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// OwnedBy reports whether userID is the member's owner.
func (m *Member) OwnedBy(userID string) bool {
	return m.UserID == userID
}
