package models

import "time"

// Document is a file submitted for a Member. Several documents may share a DocType.
type Document struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DocType    string    `json:"doc_type" gorm:"type:varchar(100);not null"`
	FilePath   string    `json:"file_path" gorm:"type:varchar(200);not null"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"not null"`
	MemberID   string    `json:"member_id" gorm:"type:varchar(36);index;not null"`
}
