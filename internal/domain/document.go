package domain

import "time"

// StudentDocument is an uploaded file attached to a student record.
type StudentDocument struct {
	ID           int64  `json:"id" db:"id"`
	StudentID    int64  `json:"student_id" db:"student_id"`
	DocumentType string `json:"document_type" db:"document_type"`
	Title        string `json:"title" db:"title"`
	FileName     string `json:"file_name" db:"file_name"`
	FilePath     string `json:"-" db:"file_path"`
	ContentType  string `json:"content_type" db:"content_type"`
	FileSize     int64  `json:"file_size" db:"file_size"`
	UploadedBy   string `json:"uploaded_by" db:"uploaded_by"`
	Audit
}

type StudentDocumentFilter struct {
	StudentID    *int64
	DocumentType string
	PageRequest
}

// Certificate is an award or qualification a student earned, with its scan.
type Certificate struct {
	ID          int64      `json:"id" db:"id"`
	StudentID   int64      `json:"student_id" db:"student_id"`
	Title       string     `json:"title" db:"title"`
	Issuer      string     `json:"issuer" db:"issuer"`
	IssueDate   time.Time  `json:"issue_date" db:"issue_date"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	FileName    string     `json:"file_name" db:"file_name"`
	FilePath    string     `json:"-" db:"file_path"`
	ContentType string     `json:"content_type" db:"content_type"`
	Audit
}

type CertificateFilter struct {
	StudentID *int64
	PageRequest
}

// Upload is a file received from a caller.
type Upload struct {
	StudentID int64
	FileName  string
	Data      []byte
	Title     string
	Category  string // document type for documents, issuer for certificates
	IssueDate *time.Time
	UserID    string
}

// Download is a stored file returned to a caller.
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}
