package repository

import (
	"context"

	"github.com/segyhp/school-portal/internal/domain"

	"github.com/jmoiron/sqlx"
)

var (
	studentDocuments = table{
		name: "student_documents",
		columns: []string{
			"student_id", "document_type", "title", "file_name", "file_path", "content_type", "file_size",
			"uploaded_by", "created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}

	certificates = table{
		name: "certificates",
		columns: []string{
			"student_id", "title", "issuer", "issue_date", "expiry_date", "file_name", "file_path",
			"content_type", "created_at", "updated_at", "is_deleted",
		},
		softDelete: true,
	}
)

type documentRepository struct {
	crud[domain.StudentDocument]
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{crud[domain.StudentDocument]{base{db}, studentDocuments}}
}

func (r *documentRepository) Create(ctx context.Context, d *domain.StudentDocument) error {
	id, err := r.insert(ctx, d)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id int64) (*domain.StudentDocument, error) {
	return r.get(ctx, id)
}

func (r *documentRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *documentRepository) List(ctx context.Context, filter domain.StudentDocumentFilter) ([]*domain.StudentDocument, int, error) {
	q := newListQuery("created_at DESC, id DESC").
		whereIf(filter.StudentID != nil, "student_id = ?", deref(filter.StudentID)).
		whereIf(filter.DocumentType != "", "document_type = ?", filter.DocumentType)
	return r.list(ctx, q, filter.PageRequest)
}

type certificateRepository struct {
	crud[domain.Certificate]
}

func NewCertificateRepository(db *sqlx.DB) CertificateRepository {
	return &certificateRepository{crud[domain.Certificate]{base{db}, certificates}}
}

func (r *certificateRepository) Create(ctx context.Context, c *domain.Certificate) error {
	id, err := r.insert(ctx, c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *certificateRepository) GetByID(ctx context.Context, id int64) (*domain.Certificate, error) {
	return r.get(ctx, id)
}

func (r *certificateRepository) Delete(ctx context.Context, id int64) error {
	return r.remove(ctx, id)
}

func (r *certificateRepository) List(ctx context.Context, filter domain.CertificateFilter) ([]*domain.Certificate, int, error) {
	q := newListQuery("issue_date DESC, id DESC").
		whereIf(filter.StudentID != nil, "student_id = ?", deref(filter.StudentID))
	return r.list(ctx, q, filter.PageRequest)
}
