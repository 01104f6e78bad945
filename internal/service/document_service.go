package service

import (
	"context"
	"strings"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/repository"
	"github.com/segyhp/school-portal/internal/storage"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
)

// uploads writes a student's file to the store and removes it again when
// the metadata row cannot be saved.
type uploads struct {
	store    *storage.FileStore
	students repository.StudentRepository
}

func (u uploads) save(ctx context.Context, folder string, up *domain.Upload, persist func(*storage.Stored) error) error {
	if err := mustExist(ctx, u.students.Exists, resStudent, up.StudentID); err != nil {
		return err
	}

	stored, err := u.store.Save(ctx, folder, up.StudentID, up.FileName, up.Data)
	if err != nil {
		return passthrough(err)
	}

	if err := persist(stored); err != nil {
		if rmErr := u.store.Delete(ctx, stored.Path); rmErr != nil {
			logger.Warn(ctx).Err(rmErr).Str("path", stored.Path).Msg("orphaned upload left in storage")
		}
		return err
	}
	return nil
}

func (u uploads) open(ctx context.Context, path, fileName string) (*domain.Download, error) {
	data, contentType, err := u.store.Open(ctx, path)
	if err != nil {
		return nil, passthrough(err)
	}
	return &domain.Download{FileName: fileName, ContentType: contentType, Data: data}, nil
}

// StudentDocumentService stores files attached to student records.
type StudentDocumentService struct {
	docs    repository.DocumentRepository
	uploads uploads
	opts    Options
}

func NewStudentDocumentService(docs repository.DocumentRepository, students repository.StudentRepository, store *storage.FileStore, opts Options) *StudentDocumentService {
	return &StudentDocumentService{docs: docs, uploads: uploads{store: store, students: students}, opts: opts}
}

func (s *StudentDocumentService) Upload(ctx context.Context, up *domain.Upload) (*domain.StudentDocument, error) {
	title := strings.TrimSpace(up.Title)
	if title == "" {
		title = up.FileName
	}
	docType := strings.TrimSpace(up.Category)
	if docType == "" {
		docType = "Other"
	}

	var doc *domain.StudentDocument
	err := s.uploads.save(ctx, storage.FolderDocuments, up, func(stored *storage.Stored) error {
		doc = &domain.StudentDocument{
			StudentID:    up.StudentID,
			DocumentType: docType,
			Title:        title,
			FileName:     stored.FileName,
			FilePath:     stored.Path,
			ContentType:  stored.ContentType,
			FileSize:     stored.Size,
			UploadedBy:   up.UserID,
		}
		doc.Touch(s.opts.now())
		if err := s.docs.Create(ctx, doc); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).Int64("document_id", doc.ID).Int64("student_id", doc.StudentID).Int64("size", doc.FileSize).Msg("student document uploaded")
	return doc, nil
}

func (s *StudentDocumentService) GetByID(ctx context.Context, id int64) (*domain.StudentDocument, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resDocument, id)
	}
	return doc, nil
}

func (s *StudentDocumentService) Download(ctx context.Context, id int64) (*domain.Download, error) {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.uploads.open(ctx, doc.FilePath, doc.FileName)
}

func (s *StudentDocumentService) List(ctx context.Context, filter domain.StudentDocumentFilter) (domain.PageResult[*domain.StudentDocument], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	items, total, err := s.docs.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.StudentDocument]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(items, total, filter.PageRequest), nil
}

// Delete soft deletes the record; the stored file is retained with it.
func (s *StudentDocumentService) Delete(ctx context.Context, id int64) error {
	if err := s.docs.Delete(ctx, id); err != nil {
		return lookupErr(err, resDocument, id)
	}
	return nil
}

// CertificateService stores certificates a student earned with their scans.
type CertificateService struct {
	certs   repository.CertificateRepository
	uploads uploads
	opts    Options
}

func NewCertificateService(certs repository.CertificateRepository, students repository.StudentRepository, store *storage.FileStore, opts Options) *CertificateService {
	return &CertificateService{certs: certs, uploads: uploads{store: store, students: students}, opts: opts}
}

func (s *CertificateService) Upload(ctx context.Context, up *domain.Upload) (*domain.Certificate, error) {
	title := strings.TrimSpace(up.Title)
	if title == "" {
		return nil, customError.WrapValidation("Sertifika adı zorunludur")
	}

	now := s.opts.now()
	issued := now
	if up.IssueDate != nil {
		issued = *up.IssueDate
	}

	var cert *domain.Certificate
	err := s.uploads.save(ctx, storage.FolderCertificates, up, func(stored *storage.Stored) error {
		cert = &domain.Certificate{
			StudentID:   up.StudentID,
			Title:       title,
			Issuer:      strings.TrimSpace(up.Category),
			IssueDate:   issued,
			FileName:    stored.FileName,
			FilePath:    stored.Path,
			ContentType: stored.ContentType,
		}
		cert.Touch(now)
		if err := s.certs.Create(ctx, cert); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cert, nil
}

func (s *CertificateService) GetByID(ctx context.Context, id int64) (*domain.Certificate, error) {
	cert, err := s.certs.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, resCertificate, id)
	}
	return cert, nil
}

func (s *CertificateService) Download(ctx context.Context, id int64) (*domain.Download, error) {
	cert, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.uploads.open(ctx, cert.FilePath, cert.FileName)
}

func (s *CertificateService) List(ctx context.Context, filter domain.CertificateFilter) (domain.PageResult[*domain.Certificate], error) {
	filter.PageRequest = s.opts.page(filter.PageRequest)

	items, total, err := s.certs.List(ctx, filter)
	if err != nil {
		return domain.PageResult[*domain.Certificate]{}, customError.WrapDatabaseError(err)
	}
	return domain.NewPageResult(items, total, filter.PageRequest), nil
}

func (s *CertificateService) Delete(ctx context.Context, id int64) error {
	if err := s.certs.Delete(ctx, id); err != nil {
		return lookupErr(err, resCertificate, id)
	}
	return nil
}
