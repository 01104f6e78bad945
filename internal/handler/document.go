package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/service"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/response"
)

// multipartOverhead is the slack allowed on top of the file for form fields
// and boundaries.
const multipartOverhead = 1 << 20

// DocumentHandler serves student documents and certificates.
type DocumentHandler struct {
	base
	documents    *service.StudentDocumentService
	certificates *service.CertificateService
	maxUpload    int64
}

func NewDocumentHandler(
	documents *service.StudentDocumentService,
	certificates *service.CertificateService,
	maxUpload int64,
	policies PolicyResolver,
) *DocumentHandler {
	return &DocumentHandler{
		base:         newBase(policies),
		documents:    documents,
		certificates: certificates,
		maxUpload:    maxUpload,
	}
}

func (h *DocumentHandler) Register(r *mux.Router) {
	r.HandleFunc("/students/{studentId}/documents", h.ListDocuments).Methods(http.MethodGet)
	r.HandleFunc("/students/{studentId}/documents", h.UploadDocument).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}", h.GetDocument).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}/download", h.DownloadDocument).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}", h.DeleteDocument).Methods(http.MethodDelete)

	r.HandleFunc("/students/{studentId}/certificates", h.ListCertificates).Methods(http.MethodGet)
	r.HandleFunc("/students/{studentId}/certificates", h.UploadCertificate).Methods(http.MethodPost)
	r.HandleFunc("/certificates/{id}", h.GetCertificate).Methods(http.MethodGet)
	r.HandleFunc("/certificates/{id}/download", h.DownloadCertificate).Methods(http.MethodGet)
	r.HandleFunc("/certificates/{id}", h.DeleteCertificate).Methods(http.MethodDelete)
}

// readUpload parses a multipart form with a "file" part. category names the
// form field copied into Upload.Category.
func (h *DocumentHandler) readUpload(w http.ResponseWriter, r *http.Request, category string) (*domain.Upload, error) {
	studentID, err := pathID(r, "studentId")
	if err != nil {
		return nil, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, customError.WrapFileRejected("Dosya boyutu sınırı aşıldı")
		}
		return nil, customError.WrapValidation("Geçersiz multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, customError.WrapValidation("file alanı zorunludur")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, customError.WrapValidation("Dosya okunamadı")
	}

	up := &domain.Upload{
		StudentID: studentID,
		FileName:  header.Filename,
		Data:      data,
		Title:     r.FormValue("title"),
		Category:  r.FormValue(category),
		UserID:    CallerID(r.Context()),
	}
	if raw := r.FormValue("issue_date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, customError.WrapValidation("issue_date YYYY-AA-GG biçiminde olmalıdır")
		}
		up.IssueDate = &d
	}
	return up, nil
}

func download(w http.ResponseWriter, d *domain.Download) {
	response.File(w, d.ContentType, d.FileName, d.Data)
}

// Documents

func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	up, err := h.readUpload(w, r, "document_type")
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.documents.Upload(r.Context(), up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, doc)
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	studentID, page, ok := h.studentPage(w, r)
	if !ok {
		return
	}
	result, err := h.documents.List(r.Context(), domain.StudentDocumentFilter{
		StudentID:    &studentID,
		DocumentType: r.URL.Query().Get("document_type"),
		PageRequest:  page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *DocumentHandler) visibleDocument(w http.ResponseWriter, r *http.Request) (*domain.StudentDocument, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	doc, err := h.documents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if err := h.authorize(r.Context(), doc.StudentID); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return doc, true
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.visibleDocument(w, r)
	if !ok {
		return
	}
	response.Success(w, doc)
}

func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.visibleDocument(w, r)
	if !ok {
		return
	}
	d, err := h.documents.Download(r.Context(), doc.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	download(w, d)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.documents.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Certificates

func (h *DocumentHandler) UploadCertificate(w http.ResponseWriter, r *http.Request) {
	up, err := h.readUpload(w, r, "issuer")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cert, err := h.certificates.Upload(r.Context(), up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, cert)
}

func (h *DocumentHandler) ListCertificates(w http.ResponseWriter, r *http.Request) {
	studentID, page, ok := h.studentPage(w, r)
	if !ok {
		return
	}
	result, err := h.certificates.List(r.Context(), domain.CertificateFilter{
		StudentID:   &studentID,
		PageRequest: page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, result)
}

func (h *DocumentHandler) visibleCertificate(w http.ResponseWriter, r *http.Request) (*domain.Certificate, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	cert, err := h.certificates.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if err := h.authorize(r.Context(), cert.StudentID); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return cert, true
}

func (h *DocumentHandler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	cert, ok := h.visibleCertificate(w, r)
	if !ok {
		return
	}
	response.Success(w, cert)
}

func (h *DocumentHandler) DownloadCertificate(w http.ResponseWriter, r *http.Request) {
	cert, ok := h.visibleCertificate(w, r)
	if !ok {
		return
	}
	d, err := h.certificates.Download(r.Context(), cert.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	download(w, d)
}

func (h *DocumentHandler) DeleteCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.certificates.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}
