package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/school-portal/internal/access"
	"github.com/segyhp/school-portal/internal/domain"
	"github.com/segyhp/school-portal/internal/mocks"
	"github.com/segyhp/school-portal/internal/service"
	"github.com/segyhp/school-portal/internal/storage"
)

const testMaxUpload = 2048

type documentFixture struct {
	docs     *mocks.MockDocumentRepository
	certs    *mocks.MockCertificateRepository
	students *mocks.MockStudentRepository
	fs       afero.Fs
}

func newDocumentFixture() *documentFixture {
	return &documentFixture{
		docs:     &mocks.MockDocumentRepository{},
		certs:    &mocks.MockCertificateRepository{},
		students: &mocks.MockStudentRepository{},
		fs:       afero.NewMemMapFs(),
	}
}

func (f *documentFixture) server(policy access.Policy) http.Handler {
	opts := service.Options{DefaultPageSize: 20, MaxPageSize: 100, Clock: func() time.Time { return fixedNow }}
	store := storage.NewFileStore(f.fs, "/uploads", testMaxUpload, []string{".pdf", ".png", ".jpg"})
	h := NewDocumentHandler(
		service.NewStudentDocumentService(f.docs, f.students, store, opts),
		service.NewCertificateService(f.certs, f.students, store, opts),
		testMaxUpload,
		&stubPolicies{policy: policy},
	)
	return newTestServer(Routes{Documents: h})
}

// multipartBody builds a form with a "file" part and the given fields.
func multipartBody(t *testing.T, fileName string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func upload(h http.Handler, target string, body *bytes.Buffer, contentType, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(DevUserHeader, user)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDocumentHandler_UploadDocument(t *testing.T) {
	pdf := []byte("%PDF-1.4 transkript")

	tests := []struct {
		name           string
		fileName       string
		data           []byte
		fields         map[string]string
		setupMocks     func(*documentFixture)
		expectedStatus int
		checkResponse  func(*testing.T, *documentFixture, *httptest.ResponseRecorder)
	}{
		{
			name:     "Success",
			fileName: "transkript.pdf",
			data:     pdf,
			fields:   map[string]string{"title": "Transkript", "document_type": "Transcript"},
			setupMocks: func(f *documentFixture) {
				f.students.On("Exists", mock.Anything, int64(42)).Return(true, nil)
				f.docs.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.StudentDocument) bool {
					return d.StudentID == 42 && d.DocumentType == "Transcript" && d.UploadedBy == "staff-1"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.StudentDocument).ID = 77
				}).Return(nil)
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, f *documentFixture, rec *httptest.ResponseRecorder) {
				var doc domain.StudentDocument
				require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &doc))
				assert.Equal(t, int64(77), doc.ID)
				assert.Equal(t, "Transkript", doc.Title)
				assert.Equal(t, "application/pdf", doc.ContentType)

				stored, err := afero.ReadFile(f.fs, "/uploads/"+doc.FilePath)
				require.NoError(t, err)
				assert.Equal(t, pdf, stored)
			},
		},
		{
			name:           "Failure - Missing file part",
			fields:         map[string]string{"title": "Boş"},
			setupMocks:     func(*documentFixture) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "Failure - Extension not allowed",
			fileName: "setup.exe",
			data:     []byte("MZ"),
			setupMocks: func(f *documentFixture) {
				f.students.On("Exists", mock.Anything, int64(42)).Return(true, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "Failure - Student not found",
			fileName: "transkript.pdf",
			data:     pdf,
			setupMocks: func(f *documentFixture) {
				f.students.On("Exists", mock.Anything, int64(42)).Return(false, nil)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:     "Failure - Over the size limit",
			fileName: "buyuk.pdf",
			data:     append([]byte("%PDF-1.4 "), bytes.Repeat([]byte("a"), testMaxUpload+multipartOverhead)...),
			setupMocks: func(*documentFixture) {
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "Failure - Database error removes the stored file",
			fileName: "transkript.pdf",
			data:     pdf,
			setupMocks: func(f *documentFixture) {
				f.students.On("Exists", mock.Anything, int64(42)).Return(true, nil)
				f.docs.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, f *documentFixture, _ *httptest.ResponseRecorder) {
				entries, err := afero.ReadDir(f.fs, "/uploads/documents/42")
				if err == nil {
					assert.Empty(t, entries)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture()
			tt.setupMocks(f)

			body, contentType := multipartBody(t, tt.fileName, tt.data, tt.fields)
			rec := upload(f.server(access.Admin()), "/api/v1/students/42/documents", body, contentType, "staff-1")

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.checkResponse != nil {
				tt.checkResponse(t, f, rec)
			}
			f.docs.AssertExpectations(t)
			f.students.AssertExpectations(t)
		})
	}
}

func TestDocumentHandler_DownloadDocument(t *testing.T) {
	pdf := []byte("%PDF-1.4 rapor")

	tests := []struct {
		name           string
		policy         access.Policy
		setupMocks     func(*documentFixture)
		expectedStatus int
	}{
		{
			name:   "Success",
			policy: access.WithIDs("parent", []int64{42}),
			setupMocks: func(f *documentFixture) {
				require.NoError(t, afero.WriteFile(f.fs, "/uploads/documents/42/rapor.pdf", pdf, 0o644))
				f.docs.On("GetByID", mock.Anything, int64(9)).Return(&domain.StudentDocument{
					ID: 9, StudentID: 42, FileName: "rapor.pdf", FilePath: "documents/42/rapor.pdf",
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Failure - Other family",
			policy: access.WithIDs("parent", []int64{8}),
			setupMocks: func(f *documentFixture) {
				f.docs.On("GetByID", mock.Anything, int64(9)).Return(&domain.StudentDocument{
					ID: 9, StudentID: 42, FileName: "rapor.pdf", FilePath: "documents/42/rapor.pdf",
				}, nil).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "Failure - Not found",
			policy: access.Admin(),
			setupMocks: func(f *documentFixture) {
				f.docs.On("GetByID", mock.Anything, int64(9)).Return(nil, sql.ErrNoRows)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture()
			tt.setupMocks(f)

			rec := doRequest(f.server(tt.policy), http.MethodGet, "/api/v1/documents/9/download", nil, "parent-1")

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, pdf, rec.Body.Bytes())
				assert.Contains(t, rec.Header().Get("Content-Disposition"), "rapor.pdf")
				assert.Contains(t, rec.Header().Get("Content-Type"), "application/pdf")
			}
			f.docs.AssertExpectations(t)
		})
	}
}

func TestDocumentHandler_ListCertificates_Access(t *testing.T) {
	f := newDocumentFixture()
	rec := doRequest(f.server(access.WithIDs("advisor", []int64{1, 2})), http.MethodGet, "/api/v1/students/42/certificates", nil, "teacher-3")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.certs.AssertExpectations(t)
}
