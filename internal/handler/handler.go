package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/school-portal/internal/access"
	"github.com/segyhp/school-portal/internal/domain"
	customError "github.com/segyhp/school-portal/pkg/errors"
	"github.com/segyhp/school-portal/pkg/logger"
	"github.com/segyhp/school-portal/pkg/response"
)

// PolicyResolver picks the access policy for a caller.
type PolicyResolver interface {
	Resolve(ctx context.Context, userID string) (access.Policy, error)
}

// NewValidator returns a validator that understands decimal amounts and
// payment methods and reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return domain.IsValidPaymentMethod(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type base struct {
	validate *validator.Validate
	policies PolicyResolver
}

func newBase(policies PolicyResolver) base {
	return base{validate: NewValidator(), policies: policies}
}

// decode reads a JSON body into dst and runs the struct validation tags. An
// empty body decodes to the zero request.
func (b base) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return customError.WrapValidation("Geçersiz istek gövdesi")
	}
	return b.check(dst)
}

func (b base) check(dst interface{}) error {
	if err := b.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s alanı geçersiz (%s)", fe.Field(), fe.Tag()))
			}
			return customError.WrapValidation(strings.Join(msgs, "; "))
		}
		return customError.WrapValidation(err.Error())
	}
	return nil
}

// authorize fails unless the caller may see studentID.
func (b base) authorize(ctx context.Context, studentID int64) error {
	policy, err := b.policies.Resolve(ctx, CallerID(ctx))
	if err != nil {
		return err
	}
	return access.Authorize(ctx, policy, studentID)
}

// scope authorizes a list filtered by an optional student. Restricted
// callers must name a student they can see.
func (b base) scope(ctx context.Context, studentID *int64) error {
	if studentID != nil {
		return b.authorize(ctx, *studentID)
	}
	policy, err := b.policies.Resolve(ctx, CallerID(ctx))
	if err != nil {
		return err
	}
	_, all, err := policy.AccessibleStudentIDs(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if !all {
		return customError.NewBusinessError(
			customError.KindForbidden,
			customError.ErrCodeAccessDenied,
			"Öğrenci belirtilmeden listeleme yetkiniz yok",
			customError.ErrAccessDenied,
		)
	}
	return nil
}

// visibleOnly drops installments of students the caller cannot see.
func (b base) visibleOnly(ctx context.Context, items []*domain.OverdueInstallment) ([]*domain.OverdueInstallment, error) {
	policy, err := b.policies.Resolve(ctx, CallerID(ctx))
	if err != nil {
		return nil, err
	}
	ids, all, err := policy.AccessibleStudentIDs(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if all {
		return items, nil
	}
	out := make([]*domain.OverdueInstallment, 0, len(items))
	for _, item := range items {
		if slices.Contains(ids, item.StudentID) {
			out = append(out, item)
		}
	}
	return out, nil
}

// writeError maps a service error to a status. Anything that is not a known
// business failure is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		status := 0
		switch be.Kind {
		case customError.KindNotFound:
			status = http.StatusNotFound
		case customError.KindConflict:
			status = http.StatusConflict
		case customError.KindValidation:
			status = http.StatusBadRequest
		case customError.KindForbidden:
			status = http.StatusForbidden
		}
		if status != 0 {
			response.Error(w, status, be.Code, be.Message)
			return
		}
	}

	logger.Error(r.Context()).
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request failed")
	response.InternalServerError(w)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, customError.WrapValidation(fmt.Sprintf("Geçersiz %s: %q", name, raw))
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, customError.WrapValidation(fmt.Sprintf("Geçersiz %s: %q", name, raw))
	}
	return n, nil
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return nil, customError.WrapValidation(fmt.Sprintf("Geçersiz %s: %q", name, raw))
	}
	return &n, nil
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// queryDate accepts YYYY-MM-DD or RFC 3339.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, customError.WrapValidation(fmt.Sprintf("Geçersiz %s: %q", name, raw))
}

func pageParams(r *http.Request) (domain.PageRequest, error) {
	page, err := queryInt(r, "page")
	if err != nil {
		return domain.PageRequest{}, err
	}
	size, err := queryInt(r, "page_size")
	if err != nil {
		return domain.PageRequest{}, err
	}
	return domain.PageRequest{Page: page, PageSize: size}, nil
}

func writePage[T any](w http.ResponseWriter, p domain.PageResult[T]) {
	response.Paged(w, p.Items, response.Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
	})
}

// studentPage reads the student path id and paging, checking the caller may
// see that student.
func (b base) studentPage(w http.ResponseWriter, r *http.Request) (int64, domain.PageRequest, bool) {
	studentID, err := pathID(r, "studentId")
	if err != nil {
		writeError(w, r, err)
		return 0, domain.PageRequest{}, false
	}
	page, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return 0, domain.PageRequest{}, false
	}
	if err := b.authorize(r.Context(), studentID); err != nil {
		writeError(w, r, err)
		return 0, domain.PageRequest{}, false
	}
	return studentID, page, true
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}
