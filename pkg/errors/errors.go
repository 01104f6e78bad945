package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a business error so callers can pick a response without
// parsing messages.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindValidation Kind = "validation"
	KindForbidden  Kind = "forbidden"
	KindInternal   Kind = "internal"
)

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrAlreadyExists        = errors.New("resource already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrTerminalState        = errors.New("resource is in a terminal state")
	ErrAlreadyPaid          = errors.New("installment is already paid")
	ErrAlreadyProcessed     = errors.New("payment is already processed")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrScheduleConflict     = errors.New("time range overlaps an existing entry")
	ErrInUse                = errors.New("resource is referenced by other records")
	ErrCapacityExceeded     = errors.New("capacity exceeded")
	ErrAccessDenied         = errors.New("access denied")
	ErrFileRejected         = errors.New("file rejected")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(kind Kind, code, message string, err error) *BusinessError {
	return &BusinessError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeAlreadyExists        = "ALREADY_EXISTS"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeTerminalState        = "TERMINAL_STATE"
	ErrCodeAlreadyPaid          = "INSTALLMENT_ALREADY_PAID"
	ErrCodeAlreadyProcessed     = "PAYMENT_ALREADY_PROCESSED"
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	ErrCodeScheduleConflict     = "SCHEDULE_CONFLICT"
	ErrCodeInUse                = "RESOURCE_IN_USE"
	ErrCodeCapacityExceeded     = "CAPACITY_EXCEEDED"
	ErrCodeAccessDenied         = "ACCESS_DENIED"
	ErrCodeFileRejected         = "FILE_REJECTED"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeStorageError         = "STORAGE_ERROR"
)

// WrapNotFound reports a missing or soft-deleted resource. resource is the
// user-facing name, e.g. "Öğrenci".
func WrapNotFound(resource string, id any) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeNotFound,
		fmt.Sprintf("%s bulunamadı (id: %v)", resource, id),
		ErrNotFound,
	)
}

func WrapAlreadyExists(resource, key string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeAlreadyExists,
		fmt.Sprintf("%s zaten mevcut: %s", resource, key),
		ErrAlreadyExists,
	)
}

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(KindValidation, ErrCodeValidation, message, ErrInvalidInput)
}

func WrapTerminalState(resource, status string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeTerminalState,
		fmt.Sprintf("%s %s durumunda, değişiklik yapılamaz", resource, status),
		ErrTerminalState,
	)
}

func WrapAlreadyPaid(installmentID int64) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeAlreadyPaid,
		fmt.Sprintf("Taksit zaten ödenmiş (id: %d)", installmentID),
		ErrAlreadyPaid,
	)
}

func WrapAlreadyProcessed(paymentID int64) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeAlreadyProcessed,
		fmt.Sprintf("Ödeme zaten işlenmiş (id: %d)", paymentID),
		ErrAlreadyProcessed,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		KindValidation,
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Geçersiz ödeme tutarı: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapScheduleConflict(message string) *BusinessError {
	return NewBusinessError(KindConflict, ErrCodeScheduleConflict, message, ErrScheduleConflict)
}

func WrapInUse(resource, reason string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeInUse,
		fmt.Sprintf("%s silinemez: %s", resource, reason),
		ErrInUse,
	)
}

func WrapCapacityExceeded(resource string, capacity int) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeCapacityExceeded,
		fmt.Sprintf("%s kapasitesi dolu (en fazla %d)", resource, capacity),
		ErrCapacityExceeded,
	)
}

func WrapAccessDenied(studentID int64) *BusinessError {
	return NewBusinessError(
		KindForbidden,
		ErrCodeAccessDenied,
		fmt.Sprintf("Bu öğrenciye erişim yetkiniz yok (id: %d)", studentID),
		ErrAccessDenied,
	)
}

func WrapFileRejected(reason string) *BusinessError {
	return NewBusinessError(KindValidation, ErrCodeFileRejected, reason, ErrFileRejected)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapStorageError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeStorageError,
		"file storage operation failed",
		err,
	)
}

// KindOf returns the kind of the first BusinessError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
