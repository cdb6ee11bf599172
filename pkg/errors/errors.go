package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidDate               = errors.New("invalid date")
	ErrUnsupportedMembershipType = errors.New("unsupported membership type")
	ErrStoreUnavailable          = errors.New("store unavailable")
	ErrConcurrentModification    = errors.New("concurrent modification")
	ErrMemberNotFound            = errors.New("member not found")
	ErrPaymentNotFound           = errors.New("payment not found")
	ErrAlertNotFound             = errors.New("alert not found")
	ErrAdminNotFound             = errors.New("admin not found")
	ErrDuplicateMember           = errors.New("member already exists")
	ErrInvalidPaymentAmount      = errors.New("invalid payment amount")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrValidation                = errors.New("validation failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
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
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidDate               = "INVALID_DATE"
	ErrCodeUnsupportedMembershipType = "UNSUPPORTED_MEMBERSHIP_TYPE"
	ErrCodeStoreUnavailable          = "STORE_UNAVAILABLE"
	ErrCodeConcurrentModification    = "CONCURRENT_MODIFICATION"
	ErrCodeMemberNotFound            = "MEMBER_NOT_FOUND"
	ErrCodePaymentNotFound           = "PAYMENT_NOT_FOUND"
	ErrCodeAlertNotFound             = "ALERT_NOT_FOUND"
	ErrCodeAdminNotFound             = "ADMIN_NOT_FOUND"
	ErrCodeDuplicateMember           = "DUPLICATE_MEMBER"
	ErrCodeInvalidPaymentAmount      = "INVALID_PAYMENT_AMOUNT"
	ErrCodeInvalidCredentials        = "INVALID_CREDENTIALS"
	ErrCodeValidation                = "VALIDATION_ERROR"
	ErrCodeDatabaseError             = "DATABASE_ERROR"
)

// Wrap common errors with business context
func WrapInvalidDate(field, value string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDate,
		fmt.Sprintf("%s %q is not a valid calendar date", field, value),
		ErrInvalidDate,
	)
}

func WrapUnsupportedMembershipType(membershipType string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnsupportedMembershipType,
		fmt.Sprintf("membership type %q has no billing cycle", membershipType),
		ErrUnsupportedMembershipType,
	)
}

// WrapStoreUnavailable marks err as a store outage; errors.Is matches both
// ErrStoreUnavailable and the underlying cause.
func WrapStoreUnavailable(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeStoreUnavailable,
		"store is unavailable",
		errors.Join(ErrStoreUnavailable, err),
	)
}

func WrapConcurrentModification(entity, id string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentModification,
		fmt.Sprintf("%s %s was modified concurrently, retry the request", entity, id),
		ErrConcurrentModification,
	)
}

func WrapMemberNotFound(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", memberID),
		ErrMemberNotFound,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapAlertNotFound(alertID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAlertNotFound,
		fmt.Sprintf("Alert with ID %s not found", alertID),
		ErrAlertNotFound,
	)
}

func WrapAdminNotFound(adminID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAdminNotFound,
		fmt.Sprintf("Admin with ID %s not found", adminID),
		ErrAdminNotFound,
	)
}

func WrapDuplicateMember() *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateMember,
		"a member with that document or email already exists",
		ErrDuplicateMember,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapInvalidCredentials() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidCredentials,
		"invalid credentials",
		ErrInvalidCredentials,
	)
}

func WrapValidation(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		"request validation failed",
		errors.Join(ErrValidation, err),
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}
