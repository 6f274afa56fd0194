package core

import (
	"errors"
	"fmt"
)

// DomainError is the single error type of the domain layer.
//
// Module names where the error was raised (store, feature, model ...), Code
// classifies it, Message is human readable. Cause, when set, is the wrapped
// lower-level error and is reachable through errors.Unwrap.
type DomainError struct {
	Code    string
	Message string
	Module  string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError with the same module and code, so sentinel
// values such as ErrNoMoreCities work with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError reports whether err (or anything it wraps) is a DomainError.
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError returns the first DomainError in err's chain, or nil.
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError creates a new domain error.
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error carrying cause.
func WrapDomainError(module, code, message string, cause error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error codes.
const (
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeNotSupported    = "NOT_SUPPORTED"
	ErrorCodeUnavailable     = "UNAVAILABLE"
	ErrorCodeInvalidInput    = "INVALID_INPUT"
	ErrorCodeInternalError   = "INTERNAL_ERROR"
	ErrorCodeUnknownCategory = "UNKNOWN_CATEGORY"
	ErrorCodeShapeMismatch   = "SHAPE_MISMATCH"
)

// Module names.
const (
	ModuleStore   = "store"
	ModuleFeature = "feature"
	ModuleModel   = "model"
	ModuleCatalog = "catalog"
	ModuleRank    = "rank"
	ModuleService = "service"
)

var (
	// ErrNoMoreCities is returned by next-city ranking once every catalog
	// city has been swiped by the user.
	ErrNoMoreCities = NewDomainError(ModuleRank, ErrorCodeNotFound, "rank: no more cities")

	// ErrCityNotFound is returned when a city id is not part of the catalog.
	ErrCityNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: city not found")
)

// NewUnknownCategoryError reports a scalar categorical value that was not
// seen when the encoder was fitted.
func NewUnknownCategoryError(field, value string) *DomainError {
	return NewDomainError(ModuleFeature, ErrorCodeUnknownCategory,
		fmt.Sprintf("feature: unknown category %q for field %q", value, field))
}

// NewShapeMismatchError reports a dimension disagreement between the encoder,
// the inference artifact or the catalog.
func NewShapeMismatchError(module, what string, want, got int) *DomainError {
	return NewDomainError(module, ErrorCodeShapeMismatch,
		fmt.Sprintf("%s: shape mismatch for %s: want %d, got %d", module, what, want, got))
}

// IsNotFound reports whether err is a NOT_FOUND domain error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported reports whether err is a NOT_SUPPORTED domain error.
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable reports whether err is an UNAVAILABLE domain error.
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsInvalidInput reports whether err is an INVALID_INPUT domain error.
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsUnknownCategory reports whether err is an UNKNOWN_CATEGORY domain error.
func IsUnknownCategory(err error) bool {
	return hasCode(err, ErrorCodeUnknownCategory)
}

// IsShapeMismatch reports whether err is a SHAPE_MISMATCH domain error.
func IsShapeMismatch(err error) bool {
	return hasCode(err, ErrorCodeShapeMismatch)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}
