// Package businessflow contains the core business logic and use cases for subscription onboarding workflows
package businessflow

import (
	"errors"
	"fmt"
	"strings"
)

// Business flow error constants
var (
	// Structural mutation errors
	ErrLastAccount            = errors.New("the last account cannot be deleted")
	ErrLastPlan               = errors.New("the last subscription plan of an account cannot be removed")
	ErrAccountIndexOutOfRange = errors.New("account index out of range")
	ErrPlanNotFound           = errors.New("subscription plan not found")
	ErrMemberNotFound         = errors.New("member not found")

	// Collection cap errors
	ErrAccessCodeLimitReached   = errors.New("member already has the maximum number of access codes")
	ErrAssignedUnitLimitReached = errors.New("member already has an assigned unit")
	ErrVehicleLimitReached      = errors.New("member already has the maximum number of vehicles")

	// Export errors
	ErrValidationFailed = errors.New("validation failed")

	// Import errors
	ErrImportInProgress       = errors.New("an import is already in progress")
	ErrMissingRequiredColumns = errors.New("required columns are missing")
	ErrEmptyImport            = errors.New("import file contains no data rows")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ImportRowError identifies one rejected import row. Row numbers are
// 1-indexed over data rows, header excluded.
type ImportRowError struct {
	Row   int
	Value string
}

func (e ImportRowError) String() string {
	return fmt.Sprintf("Row %d: %q", e.Row, e.Value)
}

// ImportReferenceError rejects a whole import batch because one or more rows
// referenced a subscription plan ID that does not exist on the selected
// account. No partial state change happens.
type ImportReferenceError struct {
	Rows []ImportRowError
}

func (e *ImportReferenceError) Error() string {
	lines := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		lines[i] = r.String()
	}
	return "unknown subscription plan id: " + strings.Join(lines, "; ")
}

// Report returns the per-row rejection lines for presentation.
func (e *ImportReferenceError) Report() []string {
	lines := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		lines[i] = r.String()
	}
	return lines
}

func IsLastAccount(err error) bool {
	return errors.Is(err, ErrLastAccount)
}

func IsLastPlan(err error) bool {
	return errors.Is(err, ErrLastPlan)
}

func IsAccountIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrAccountIndexOutOfRange)
}

func IsPlanNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound)
}

func IsMemberNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}

func IsCollectionLimitReached(err error) bool {
	return errors.Is(err, ErrAccessCodeLimitReached) ||
		errors.Is(err, ErrAssignedUnitLimitReached) ||
		errors.Is(err, ErrVehicleLimitReached)
}

func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

func IsImportInProgress(err error) bool {
	return errors.Is(err, ErrImportInProgress)
}

func IsMissingRequiredColumns(err error) bool {
	return errors.Is(err, ErrMissingRequiredColumns)
}

func IsEmptyImport(err error) bool {
	return errors.Is(err, ErrEmptyImport)
}

func IsImportReferenceError(err error) bool {
	var refErr *ImportReferenceError
	return errors.As(err, &refErr)
}

// AsImportReferenceError unwraps the referential report, nil when err is not one.
func AsImportReferenceError(err error) *ImportReferenceError {
	var refErr *ImportReferenceError
	if errors.As(err, &refErr) {
		return refErr
	}
	return nil
}
