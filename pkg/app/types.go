package app

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-mfs/internal/types"
)

// GenerationTarget represents the firmware selection across commands
type GenerationTarget struct {
	Variant string
	Major   int
	Minor   int
}

// Validate ensures the generation target names a known record layout
func (gt *GenerationTarget) Validate() error {
	if gt.Variant == "" {
		return errors.New("firmware variant is required")
	}
	if gt.Major < 0 || gt.Minor < 0 {
		return errors.New("firmware version cannot be negative")
	}
	gen, err := gt.Generation()
	if err != nil {
		return err
	}
	if _, err := gen.Layout(); err != nil {
		return err
	}
	return nil
}

// Generation converts the target into a firmware generation
func (gt *GenerationTarget) Generation() (types.Generation, error) {
	variant, err := types.ParseVariant(gt.Variant)
	if err != nil {
		return types.Generation{}, err
	}
	return types.Generation{Variant: variant, Major: gt.Major, Minor: gt.Minor}, nil
}

// String returns a string representation of the generation target
func (gt *GenerationTarget) String() string {
	return fmt.Sprintf("%s %d.%d", gt.Variant, gt.Major, gt.Minor)
}

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeImageAccess  = "IMAGE_ACCESS"
	ErrCodeStructural   = "STRUCTURAL"
	ErrCodeExport       = "EXPORT"
	ErrCodeCancelled    = "CANCELLED"
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the code of the first CommonError in err's chain
func ErrorCode(err error) string {
	var ce *CommonError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
