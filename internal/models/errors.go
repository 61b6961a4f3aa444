package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the application.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodePhase            = "PHASE_ERROR"
	CodeDuplicateVote    = "DUPLICATE_VOTE"
	CodeSelfResponse     = "SELF_RESPONSE"
	CodeNoResponder      = "NO_RESPONDER"
	CodeAlreadyEnded     = "ALREADY_ENDED"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewPhaseError rejects an operation attempted outside its valid war or entry phase.
func NewPhaseError(phase, action string) *AppError {
	return &AppError{
		Code:    CodePhase,
		Message: fmt.Sprintf("Cannot %s while war is in %s phase", action, phase),
	}
}

func NewDuplicateVoteError(entryID, voterID uint) *AppError {
	return &AppError{
		Code:    CodeDuplicateVote,
		Message: fmt.Sprintf("User %d already voted on battle %d", voterID, entryID),
	}
}

func NewSelfResponseError(entryID uint) *AppError {
	return &AppError{
		Code:    CodeSelfResponse,
		Message: fmt.Sprintf("Cannot respond to your own meme on battle %d", entryID),
	}
}

func NewNoResponderError(entryID uint) *AppError {
	return &AppError{
		Code:    CodeNoResponder,
		Message: fmt.Sprintf("Battle %d has no responder yet", entryID),
	}
}

func NewAlreadyEndedError(warID uint) *AppError {
	return &AppError{
		Code:    CodeAlreadyEnded,
		Message: fmt.Sprintf("Meme war %d has already ended", warID),
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewStoreUnavailableError wraps a collaborator I/O failure. It is the only
// error kind eligible for caller-side retry.
func NewStoreUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeStoreUnavailable,
		Message: "Storage temporarily unavailable",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// AsAppError unwraps err into target if it is (or wraps) an AppError.
func AsAppError(err error, target **AppError) bool {
	return errors.As(err, target)
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
