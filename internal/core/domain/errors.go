package domain

import "errors"

// ============================================================================
// Validation Errors
// ============================================================================

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrImageTooLarge     = errors.New("image exceeds the maximum allowed size")
	ErrCorruptImage      = errors.New("file is not a valid raster image")
	ErrInvalidDimensions = errors.New("image dimensions are out of the allowed range")
	ErrEmptyPatientName  = errors.New("patient name is required")
	ErrMissingUser       = errors.New("user identity is required")
)

// ============================================================================
// Gateway Errors
// ============================================================================

var (
	ErrGatewayUnreachable = errors.New("remote service unreachable")
	ErrGatewayTimeout     = errors.New("remote service timed out")
	ErrMalformedResponse  = errors.New("remote service returned a malformed response")
)

// ============================================================================
// Persistence Errors
// ============================================================================

var (
	ErrConstraintViolation = errors.New("record violates a datastore constraint")
	ErrTransactionAborted  = errors.New("datastore transaction aborted")
)

// ============================================================================
// Terminal Errors
// ============================================================================

var (
	ErrRecordNotFound = errors.New("history record not found")
	ErrForbidden      = errors.New("not allowed to access this history record")
)
