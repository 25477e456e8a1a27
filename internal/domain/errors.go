package domain

import "errors"

// Domain errors represent business-level errors that can occur in the system.
// These errors are used across layers to communicate specific failure conditions.
var (
	// Configuration errors
	ErrNoCredentials = errors.New("no credentials found for the registry")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Data errors
	ErrMalformedCatalog   = errors.New("malformed image-info catalog")
	ErrInvalidBatch       = errors.New("invalid EOL digest batch")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidPathPattern = errors.New("invalid dockerfile path pattern")

	// Annotation errors
	ErrAnnotationFailures = errors.New("failed to annotate digests for EOL")

	// History errors
	ErrRunNotFound = errors.New("annotation run not found")
)
