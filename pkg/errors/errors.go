// Package errors provides the domain error types shared across moodsense.
//
// Sentinel errors describe conditions callers branch on; wrap them with %w
// and test with the Is helpers:
//
//	import apperrors "github.com/otherjamesbrown/moodsense/pkg/errors"
//
//	return fmt.Errorf("upload %q: %w", name, apperrors.ErrUnsupportedMedia)
//
//	if apperrors.IsUnsupportedMedia(err) {
//	    // reject with 400
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")

	// ErrUnsupportedMedia indicates an upload with the wrong file type or content type.
	ErrUnsupportedMedia = errors.New("unsupported media")

	// ErrEncoding indicates input that is not valid UTF-8 text.
	ErrEncoding = errors.New("invalid text encoding")

	// ErrDecryption indicates an encrypted payload that could not be opened.
	ErrDecryption = errors.New("decryption failed")

	// ErrNotConfigured indicates a required key or setting is missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrTooLarge indicates input above the configured size limit.
	ErrTooLarge = errors.New("input too large")
)

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnsupportedMedia reports whether any error in err's chain is ErrUnsupportedMedia.
func IsUnsupportedMedia(err error) bool {
	return errors.Is(err, ErrUnsupportedMedia)
}

// IsEncoding reports whether any error in err's chain is ErrEncoding.
func IsEncoding(err error) bool {
	return errors.Is(err, ErrEncoding)
}

// IsDecryption reports whether any error in err's chain is ErrDecryption.
func IsDecryption(err error) bool {
	return errors.Is(err, ErrDecryption)
}

// IsNotConfigured reports whether any error in err's chain is ErrNotConfigured.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsTooLarge reports whether any error in err's chain is ErrTooLarge.
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}
