package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// AnalysisError is a classified failure of one analysis stage.
type AnalysisError struct {
	Code    ErrorCode
	Stage   string
	Message string
	Cause   error
}

func (e *AnalysisError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// sentinelCodes maps domain sentinels to codes, checked in order.
var sentinelCodes = []struct {
	err  error
	code ErrorCode
}{
	{ErrNotConfigured, CodeKeyNotConfigured},
	{ErrDecryption, CodeDecryptionFailed},
	{ErrEncoding, CodeInvalidEncoding},
	{ErrUnsupportedMedia, CodeUnsupportedMedia},
	{ErrTooLarge, CodePayloadTooLarge},
	{ErrValidation, CodeInvalidInput},
	{context.DeadlineExceeded, CodeTimeout},
	{context.Canceled, CodeContextCancelled},
}

// ClassifyError wraps err in an *AnalysisError with a code derived from its
// chain. An err that already is an *AnalysisError is returned unchanged.
// Unknown errors are classified as CodeInternal.
func ClassifyError(err error, stage string) *AnalysisError {
	if err == nil {
		return nil
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}

	ae = &AnalysisError{
		Code:    CodeInternal,
		Stage:   stage,
		Message: err.Error(),
		Cause:   err,
	}
	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			ae.Code = sc.code
			return ae
		}
	}

	lower := strings.ToLower(ae.Message)
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "unavailable") || strings.Contains(lower, "no such host") {
		ae.Code = CodeScorerUnavailable
	}
	return ae
}

// CodeOf returns the code ClassifyError assigns to err.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return ClassifyError(err, "").Code
}

// IsTimeout returns true if the error classifies as a timeout.
func IsTimeout(err error) bool {
	return CodeOf(err) == CodeTimeout
}

// IsErrorRetryable returns true if the error is likely transient and worth retrying.
func IsErrorRetryable(err error) bool {
	if err == nil {
		return false
	}
	return IsRetryable(CodeOf(err))
}
