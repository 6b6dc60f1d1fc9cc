package errors

import "net/http"

// ErrorCode is the machine-readable classification of a failure. It is
// returned to HTTP clients in the "code" field of error bodies.
type ErrorCode string

const (
	CodeInvalidInput      ErrorCode = "invalid_input"
	CodeUnsupportedMedia  ErrorCode = "unsupported_media"
	CodeInvalidEncoding   ErrorCode = "invalid_encoding"
	CodeDecryptionFailed  ErrorCode = "decryption_failed"
	CodeKeyNotConfigured  ErrorCode = "key_not_configured"
	CodePayloadTooLarge   ErrorCode = "payload_too_large"
	CodeTimeout           ErrorCode = "timeout"
	CodeContextCancelled  ErrorCode = "context_cancelled"
	CodeScorerUnavailable ErrorCode = "scorer_unavailable"
	CodeInternal          ErrorCode = "internal_error"
)

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code            ErrorCode
	HTTPStatus      int
	Retryable       bool
	Description     string
	SuggestedAction string
}

// ErrorCodeRegistry maps error codes to their metadata.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	CodeInvalidInput: {
		Code:            CodeInvalidInput,
		HTTPStatus:      http.StatusBadRequest,
		Description:     "Request is malformed or missing required fields",
		SuggestedAction: "Check the request body against the API documentation",
	},
	CodeUnsupportedMedia: {
		Code:            CodeUnsupportedMedia,
		HTTPStatus:      http.StatusBadRequest,
		Description:     "Upload is not a .txt chat export",
		SuggestedAction: "Export the chat without media and upload the .txt file",
	},
	CodeInvalidEncoding: {
		Code:            CodeInvalidEncoding,
		HTTPStatus:      http.StatusBadRequest,
		Description:     "Chat export is not valid UTF-8 text",
		SuggestedAction: "Re-export the chat or convert the file to UTF-8",
	},
	CodeDecryptionFailed: {
		Code:            CodeDecryptionFailed,
		HTTPStatus:      http.StatusBadRequest,
		Description:     "Encrypted payload could not be decrypted",
		SuggestedAction: "Fetch the current key from /api/v1/public-key and encrypt again",
	},
	CodeKeyNotConfigured: {
		Code:            CodeKeyNotConfigured,
		HTTPStatus:      http.StatusServiceUnavailable,
		Description:     "Server encryption key is not configured",
		SuggestedAction: "Set SERVER_PRIVATE_KEY or run: moodsense keygen --store-keyring",
	},
	CodePayloadTooLarge: {
		Code:            CodePayloadTooLarge,
		HTTPStatus:      http.StatusRequestEntityTooLarge,
		Description:     "Upload exceeds the maximum accepted size",
		SuggestedAction: "Split the export or raise server.max_upload_bytes",
	},
	CodeTimeout: {
		Code:            CodeTimeout,
		HTTPStatus:      http.StatusGatewayTimeout,
		Retryable:       true,
		Description:     "Analysis exceeded the request time limit",
		SuggestedAction: "Retry, or raise server.request_timeout for large chats",
	},
	CodeContextCancelled: {
		Code:            CodeContextCancelled,
		HTTPStatus:      499,
		Description:     "Analysis cancelled by the client or the server",
		SuggestedAction: "Check whether the cancellation was intentional",
	},
	CodeScorerUnavailable: {
		Code:            CodeScorerUnavailable,
		HTTPStatus:      http.StatusInternalServerError,
		Retryable:       true,
		Description:     "Emotion scorer could not be reached",
		SuggestedAction: "Check scorer health and retry",
	},
	CodeInternal: {
		Code:            CodeInternal,
		HTTPStatus:      http.StatusInternalServerError,
		Description:     "Unclassified processing error",
		SuggestedAction: "Check server logs for the request ID",
	},
}

// IsRetryable returns true if the given error code represents a transient, retryable error.
func IsRetryable(code ErrorCode) bool {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Retryable
	}
	return false
}

// HTTPStatus returns the HTTP status for the code, 500 when unknown.
func HTTPStatus(code ErrorCode) int {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.HTTPStatus
	}
	return http.StatusInternalServerError
}

// GetSuggestedAction returns the suggested action for the given error code.
func GetSuggestedAction(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.SuggestedAction
	}
	return "Check server logs for more details"
}

// GetDescription returns the human-readable description for the given error code.
func GetDescription(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Description
	}
	return "Unknown error"
}
