package errors

import "net/http"

// ErrorCode is a typed string identifying a failure category.  Codes are
// grouped by subsystem prefix:
//
//	COMMON_*  cross-cutting conditions
//	NRM_*     name normalization
//	CLS_*     relevance classification
//	TBL_*     markdown table extraction
//	VAL_*     row validation
//	DSC_*     discovery orchestration
//	AGT_*     LLM and search collaborators
//	DB_*      persistence
//	SES_*     session management
type ErrorCode string

// ─────────────────────────────────────────────────────────────────────────────
// Common codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	CodeOK      ErrorCode = "COMMON_000"
	CodeUnknown ErrorCode = "COMMON_001"

	ErrCodeInternal           ErrorCode = "COMMON_002"
	ErrCodeBadRequest         ErrorCode = "COMMON_003"
	ErrCodeNotFound           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeCanceled           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
	ErrCodeConfigInvalid      ErrorCode = "COMMON_008"
)

// ─────────────────────────────────────────────────────────────────────────────
// Domain codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	// Normalization
	ErrCodeEmptyAPIName ErrorCode = "NRM_001"

	// Classification
	ErrCodeInvalidPolicy ErrorCode = "CLS_001"

	// Markdown table extraction
	ErrCodeTableNotFound  ErrorCode = "TBL_001"
	ErrCodeTableMalformed ErrorCode = "TBL_002"

	// Row validation
	ErrCodeValidationPolicy ErrorCode = "VAL_001"
	ErrCodeMissingColumns   ErrorCode = "VAL_002"

	// Discovery orchestration
	ErrCodeDiscoveryFailed  ErrorCode = "DSC_001"
	ErrCodeDiscoveryStopped ErrorCode = "DSC_002"
	ErrCodeNoAgentsLeft     ErrorCode = "DSC_003"

	// LLM / search collaborators
	ErrCodeAgentRequest    ErrorCode = "AGT_001"
	ErrCodeAgentResponse   ErrorCode = "AGT_002"
	ErrCodeAgentRateLimit  ErrorCode = "AGT_003"
	ErrCodeSearchRequest   ErrorCode = "AGT_004"
	ErrCodeRetriesExceeded ErrorCode = "AGT_005"

	// Persistence
	ErrCodeDatabaseError   ErrorCode = "DB_001"
	ErrCodeRecordNotFound  ErrorCode = "DB_002"
	ErrCodeMigrationFailed ErrorCode = "DB_003"

	// Sessions
	ErrCodeSessionNotFound ErrorCode = "SES_001"
	ErrCodeSessionStore    ErrorCode = "SES_002"
)

// httpStatusByCode maps error codes to HTTP status codes for the REST layer.
// Codes absent from the map default to 500.
var httpStatusByCode = map[ErrorCode]int{
	CodeOK:                    http.StatusOK,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeRecordNotFound:     http.StatusNotFound,
	ErrCodeSessionNotFound:    http.StatusNotFound,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeCanceled:           http.StatusRequestTimeout,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeAgentRateLimit:     http.StatusTooManyRequests,
	ErrCodeEmptyAPIName:       http.StatusBadRequest,
	ErrCodeValidationPolicy:   http.StatusUnprocessableEntity,
	ErrCodeMissingColumns:     http.StatusUnprocessableEntity,
	ErrCodeTableNotFound:      http.StatusUnprocessableEntity,
}

// defaultMessageByCode supplies a fallback message when a handler has nothing
// better to say.
var defaultMessageByCode = map[ErrorCode]string{
	CodeUnknown:               "unknown error",
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "invalid request parameters",
	ErrCodeNotFound:           "resource not found",
	ErrCodeTimeout:            "operation timed out",
	ErrCodeCanceled:           "operation canceled",
	ErrCodeServiceUnavailable: "service temporarily unavailable",
	ErrCodeConfigInvalid:      "invalid configuration",
	ErrCodeEmptyAPIName:       "api name must not be empty",
	ErrCodeTableNotFound:      "no markdown table found in response",
	ErrCodeValidationPolicy:   "validation policy is malformed",
	ErrCodeDiscoveryFailed:    "discovery run failed",
	ErrCodeDiscoveryStopped:   "discovery stopped by caller",
	ErrCodeAgentRequest:       "agent request failed",
	ErrCodeAgentResponse:      "agent returned an unusable response",
	ErrCodeRetriesExceeded:    "retry attempts exhausted",
	ErrCodeDatabaseError:      "database operation failed",
	ErrCodeRecordNotFound:     "record not found",
	ErrCodeMigrationFailed:    "schema migration failed",
	ErrCodeSessionNotFound:    "session not found",
	ErrCodeSessionStore:       "session store failure",
}

// HTTPStatus returns the HTTP status code associated with code,
// defaulting to 500 for unmapped codes.
func HTTPStatus(code ErrorCode) int {
	if s, ok := httpStatusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// DefaultMessage returns the fallback message for code, or a generic string
// when the code has no registered message.
func DefaultMessage(code ErrorCode) string {
	if m, ok := defaultMessageByCode[code]; ok {
		return m
	}
	return "unexpected error"
}

//Personal.AI order the ending
