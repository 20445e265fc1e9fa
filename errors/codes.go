package errors

// ErrorCode is the machine readable error code returned by the API
type ErrorCode int32

const (
	ErrorCode_INTERNAL ErrorCode = iota
	ErrorCode_HTTP_OK
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_NOT_FOUND
	ErrorCode_UNAUTHENTICATED
	ErrorCode_PERMISSION_DENIED
	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_AUTH_TOKEN_EXPIRED
	ErrorCode_AUTH_INVALID_SIGNATURE
	ErrorCode_JOB_NOT_FOUND
	ErrorCode_JOB_QUEUE_FULL
	ErrorCode_PROCESSING_FAILED
	ErrorCode_TIMELINE_INVALID
	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED
	ErrorCode_INTEGRATION_TRANSCODER_FAILED
	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_INTERNAL:                      "INTERNAL",
	ErrorCode_HTTP_OK:                       "HTTP_OK",
	ErrorCode_INVALID_ARGUMENT:              "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:               "INVALID_PAYLOAD",
	ErrorCode_NOT_FOUND:                     "NOT_FOUND",
	ErrorCode_UNAUTHENTICATED:               "UNAUTHENTICATED",
	ErrorCode_PERMISSION_DENIED:             "PERMISSION_DENIED",
	ErrorCode_AUTH_INVALID_TOKEN:            "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:            "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_SIGNATURE:        "AUTH_INVALID_SIGNATURE",
	ErrorCode_JOB_NOT_FOUND:                 "JOB_NOT_FOUND",
	ErrorCode_JOB_QUEUE_FULL:                "JOB_QUEUE_FULL",
	ErrorCode_PROCESSING_FAILED:             "PROCESSING_FAILED",
	ErrorCode_TIMELINE_INVALID:              "TIMELINE_INVALID",
	ErrorCode_INTEGRATION_STORAGE_FAILED:    "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:      "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_TRANSCODER_FAILED: "INTEGRATION_TRANSCODER_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:          "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:               "DB_QUERY_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
