// Package errors provides unified error handling with stable error codes.
// Codes are shared by the console, the log output and the event feed.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code identifies a class of failure.
type Code string

const (
	Unknown                 Code = "UNKNOWN"
	Internal                Code = "INTERNAL"
	InvalidArgument         Code = "INVALID_ARGUMENT"
	Unavailable             Code = "UNAVAILABLE"
	Timeout                 Code = "TIMEOUT"
	RateLimited             Code = "RATE_LIMITED"
	ConfigInvalid           Code = "CONFIG_INVALID"
	SummarizerNotConfigured Code = "SUMMARIZER_NOT_CONFIGURED"
	SummarizerAPIError      Code = "SUMMARIZER_API_ERROR"
	SpeechNotConfigured     Code = "SPEECH_NOT_CONFIGURED"
	SpeechAPIError          Code = "SPEECH_API_ERROR"
	AudioWaitTimeout        Code = "AUDIO_WAIT_TIMEOUT"
	AudioUnrecognized       Code = "AUDIO_UNRECOGNIZED"
	AudioDevice             Code = "AUDIO_DEVICE"
	ScreenCaptureFailed     Code = "SCREEN_CAPTURE_FAILED"
	VideoEncodeFailed       Code = "VIDEO_ENCODE_FAILED"
)

// httpCodeMap maps upstream HTTP statuses to error codes.
var httpCodeMap = map[int]Code{
	http.StatusBadRequest:          InvalidArgument,
	http.StatusUnauthorized:        ConfigInvalid,
	http.StatusForbidden:           ConfigInvalid,
	http.StatusNotFound:            ConfigInvalid,
	http.StatusRequestTimeout:      Timeout,
	http.StatusTooManyRequests:     RateLimited,
	http.StatusInternalServerError: Internal,
	http.StatusBadGateway:          Unavailable,
	http.StatusServiceUnavailable:  Unavailable,
	http.StatusGatewayTimeout:      Timeout,
}

// grpcCodeMap maps upstream gRPC status codes to error codes.
var grpcCodeMap = map[codes.Code]Code{
	codes.InvalidArgument:   InvalidArgument,
	codes.Unauthenticated:   ConfigInvalid,
	codes.PermissionDenied:  ConfigInvalid,
	codes.NotFound:          ConfigInvalid,
	codes.DeadlineExceeded:  Timeout,
	codes.ResourceExhausted: RateLimited,
	codes.Unavailable:       Unavailable,
	codes.Aborted:           Unavailable,
	codes.Internal:          Internal,
}

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// FromHTTPStatus builds an AppError for a non-2xx upstream response.
// fallback is used for statuses without a dedicated mapping.
func FromHTTPStatus(status int, fallback Code, body string) *AppError {
	code, ok := httpCodeMap[status]
	if !ok {
		code = fallback
		if status >= 500 {
			code = Unavailable
		}
	}
	return Newf(code, "upstream returned status %d: %s", status, body).
		WithMetadata("status", fmt.Sprint(status))
}

// FromGRPCStatus builds an AppError for a failed gRPC call. AppErrors pass
// through unchanged; statuses without a dedicated mapping use fallback.
func FromGRPCStatus(err error, fallback Code) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	st, ok := status.FromError(err)
	if !ok {
		return Wrap(err, fallback, "upstream call failed")
	}
	code, mapped := grpcCodeMap[st.Code()]
	if !mapped {
		code = fallback
	}
	return Wrapf(err, code, "upstream returned %s: %s", st.Code(), st.Message()).
		WithMetadata("grpc_code", st.Code().String())
}

// CodeOf returns the code of the first AppError in err's chain, or Unknown.
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return Unknown
}

// IsCode checks if an error chain carries a specific error code.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsRetryable returns true if the error is potentially retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case Unavailable, Timeout, RateLimited:
		return true
	default:
		return false
	}
}
