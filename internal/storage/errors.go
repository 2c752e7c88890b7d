package storage

import (
	"context"
	"errors"

	"image-cropper/internal/datauri"
)

var (
	ErrInvalidFormat      = datauri.ErrInvalidFormat
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrInvalidPayload     = errors.New("invalid base64 payload")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidTarget      = errors.New("invalid storage target")
	ErrConflict           = errors.New("file already exists")
)

type ErrorCode string

const (
	CodeInvalidFormat      ErrorCode = "INVALID_FORMAT"
	CodePayloadTooLarge    ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeInvalidPayload     ErrorCode = "INVALID_PAYLOAD"
	CodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	CodeInvalidTarget      ErrorCode = "INVALID_TARGET"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeCanceled           ErrorCode = "CANCELED"
	CodeUnknown            ErrorCode = "UNKNOWN"
)

// Code maps an error returned by this package to its taxonomy label.
func Code(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return CodeInvalidFormat
	case errors.Is(err, ErrPayloadTooLarge):
		return CodePayloadTooLarge
	case errors.Is(err, ErrInvalidPayload):
		return CodeInvalidPayload
	case errors.Is(err, ErrStorageUnavailable):
		return CodeStorageUnavailable
	case errors.Is(err, ErrInvalidTarget):
		return CodeInvalidTarget
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	}
	return CodeUnknown
}
