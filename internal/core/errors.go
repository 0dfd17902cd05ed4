package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNetwork           = errors.New("network error")
	ErrTimeout           = errors.New("request timed out")
	ErrAuth              = errors.New("authentication failed")
	ErrChat              = errors.New("chat request failed")
	ErrUpload            = errors.New("upload failed")
	ErrConcurrentRequest = errors.New("request already in flight")
	ErrValidation        = errors.New("invalid request")
)

type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindNetwork    ErrorKind = "network"
	KindTimeout    ErrorKind = "timeout"
	KindAuth       ErrorKind = "auth"
	KindChat       ErrorKind = "chat"
	KindUpload     ErrorKind = "upload"
	KindConcurrent ErrorKind = "concurrent"
	KindValidation ErrorKind = "validation"
	KindCanceled   ErrorKind = "canceled"
	KindUnknown    ErrorKind = "unknown"
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: http %d", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Kind, e.Status, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrChat:
		return e.Kind == KindChat
	case ErrUpload:
		return e.Kind == KindUpload
	}
	return false
}

// KindOf classifies err for display. Wrapped errors are unwrapped.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrChat):
		return KindChat
	case errors.Is(err, ErrUpload):
		return KindUpload
	case errors.Is(err, ErrConcurrentRequest):
		return KindConcurrent
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindUnknown
}
