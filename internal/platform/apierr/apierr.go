package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure independently of the transport that surfaces it.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindUpstreamPublishing Kind = "upstream_publishing"
	KindUpstream           Kind = "upstream"
	KindAuthentication     Kind = "authentication"
	KindRequestRejected    Kind = "request_rejected"
	KindConfiguration      Kind = "configuration"
	KindInterpretation     Kind = "interpretation"
	KindInternal           Kind = "internal"
)

type Error struct {
	Kind Kind
	Code string
	// Raw holds the upstream reply body, if any, for diagnostics.
	Raw string
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("%s error", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func Newf(kind Kind, code string, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Err: fmt.Errorf(format, args...)}
}

// WithRaw attaches an upstream reply body and returns e.
func (e *Error) WithRaw(raw string) *Error {
	if e != nil {
		e.Raw = raw
	}
	return e
}

func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Err: errors.New(msg)}
}

func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Err: errors.New(msg)}
}

func Configuration(code, msg string) *Error {
	return &Error{Kind: KindConfiguration, Code: code, Err: errors.New(msg)}
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e != nil && e.Kind != "" {
		return e.Kind
	}
	return KindInternal
}

// CodeOf reports the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e != nil {
		if e.Code != "" {
			return e.Code
		}
		return string(e.Kind)
	}
	return string(KindInternal)
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus is the single place where error kinds become status codes.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
