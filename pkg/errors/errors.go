package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeConflict    Code = "CONFLICT"
	CodeIdempotency Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit   Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal    Code = "INTERNAL_ERROR"
	CodeDependency  Code = "DEPENDENCY_ERROR"

	CodeInvalidRange       Code = "INVALID_RANGE"
	CodeItemNotAvailable   Code = "ITEM_NOT_AVAILABLE"
	CodeUnknownState       Code = "UNKNOWN_STATE"
	CodeCommentNotAllowed  Code = "COMMENT_NOT_ALLOWED"
	CodeStatusAlreadyFinal Code = "STATUS_ALREADY_FINAL"

	CodeUserNotFound    Code = "USER_NOT_FOUND"
	CodeItemNotFound    Code = "ITEM_NOT_FOUND"
	CodeBookingNotFound Code = "BOOKING_NOT_FOUND"
	CodeRequestNotFound Code = "REQUEST_NOT_FOUND"

	// Ownership failures map to 404.
	CodeSelfBooking  Code = "SELF_BOOKING_FORBIDDEN"
	CodeNotItemOwner Code = "NOT_ITEM_OWNER"
	CodeAccessDenied Code = "ACCESS_DENIED"

	CodeDuplicateEmail Code = "DUPLICATE_EMAIL"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func badRequest(msg string, details bool) Metadata {
	return Metadata{HTTPStatus: http.StatusBadRequest, PublicMessage: msg, DetailsAllowed: details}
}

func notFound(msg string) Metadata {
	return Metadata{HTTPStatus: http.StatusNotFound, PublicMessage: msg}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:         badRequest("validation failed", true),
	CodeInvalidRange:       badRequest("booking start must be before end", false),
	CodeItemNotAvailable:   badRequest("item is not available for booking", false),
	CodeUnknownState:       badRequest("unknown booking state", false),
	CodeCommentNotAllowed:  badRequest("comment allowed only after a completed booking", false),
	CodeStatusAlreadyFinal: badRequest("booking status already decided", false),

	CodeNotFound:        notFound("resource not found"),
	CodeUserNotFound:    notFound("user not found"),
	CodeItemNotFound:    notFound("item not found"),
	CodeBookingNotFound: notFound("booking not found"),
	CodeRequestNotFound: notFound("item request not found"),
	CodeSelfBooking:     notFound("owner cannot book own item"),
	CodeNotItemOwner:    notFound("user is not the item owner"),
	CodeAccessDenied:    notFound("booking not visible to user"),

	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "conflict detected",
	},
	CodeDuplicateEmail: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "email already registered",
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		Retryable:     false,
		PublicMessage: "rate limit exceeded",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
	},
	CodeDependency: {
		HTTPStatus:    http.StatusServiceUnavailable,
		Retryable:     true,
		PublicMessage: "dependency unavailable",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Public reports whether the error message may be shown to API clients.
func (c Code) Public() bool {
	switch c {
	case CodeInternal, CodeDependency, "":
		return false
	}
	_, known := metadataByCode[c]
	return known
}

// Wire is the code written to the response. Private codes collapse to INTERNAL_ERROR,
// except DEPENDENCY_ERROR which clients use to tell outages apart.
func (c Code) Wire() Code {
	switch {
	case c.Public(), c == CodeDependency:
		return c
	}
	return CodeInternal
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
