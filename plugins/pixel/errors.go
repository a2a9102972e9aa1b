package pixel

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type CodeType uint16

const (
	CodeOK                    CodeType = 0
	CodeInvalidAccount        CodeType = 1
	CodeInvalidColorComponent CodeType = 2
	CodeInvalidPosition       CodeType = 3
	CodeLookupFailed          CodeType = 4
	CodeUnexpected            CodeType = 5
	CodeMalformedBody         CodeType = 6
)

func (code CodeType) String() string {
	switch code {
	case CodeOK:
		return "OK"
	case CodeInvalidAccount:
		return "InvalidAccount"
	case CodeInvalidColorComponent:
		return "InvalidColorComponent"
	case CodeInvalidPosition:
		return "InvalidPosition"
	case CodeLookupFailed:
		return "LookupFailed"
	case CodeMalformedBody:
		return "MalformedBody"
	default:
		return "UnexpectedError"
	}
}

// HTTPStatus is the status an action endpoint answers with for the code.
func (code CodeType) HTTPStatus() int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidAccount, CodeInvalidColorComponent, CodeInvalidPosition, CodeMalformedBody:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded failure of the pixel action pipeline.
type Error struct {
	code  CodeType
	msg   string
	cause error
}

func (err *Error) Error() string {
	if err.cause != nil {
		return fmt.Sprintf("%s: %s: %v", err.code, err.msg, err.cause)
	}
	return fmt.Sprintf("%s: %s", err.code, err.msg)
}

func (err *Error) Code() CodeType { return err.code }

func (err *Error) Unwrap() error { return err.cause }

func newError(code CodeType, cause error, msg string) *Error {
	return &Error{code: code, msg: msg, cause: cause}
}

func ErrInvalidAccount(msg string) *Error {
	return newError(CodeInvalidAccount, nil, msg)
}

func ErrInvalidColorComponent(msg string) *Error {
	return newError(CodeInvalidColorComponent, nil, msg)
}

func ErrInvalidPosition(msg string) *Error {
	return newError(CodeInvalidPosition, nil, msg)
}

// ErrMalformedBody covers request bodies that are unreadable, oversized or not json.
func ErrMalformedBody(msg string) *Error {
	return newError(CodeMalformedBody, nil, msg)
}

func ErrLookupFailed(cause error, msg string) *Error {
	return newError(CodeLookupFailed, cause, msg)
}

func ErrUnexpected(cause error, msg string) *Error {
	return newError(CodeUnexpected, cause, msg)
}

// CodeOf returns the code carried by err or anything it wraps. Errors that
// carry no code are unexpected.
func CodeOf(err error) CodeType {
	if err == nil {
		return CodeOK
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.code
	}
	return CodeUnexpected
}
