package roster

import (
	"errors"
	"net/http"
)

const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeMemberNotFound  = "MEMBER_NOT_FOUND"
)

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// InvalidArgument reports input that failed type parsing at the boundary.
func InvalidArgument(field string, reason string) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeInvalidArgument,
		Message: "invalid " + field,
		Details: map[string]any{field: reason},
	}
}

func notFound(id string) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Code:    CodeMemberNotFound,
		Message: "member not found",
		Details: map[string]any{"memberId": id},
	}
}

// IsInvalidArgument reports whether err carries CodeInvalidArgument.
func IsInvalidArgument(err error) bool {
	ae := (*Error)(nil)
	return errors.As(err, &ae) && ae.Code == CodeInvalidArgument
}

// IsNotFound reports whether err carries CodeMemberNotFound.
func IsNotFound(err error) bool {
	ae := (*Error)(nil)
	return errors.As(err, &ae) && ae.Code == CodeMemberNotFound
}
