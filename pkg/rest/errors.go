package rest

import (
	"errors"
	"fmt"
	"net/http"
)

// ResponseError is returned when the task API responds with non-2xx status.
type ResponseError struct {
	// one-line description of what failed
	Summary string

	StatusCode int

	// message from the server, if any
	Detail string

	cause error
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("%s (status code = %d)", e.Summary, e.StatusCode)
	if e.Detail != "" {
		msg += "\n" + e.Detail
	}
	return msg
}

func (e *ResponseError) Unwrap() error {
	return e.cause
}

// NotFound tells whether err is a response of 404 Not Found.
func NotFound(err error) bool {
	re := new(ResponseError)
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}
