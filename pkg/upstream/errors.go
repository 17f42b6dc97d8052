// Package upstream holds the transport and error type shared by the clients
// for the external extraction and matching services.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Error reports a non-success answer from an external service. StatusCode
// and Body are the upstream values, kept verbatim so callers can relay them.
type Error struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: upstream status %d: %s", e.Service, e.StatusCode, e.Body)
}

// NewError builds an upstream error for service.
func NewError(service string, statusCode int, body string) *Error {
	return &Error{Service: service, StatusCode: statusCode, Body: body}
}

// BadGateway reports a response that could not be used at all (unreachable
// service, undecodable body) as a 502 carrying reason as its body.
func BadGateway(service string, reason error) *Error {
	return &Error{Service: service, StatusCode: http.StatusBadGateway, Body: reason.Error()}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// IsSuccess reports whether statusCode is a 2xx.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
