package xero

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoCredentials means no Xero connection has been made yet (or the stored
// token was removed). Fatal for the current request.
var ErrNoCredentials = errors.New("xero: no credentials stored")

// APIError is a non-2xx response from the Xero API. The body is kept so
// validation failures can be diagnosed from the logs.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("xero: status %d: %s", e.StatusCode, e.Body)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
