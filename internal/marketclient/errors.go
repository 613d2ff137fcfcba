package marketclient

import "fmt"

// APIError is a business-rule rejection from the server (4xx with a decoded
// body). It is surfaced verbatim to the caller and never retried.
type APIError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.HTTPStatus, e.Code, e.Message)
}
