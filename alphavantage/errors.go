package alphavantage

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrParse is the mark of errors returned when the upstream body is not JSON.
var ErrParse = errors.New("response is not valid JSON")

// TransportError is returned when the upstream request did not complete
// with HTTP 200.
// StatusCode is zero for network-level failures, in which case Err holds the cause.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return "request failed: " + e.Err.Error()
	}
	return fmt.Sprintf("request failed with status code: %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ShapeError is returned when the response is valid JSON but does not carry
// a usable daily time series.
type ShapeError struct {
	// Reason describes what is missing or malformed.
	Reason string
	// Notice holds the upstream API message, if the response was a notice
	// (rate limit, invalid key or symbol) instead of data.
	Notice string
}

func (e *ShapeError) Error() string {
	if e.Notice != "" {
		return fmt.Sprintf("invalid response: %s: %s", e.Reason, e.Notice)
	}
	return "invalid response: " + e.Reason
}

// IsTransport returns true if err is a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsShape returns true if err is a ShapeError
func IsShape(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

// IsParse returns true if err was raised for a body that is not JSON
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}
