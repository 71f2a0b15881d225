package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrImageNotReady is returned while the image is still being generated
	ErrImageNotReady = errors.New("the image is not complete")
	// ErrTimeExpired is returned when the image did not finish within the wait limit
	ErrTimeExpired = errors.New("time expired without image finishing")
	// ErrInvalidHeader is returned when the API key cannot be used as a header value
	ErrInvalidHeader = errors.New("invalid header value")

	ErrInvalidStepAmount  = errors.New("invalid step amount")
	ErrInvalidModel       = errors.New("invalid model")
	ErrInvalidSize        = errors.New("invalid size")
	ErrInvalidOrientation = errors.New("invalid orientation")

	// ErrInvalidRawImage is returned when the raw payload has no data URI separator
	ErrInvalidRawImage = errors.New("invalid raw image data")
)

// UnexpectedStatusError is returned when the API answers with a status code
// the client does not know how to handle
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
}

func (e *UnexpectedStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, e.Body)
}
