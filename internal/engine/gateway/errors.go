package gateway

import "fmt"

// NetworkError is returned when a request could not be completed or the
// server answered with a non-2xx status. StatusCode is 0 for transport
// failures.
type NetworkError struct {
	Dataset    string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.Dataset, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.Dataset, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError is returned when a response body does not have the expected shape.
type DecodeError struct {
	Dataset string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Dataset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
