package submission

import "fmt"

// StatusError is a non-2xx answer from the rate endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("rating endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("rating endpoint returned status %d: %s", e.StatusCode, e.Body)
}
