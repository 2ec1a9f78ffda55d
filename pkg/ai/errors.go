package ai

import "fmt"

// APIError is a failure reported by the provider API itself, as opposed
// to a transport or decode failure.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: %s", e.Provider, e.Message)
}
