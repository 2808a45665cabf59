package backend

import "fmt"

// ConfigurationError reports a model identifier that maps to no known
// backend. It is raised before any network call.
type ConfigurationError struct {
	Model string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown model %q", e.Model)
}

// InvalidRoleError reports a sender with no mapping in a vendor's role
// vocabulary. This is a programming error, not a runtime condition.
type InvalidRoleError struct {
	Sender Sender
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("no vendor role for sender %q", string(e.Sender))
}

// BackendError reports a request that could not be completed after the
// adapter's retry policy was exhausted.
type BackendError struct {
	Vendor   string
	Attempts int
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s request failed %d times", e.Vendor, e.Attempts)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
