package purple

import "fmt"

// CallError wraps a failed remote call with the method that failed.
type CallError struct {
	Method string
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("purple: %s failed: %v", e.Method, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// UnknownFlavourError is returned for a messenger name that is not supported.
type UnknownFlavourError struct {
	Name string
}

func (e *UnknownFlavourError) Error() string {
	return "purple: unknown messenger: " + e.Name
}
