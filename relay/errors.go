package relay

// TargetError reports a target that failed to publish an event.
type TargetError struct {
	Target string
	Err    error
}

func (e *TargetError) Error() string {
	return e.Target + ": " + e.Err.Error()
}

func (e *TargetError) Unwrap() error { return e.Err }
