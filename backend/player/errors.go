package player

// UnsupportedError indicates that a source cannot emit the requested signal.
type UnsupportedError struct {
	Source string
	Signal string
}

func (e *UnsupportedError) Error() string {
	return e.Source + ": signal not supported: " + e.Signal
}

// NotRunningError indicates that the player service is not reachable.
type NotRunningError struct {
	Source string
	Err    error
}

func (e *NotRunningError) Error() string {
	return e.Source + " is not running: " + e.Err.Error()
}

func (e *NotRunningError) Unwrap() error { return e.Err }
