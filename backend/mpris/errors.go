package mpris

// PlayerNotFoundError indicates that no matching player is on the bus
type PlayerNotFoundError struct {
	BusName string
}

func (e *PlayerNotFoundError) Error() string {
	if e.BusName == "" {
		return "no MPRIS player found on the session bus"
	}
	return "player not found: " + e.BusName
}

// InvalidBusNameError indicates that a busName is invalid
type InvalidBusNameError struct {
	BusName string
	Reason  string
}

func (e *InvalidBusNameError) Error() string {
	return "invalid player name " + e.BusName + ": " + e.Reason
}
