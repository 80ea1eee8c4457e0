package targeting

import "fmt"

// Status is the targeting verdict for a single region of interest.
type Status int

const (
	// StatusSearching means the region lacks enough detail to be worth reading.
	StatusSearching Status = iota
	// StatusHoldSteady means the region is sharp but still moving.
	StatusHoldSteady
	// StatusReadyToRead means the region is sharp and stable.
	StatusReadyToRead
)

var statusNames = [...]string{
	StatusSearching:   "SEARCHING",
	StatusHoldSteady:  "HOLD_STEADY",
	StatusReadyToRead: "READY_TO_READ",
}

// String returns the wire name of the status.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("targeting: unknown status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a wire name back into a Status.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusSearching, fmt.Errorf("targeting: unknown status %q", name)
}
