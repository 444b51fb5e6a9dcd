package download

import "fmt"

// Outcome is the terminal classification of one download.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTransportError
	OutcomeStorageError
)

var outcomeNames = map[Outcome]string{
	OutcomeSuccess:        "success",
	OutcomeTransportError: "transport_error",
	OutcomeStorageError:   "storage_error",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	name, ok := outcomeNames[o]
	if !ok {
		return nil, fmt.Errorf("unknown outcome %d", int(o))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	for k, v := range outcomeNames {
		if v == string(text) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Result is delivered once, after all progress, when a download ends.
type Result struct {
	Outcome       Outcome
	BytesWritten  int64
	ContentLength int64
	// Err is the underlying cause of a failed outcome. Nil on success.
	Err error
}

// State is a position in the Task lifecycle.
type State int32

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateSuccess
	StateTransportError
	StateStorageError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateSuccess:
		return "success"
	case StateTransportError:
		return "transport_error"
	case StateStorageError:
		return "storage_error"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateTransportError || s == StateStorageError
}

func terminalState(o Outcome) State {
	switch o {
	case OutcomeSuccess:
		return StateSuccess
	case OutcomeTransportError:
		return StateTransportError
	default:
		return StateStorageError
	}
}
