package domain

import "fmt"

// CardState is the finite-state-machine state of a card's memory
// model. New is the initial state; Review is the absorbing steady
// state; Learning/Relearning traverse a configured step ladder.
type CardState int

const (
	New CardState = iota
	Learning
	Review
	Relearning
)

func (s CardState) String() string {
	switch s {
	case New:
		return "new"
	case Learning:
		return "learning"
	case Review:
		return "review"
	case Relearning:
		return "relearning"
	default:
		return fmt.Sprintf("CardState(%d)", int(s))
	}
}

func (s CardState) MarshalJSON() ([]byte, error) {
	str, ok := stateToWire[s]
	if !ok {
		return nil, fmt.Errorf("domain: invalid card state %d", int(s))
	}
	return []byte(`"` + str + `"`), nil
}

func (s *CardState) UnmarshalJSON(data []byte) error {
	str, err := unquote(data)
	if err != nil {
		return err
	}
	v, ok := wireToState[str]
	if !ok {
		return fmt.Errorf("domain: unknown card state %q", str)
	}
	*s = v
	return nil
}

var stateToWire = map[CardState]string{
	New:        "new",
	Learning:   "learning",
	Review:     "review",
	Relearning: "relearning",
}

var wireToState = map[string]CardState{
	"new":        New,
	"learning":   Learning,
	"review":     Review,
	"relearning": Relearning,
}

// CardStatus is orthogonal to CardState: it tracks whether the card is
// eligible for study at all. Buried auto-resets on the next day
// boundary; Suspended persists until explicit resume.
type CardStatus int

const (
	Active CardStatus = iota
	Buried
	Suspended
)

func (s CardStatus) String() string {
	switch s {
	case Active:
		return "active"
	case Buried:
		return "buried"
	case Suspended:
		return "suspended"
	default:
		return fmt.Sprintf("CardStatus(%d)", int(s))
	}
}

func (s CardStatus) MarshalJSON() ([]byte, error) {
	str, ok := statusToWire[s]
	if !ok {
		return nil, fmt.Errorf("domain: invalid card status %d", int(s))
	}
	return []byte(`"` + str + `"`), nil
}

func (s *CardStatus) UnmarshalJSON(data []byte) error {
	str, err := unquote(data)
	if err != nil {
		return err
	}
	v, ok := wireToStatus[str]
	if !ok {
		return fmt.Errorf("domain: unknown card status %q", str)
	}
	*s = v
	return nil
}

var statusToWire = map[CardStatus]string{
	Active:    "active",
	Buried:    "buried",
	Suspended: "suspended",
}

var wireToStatus = map[string]CardStatus{
	"active":    Active,
	"buried":    Buried,
	"suspended": Suspended,
}

// Algorithm selects which memory model a Scheduler runs. The
// Scheduler is a sum over {FSRS(params), SM2(params)} rather than a
// subclass hierarchy, per the tagged-union re-architecture note.
type Algorithm int

const (
	FSRS Algorithm = iota
	SM2
)

func (a Algorithm) String() string {
	switch a {
	case FSRS:
		return "fsrs"
	case SM2:
		return "sm2"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}
