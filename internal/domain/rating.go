// Package domain holds the data model shared by every scheduling
// component: ratings, card states, the card itself, and the review log.
package domain

import "fmt"

// Rating is the grade a user assigns when answering a card. The
// numeric values are fixed by the FSRS algorithm and must not change.
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

// String implements fmt.Stringer for log-friendly output.
func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return fmt.Sprintf("Rating(%d)", int(r))
	}
}

// Valid reports whether r is one of the four defined ratings.
func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

// MarshalJSON encodes the rating using its wire name, per §6.
func (r Rating) MarshalJSON() ([]byte, error) {
	s, ok := ratingToWire[r]
	if !ok {
		return nil, fmt.Errorf("domain: invalid rating %d", int(r))
	}
	return []byte(`"` + s + `"`), nil
}

// UnmarshalJSON decodes a rating from its wire name.
func (r *Rating) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	v, ok := wireToRating[s]
	if !ok {
		return fmt.Errorf("domain: unknown rating %q", s)
	}
	*r = v
	return nil
}

var ratingToWire = map[Rating]string{
	Again: "again",
	Hard:  "hard",
	Good:  "good",
	Easy:  "easy",
}

var wireToRating = map[string]Rating{
	"again": Again,
	"hard":  Hard,
	"good":  Good,
	"easy":  Easy,
}

// unquote strips the surrounding JSON string quotes without pulling in
// encoding/json for a one-liner.
func unquote(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", fmt.Errorf("domain: expected JSON string, got %q", data)
	}
	return string(data[1 : len(data)-1]), nil
}
