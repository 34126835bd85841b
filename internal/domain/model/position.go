package model

import (
	"fmt"
	"strings"
)

// Position is the closed set of playing roles. The numeric value doubles as an
// index into per-position arrays, so counts and stats always carry all four.
type Position uint8

// Playing positions in their canonical order.
const (
	Goalkeeper Position = iota
	Defender
	Midfielder
	Forward
)

// PositionCount is the number of playing positions.
const PositionCount = 4

// Positions lists every position in canonical order.
var Positions = [PositionCount]Position{Goalkeeper, Defender, Midfielder, Forward}

var positionNames = [PositionCount]string{"GOALKEEPER", "DEFENDER", "MIDFIELDER", "FORWARD"}

// Valid reports whether p is one of the four known positions.
func (p Position) Valid() bool { return p < PositionCount }

func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Position(%d)", uint8(p))
	}
	return positionNames[p]
}

// ParsePosition parses a position name such as "GOALKEEPER" (case-insensitive).
func ParsePosition(s string) (Position, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range positionNames {
		if n == name {
			return Position(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPosition, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPosition, uint8(p))
	}
	return []byte(positionNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(b []byte) error {
	parsed, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
