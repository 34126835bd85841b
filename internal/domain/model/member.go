// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobuffalo/nulls"
)

// MembershipType classifies how a member belongs to the club.
type MembershipType string

// Membership types known to the skill heuristic.
const (
	MembershipOfficial MembershipType = "OFFICIAL"
	MembershipTrial    MembershipType = "TRIAL"
)

// ParseMembershipType parses a membership type name (case-insensitive).
func ParseMembershipType(s string) (MembershipType, error) {
	switch t := MembershipType(strings.ToUpper(strings.TrimSpace(s))); t {
	case MembershipOfficial, MembershipTrial:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMembershipType, s)
	}
}

// Member is a registered club member as held by the member registry.
type Member struct {
	ID             string         // uuid assigned on creation
	FullName       string         // display name
	Position       Position       // preferred playing position
	MembershipType MembershipType // drives the skill heuristic
	JerseyNumber   nulls.Int      // optional shirt number
	CreatedAt      time.Time
}

// Participant is a member resolved for a single division call.
type Participant struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Skill    float64  `json:"skill"`
	Position Position `json:"position"`
}
