// Package dashboard loads role-specific record sets concurrently and tracks
// their loading and staleness state.
package dashboard

import (
	"time"

	"github.com/karthik/placementhub/internal/portal"
)

// AlumniState holds the alumni dashboard records. A zero LastUpdatedAt means
// the state was never loaded.
type AlumniState struct {
	Posts         []portal.AlumniPost
	Inbox         []portal.ReferralRequest
	Loading       bool
	LastUpdatedAt time.Time
}

// ManagementState holds the management dashboard records.
type ManagementState struct {
	Placements    []portal.Placement
	Instructions  []portal.Instruction
	Notes         []portal.Note
	Loading       bool
	LastUpdatedAt time.Time
}

// EventManagerState holds the event-manager dashboard records plus one
// registration count per owned event.
type EventManagerState struct {
	Events             []portal.Event
	RegistrationCounts map[string]int
	Loading            bool
	LastUpdatedAt      time.Time
}
