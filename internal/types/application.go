package types

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus tracks where an application sits in the placement
// process. Transitions past StatusSubmitted are owned by downstream tracking.
type ApplicationStatus string

const (
	// StatusSubmitted is the fixed initial status of every new application.
	StatusSubmitted ApplicationStatus = "submitted"
	StatusInReview  ApplicationStatus = "in_review"
	StatusShortlist ApplicationStatus = "shortlisted"
	StatusRejected  ApplicationStatus = "rejected"
	StatusSelected  ApplicationStatus = "selected"
)

// Application links a student to an opportunity they applied to.
// At most one application exists per (StudentID, OpportunityID) pair.
type Application struct {
	ID            uuid.UUID         `json:"id"`
	OpportunityID string            `json:"opportunityId"`
	StudentID     string            `json:"studentId"`
	AppliedDate   time.Time         `json:"appliedDate"`
	Status        ApplicationStatus `json:"status"`
}
