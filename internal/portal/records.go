package portal

// Record shapes mirror the backend's list responses. The dashboard core only
// lists and displays them; create/update flows live in the portal web UI.

// Event is an event owned by an event manager.
type Event struct {
	ID           string `json:"id"`
	ManagerEmail string `json:"managerEmail"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Venue        string `json:"venue,omitempty"`
	StartAt      string `json:"startAt"`
	EndAt        string `json:"endAt,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// Registration is one student registration for an event.
type Registration struct {
	ID           string `json:"id"`
	EventID      string `json:"eventId"`
	StudentEmail string `json:"studentEmail"`
	RegisteredAt string `json:"registeredAt"`
	Attended     bool   `json:"attended"`
}

// AlumniPost is a referral/opening post by an alumni user.
type AlumniPost struct {
	ID          string   `json:"id"`
	AlumniEmail string   `json:"alumniEmail"`
	Company     string   `json:"company"`
	RoleTitle   string   `json:"roleTitle"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

// ReferralRequest is a student's referral ask sitting in an alumni inbox.
type ReferralRequest struct {
	ID           string `json:"id"`
	PostID       string `json:"postId"`
	StudentEmail string `json:"studentEmail"`
	AlumniEmail  string `json:"alumniEmail"`
	Message      string `json:"message,omitempty"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
}

// Placement is a placement notice published by management.
type Placement struct {
	ID          string `json:"id"`
	OwnerEmail  string `json:"ownerEmail"`
	CompanyName string `json:"companyName"`
	Title       string `json:"title"`
	CreatedAt   string `json:"createdAt"`
}

// Instruction is a management instruction record.
type Instruction struct {
	ID         string `json:"id"`
	OwnerEmail string `json:"ownerEmail"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	CreatedAt  string `json:"createdAt"`
}

// Note is a management note upload.
type Note struct {
	ID         string `json:"id"`
	OwnerEmail string `json:"ownerEmail"`
	Title      string `json:"title"`
	FileURL    string `json:"fileUrl,omitempty"`
	CreatedAt  string `json:"createdAt"`
}
