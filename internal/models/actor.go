package models

// Actor is the fully resolved caller identity. It is built once at the
// authentication boundary (JWT claims + profile lookup) and threaded through
// every service call, so the workflow core never probes profiles itself.
type Actor struct {
	UserID   string   `json:"user_id"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`

	// Lecturer-only attributes.
	IsHOD         bool   `json:"is_hod,omitempty"`
	HODFieldID    string `json:"hod_field_id,omitempty"`
	CelluleMember bool   `json:"cellule_member,omitempty"`
	SubjectIDs    []string `json:"subject_ids,omitempty"`

	// Student-only attribute: the student profile ID owning requests.
	StudentID string `json:"student_id,omitempty"`
}

// IsAdmin reports whether the actor has unconditional access.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// IsStaff reports whether the actor belongs to the teaching staff.
func (a *Actor) IsStaff() bool {
	return a != nil && (a.Role == RoleLecturer || a.Role == RoleAdmin)
}

// IsAssignee reports whether the actor holds the request assignment.
func (a *Actor) IsAssignee(req *Request) bool {
	if a == nil || req == nil || req.AssignedTo == nil {
		return false
	}
	return *req.AssignedTo == a.UserID
}

// HeadsField reports whether the actor is head of department for the field.
func (a *Actor) HeadsField(fieldID string) bool {
	return a != nil && a.IsHOD && a.HODFieldID != "" && a.HODFieldID == fieldID
}
