package service

import (
	"github.com/noah-isme/grc-api/internal/models"
)

// requestGate concentrates every authorization rule of the workflow. Each
// check answers "may this actor perform this action on this request", never
// "is the status right for it": status preconditions are enforced separately
// so a caller that is both unauthorized and mistimed gets the authorization
// answer first.
type requestGate struct{}

// canHandle reports whether the actor may drive staff transitions on the
// request (acknowledge, decide, send to cell, complete, correct the score).
// The assignee holds that right; the head of department of the request's
// field holds it over every request in the field, assigned or not.
func (requestGate) canHandle(actor *models.Actor, req *models.Request) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.Role != models.RoleLecturer {
		return false
	}
	return actor.IsAssignee(req) || actor.HeadsField(req.FieldID)
}

// canReturnFromCellule reports whether the actor may hand a request back from
// the IT cell. That right belongs to cell members only; the assignee and the
// head of department have no say while the cell holds the request.
func (requestGate) canReturnFromCellule(actor *models.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == models.RoleLecturer && actor.CelluleMember
}

// canEditContent reports whether the actor may edit, delete or attach files.
// Only the owning student (or an admin) may, and only while the request has
// not been acknowledged; the status half of that rule lives with the caller.
func (requestGate) canEditContent(actor *models.Actor, req *models.Request) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == models.RoleStudent && actor.StudentID != "" && actor.StudentID == req.StudentID
}

// canView reports whether the actor may read the request, its ledger, its
// attachments and its result.
func (requestGate) canView(actor *models.Actor, req *models.Request) bool {
	if actor.IsAdmin() {
		return true
	}
	switch actor.Role {
	case models.RoleStudent:
		return actor.StudentID != "" && actor.StudentID == req.StudentID
	case models.RoleLecturer:
		if actor.IsAssignee(req) || actor.HeadsField(req.FieldID) {
			return true
		}
		// cell members see requests currently in or back from the cell
		return actor.CelluleMember && (req.Status == models.StatusInCellule || req.Status == models.StatusReturned)
	default:
		return false
	}
}

// celluleQueueStatuses is the slice of the workflow cell members may read.
var celluleQueueStatuses = []models.RequestStatus{models.StatusInCellule, models.StatusReturned}

// scope narrows a list filter to what the actor may see. Admins list freely;
// students see their own requests; heads of department see their field; cell
// members see the cell queue; other lecturers see their assignments.
func (requestGate) scope(actor *models.Actor, filter models.RequestFilter) models.RequestFilter {
	switch {
	case actor.IsAdmin():
		return filter
	case actor.Role == models.RoleStudent:
		filter.StudentID = actor.StudentID
		return filter
	case actor.IsHOD:
		filter.FieldID = actor.HODFieldID
		return filter
	case actor.CelluleMember:
		// the cell queue bounds the visible statuses no matter what the
		// caller asked for; statuses outside it fall back to the member's
		// own assignments
		queue := intersectStatuses(filter.Status, celluleQueueStatuses)
		if len(filter.Status) == 0 {
			filter.Status = celluleQueueStatuses
		} else if len(queue) > 0 {
			filter.Status = queue
		} else {
			filter.AssignedTo = actor.UserID
		}
		return filter
	default:
		filter.AssignedTo = actor.UserID
		return filter
	}
}

func intersectStatuses(requested, allowed []models.RequestStatus) []models.RequestStatus {
	var out []models.RequestStatus
	for _, status := range requested {
		for _, candidate := range allowed {
			if status == candidate {
				out = append(out, status)
				break
			}
		}
	}
	return out
}
