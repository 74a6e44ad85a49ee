package chat

import (
	"github.com/google/uuid"
)

// The functions in this file are pure transitions over a chat's
// participant list. They never mutate their input slice; callers
// persist the returned value. All role and succession rules live
// here so the service layer stays a thin orchestration shell.

// FindParticipant returns the participant entry for userID, if any
func FindParticipant(participants []Participant, userID uuid.UUID) (Participant, bool) {
	for _, p := range participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participant{}, false
}

// AdminCount counts participants holding the admin role
func AdminCount(participants []Participant) int {
	n := 0
	for _, p := range participants {
		if p.Role == RoleAdmin {
			n++
		}
	}
	return n
}

func without(participants []Participant, userID uuid.UUID) []Participant {
	out := make([]Participant, 0, len(participants))
	for _, p := range participants {
		if p.UserID != userID {
			out = append(out, p)
		}
	}
	return out
}

func withRole(participants []Participant, userID uuid.UUID, role ChatRole) []Participant {
	out := make([]Participant, len(participants))
	copy(out, participants)
	for i := range out {
		if out[i].UserID == userID {
			out[i].Role = role
		}
	}
	return out
}

// Successor picks the participant promoted when the sole admin
// leaves: the earliest-joined moderator, or if there is none, the
// earliest-joined user.
func Successor(participants []Participant) (Participant, bool) {
	var (
		best  Participant
		found bool
	)
	pick := func(role ChatRole) bool {
		found = false
		for _, p := range participants {
			if p.Role != role {
				continue
			}
			if !found || p.JoinedAt.Before(best.JoinedAt) {
				best = p
				found = true
			}
		}
		return found
	}
	if pick(RoleModerator) {
		return best, true
	}
	if pick(RoleUser) {
		return best, true
	}
	return Participant{}, false
}

// LeaveOutcome describes the result of a Leave transition
type LeaveOutcome struct {
	Participants []Participant
	// Promoted holds the successor's user ID when the departing sole
	// admin handed the chat over
	Promoted *uuid.UUID
	// DeleteChat is set when the last participant left and the chat
	// should be removed entirely
	DeleteChat bool
}

// Leave removes actor from the participant list, promoting a
// successor first when the actor is the sole admin. A sole
// participant leaving empties the chat, which the caller must delete.
func Leave(participants []Participant, actorID uuid.UUID) (LeaveOutcome, error) {
	actor, ok := FindParticipant(participants, actorID)
	if !ok {
		return LeaveOutcome{}, ErrNotParticipant
	}

	remaining := without(participants, actorID)
	if len(remaining) == 0 {
		return LeaveOutcome{Participants: remaining, DeleteChat: true}, nil
	}

	if actor.Role == RoleAdmin && AdminCount(remaining) == 0 {
		successor, ok := Successor(remaining)
		if !ok {
			// Unreachable with remaining non-empty, kept as a guard
			return LeaveOutcome{Participants: remaining, DeleteChat: true}, nil
		}
		remaining = withRole(remaining, successor.UserID, RoleAdmin)
		promoted := successor.UserID
		return LeaveOutcome{Participants: remaining, Promoted: &promoted}, nil
	}

	return LeaveOutcome{Participants: remaining}, nil
}

// Remove takes target out of the participant list on behalf of
// actor. Admins are never removable; moderators only by admins;
// plain users by moderators and admins.
func Remove(participants []Participant, actorID, targetID uuid.UUID) ([]Participant, error) {
	actor, ok := FindParticipant(participants, actorID)
	if !ok {
		return nil, ErrNotParticipant
	}
	target, ok := FindParticipant(participants, targetID)
	if !ok {
		return nil, ErrNotParticipant
	}

	if !actor.Role.AtLeast(RoleModerator) {
		return nil, ErrForbidden
	}
	if target.Role == RoleAdmin {
		return nil, ErrAdminUnremovable
	}
	if target.Role == RoleModerator && actor.Role != RoleAdmin {
		return nil, ErrModeratorProtected
	}

	return without(participants, targetID), nil
}

// ChangeRole sets target's role. Only admins may change roles, and
// the sole admin cannot demote themselves out of the invariant.
func ChangeRole(participants []Participant, actorID, targetID uuid.UUID, newRole ChatRole) ([]Participant, error) {
	actor, ok := FindParticipant(participants, actorID)
	if !ok {
		return nil, ErrNotParticipant
	}
	target, ok := FindParticipant(participants, targetID)
	if !ok {
		return nil, ErrNotParticipant
	}

	if actor.Role != RoleAdmin {
		return nil, ErrForbidden
	}
	if target.Role == RoleAdmin && newRole != RoleAdmin && AdminCount(participants) == 1 {
		return nil, ErrLastAdmin
	}

	return withRole(participants, targetID, newRole), nil
}

// Join appends a new plain participant
func Join(participants []Participant, p Participant) ([]Participant, error) {
	if _, ok := FindParticipant(participants, p.UserID); ok {
		return nil, ErrAlreadyParticipant
	}
	out := make([]Participant, len(participants), len(participants)+1)
	copy(out, participants)
	return append(out, p), nil
}
