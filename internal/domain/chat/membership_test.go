package chat

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func participant(role ChatRole, joined time.Time) Participant {
	return Participant{UserID: uuid.New(), Role: role, JoinedAt: joined}
}

func TestLeave_PromotesEarliestModerator(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	admin := participant(RoleAdmin, base)
	modLate := participant(RoleModerator, base.Add(3*time.Hour))
	modEarly := participant(RoleModerator, base.Add(time.Hour))
	plain := participant(RoleUser, base.Add(30*time.Minute))
	participants := []Participant{admin, modLate, modEarly, plain}

	outcome, err := Leave(participants, admin.UserID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if outcome.DeleteChat {
		t.Fatal("chat must survive with remaining participants")
	}
	if outcome.Promoted == nil || *outcome.Promoted != modEarly.UserID {
		t.Fatalf("expected earliest moderator %s promoted, got %v", modEarly.UserID, outcome.Promoted)
	}
	if AdminCount(outcome.Participants) != 1 {
		t.Fatalf("expected exactly one admin, got %d", AdminCount(outcome.Participants))
	}
	// The plain user joined earlier than both moderators but must not
	// win succession
	if p, _ := FindParticipant(outcome.Participants, plain.UserID); p.Role != RoleUser {
		t.Errorf("plain user role changed to %s", p.Role)
	}
}

func TestLeave_PromotesEarliestUserWithoutModerators(t *testing.T) {
	base := time.Now()
	admin := participant(RoleAdmin, base)
	userLate := participant(RoleUser, base.Add(2*time.Hour))
	userEarly := participant(RoleUser, base.Add(time.Hour))
	participants := []Participant{admin, userLate, userEarly}

	outcome, err := Leave(participants, admin.UserID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if outcome.Promoted == nil || *outcome.Promoted != userEarly.UserID {
		t.Fatalf("expected earliest user promoted, got %v", outcome.Promoted)
	}
}

func TestLeave_SoleParticipantDeletesChat(t *testing.T) {
	admin := participant(RoleAdmin, time.Now())
	outcome, err := Leave([]Participant{admin}, admin.UserID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !outcome.DeleteChat {
		t.Fatal("sole participant leaving must delete the chat")
	}
	if len(outcome.Participants) != 0 {
		t.Fatalf("expected empty membership, got %d", len(outcome.Participants))
	}
}

func TestLeave_NonParticipant(t *testing.T) {
	admin := participant(RoleAdmin, time.Now())
	if _, err := Leave([]Participant{admin}, uuid.New()); err != ErrNotParticipant {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestLeave_SecondAdminNoSuccession(t *testing.T) {
	base := time.Now()
	adminA := participant(RoleAdmin, base)
	adminB := participant(RoleAdmin, base.Add(time.Hour))
	plain := participant(RoleUser, base.Add(2*time.Hour))

	outcome, err := Leave([]Participant{adminA, adminB, plain}, adminA.UserID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if outcome.Promoted != nil {
		t.Fatal("no succession needed when another admin remains")
	}
	if AdminCount(outcome.Participants) != 1 {
		t.Fatalf("expected one remaining admin, got %d", AdminCount(outcome.Participants))
	}
}

func TestLeave_DoesNotMutateInput(t *testing.T) {
	base := time.Now()
	admin := participant(RoleAdmin, base)
	mod := participant(RoleModerator, base.Add(time.Hour))
	participants := []Participant{admin, mod}

	if _, err := Leave(participants, admin.UserID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if participants[1].Role != RoleModerator {
		t.Fatal("input slice was mutated")
	}
	if len(participants) != 2 {
		t.Fatal("input slice length changed")
	}
}

func TestRemove_RoleRules(t *testing.T) {
	base := time.Now()
	admin := participant(RoleAdmin, base)
	mod := participant(RoleModerator, base)
	otherMod := participant(RoleModerator, base)
	plain := participant(RoleUser, base)
	participants := []Participant{admin, mod, otherMod, plain}

	// Moderator removes plain user
	out, err := Remove(participants, mod.UserID, plain.UserID)
	if err != nil {
		t.Fatalf("moderator removing user: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(out))
	}

	// Moderator cannot remove admin
	if _, err := Remove(participants, mod.UserID, admin.UserID); err != ErrAdminUnremovable {
		t.Fatalf("expected ErrAdminUnremovable, got %v", err)
	}
	// Admin cannot remove admin either
	if _, err := Remove(participants, admin.UserID, admin.UserID); err != ErrAdminUnremovable {
		t.Fatalf("expected ErrAdminUnremovable for admin target, got %v", err)
	}
	// Moderator cannot remove moderator
	if _, err := Remove(participants, mod.UserID, otherMod.UserID); err != ErrModeratorProtected {
		t.Fatalf("expected ErrModeratorProtected, got %v", err)
	}
	// Admin removes moderator
	if _, err := Remove(participants, admin.UserID, mod.UserID); err != nil {
		t.Fatalf("admin removing moderator: %v", err)
	}
	// Plain user cannot remove anyone
	if _, err := Remove(participants, plain.UserID, mod.UserID); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestChangeRole_Guards(t *testing.T) {
	base := time.Now()
	admin := participant(RoleAdmin, base)
	mod := participant(RoleModerator, base)
	plain := participant(RoleUser, base)
	participants := []Participant{admin, mod, plain}

	// Only admins change roles
	if _, err := ChangeRole(participants, mod.UserID, plain.UserID, RoleModerator); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Promotion works
	out, err := ChangeRole(participants, admin.UserID, plain.UserID, RoleModerator)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if p, _ := FindParticipant(out, plain.UserID); p.Role != RoleModerator {
		t.Fatalf("expected moderator, got %s", p.Role)
	}

	// Sole admin cannot demote themselves
	if _, err := ChangeRole(participants, admin.UserID, admin.UserID, RoleUser); err != ErrLastAdmin {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	// With a second admin, demotion is allowed
	withSecond, err := ChangeRole(participants, admin.UserID, mod.UserID, RoleAdmin)
	if err != nil {
		t.Fatalf("promote second admin: %v", err)
	}
	if _, err := ChangeRole(withSecond, admin.UserID, admin.UserID, RoleUser); err != nil {
		t.Fatalf("demote with second admin: %v", err)
	}

	// Unknown target
	if _, err := ChangeRole(participants, admin.UserID, uuid.New(), RoleModerator); err != ErrNotParticipant {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestJoin_Duplicate(t *testing.T) {
	base := time.Now()
	admin := participant(RoleAdmin, base)
	participants := []Participant{admin}

	joined, err := Join(participants, Participant{UserID: uuid.New(), Role: RoleUser, JoinedAt: base})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(joined) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(joined))
	}

	if _, err := Join(joined, Participant{UserID: admin.UserID, Role: RoleUser, JoinedAt: base}); err != ErrAlreadyParticipant {
		t.Fatalf("expected ErrAlreadyParticipant, got %v", err)
	}
}
