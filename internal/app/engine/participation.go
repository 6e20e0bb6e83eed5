package engine

import (
	"fmt"
	"time"

	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/pkg/apperrors"
)

// ParticipationAction enumerates the participation commands
type ParticipationAction string

const (
	ActionRequest ParticipationAction = "request"
	ActionInvite  ParticipationAction = "invite"
	ActionAccept  ParticipationAction = "accept"
	ActionReject  ParticipationAction = "reject"
)

// ParticipationCommand is the tagged command handled by Participate.
// TargetUserID identifies the other side of the relationship: the invitee for
// Invite, the requester for a privileged Accept/Reject. TargetName is only
// used to compose notification messages.
type ParticipationCommand struct {
	Action       ParticipationAction
	Role         string
	TargetUserID int64
	TargetName   string
}

// Participate applies a participation command to the project aggregate and
// returns the notification intents it produces.
func Participate(actor models.Actor, p *models.Project, cmd ParticipationCommand) ([]NotificationIntent, error) {
	switch cmd.Action {
	case ActionRequest:
		return requestRole(actor, p, cmd.Role)
	case ActionInvite:
		return inviteUser(actor, p, cmd)
	case ActionAccept:
		return resolveParticipant(actor, p, cmd.TargetUserID, models.ParticipantAccepted)
	case ActionReject:
		return resolveParticipant(actor, p, cmd.TargetUserID, models.ParticipantRejected)
	default:
		return nil, apperrors.NewValidationError("Invalid action. Must be 'request', 'invite', 'accept', or 'reject'")
	}
}

// requestRole appends a requested participation record for the actor. Any
// existing record for the actor, whatever its status, blocks a new request;
// there is no withdraw or reset operation.
func requestRole(actor models.Actor, p *models.Project, role string) ([]NotificationIntent, error) {
	if role == "" {
		return nil, apperrors.NewValidationError("Role is required")
	}

	if p.FindParticipant(actor.ID) != nil {
		return nil, apperrors.NewConflictError("You already have a pending or accepted role in this project")
	}

	p.Participants = append(p.Participants, models.Participant{
		UserID:    actor.ID,
		Role:      role,
		Status:    models.ParticipantRequested,
		CreatedAt: time.Now(),
	})
	p.UpdatedAt = time.Now()

	message := fmt.Sprintf("%s has requested to join your project %q as %s", actor.Name, p.Title, role)
	return notifyProjectLeaders(p, actor, models.NotifyNewRoleRequest, message), nil
}

// inviteUser appends an invited participation record for the target user.
// No notification goes to the invitee.
func inviteUser(actor models.Actor, p *models.Project, cmd ParticipationCommand) ([]NotificationIntent, error) {
	if !p.IsInitiatorOrMentor(actor.ID) {
		return nil, apperrors.NewForbiddenError("Only project initiator or mentor can send invitations")
	}

	if cmd.Role == "" || cmd.TargetUserID == 0 {
		return nil, apperrors.NewValidationError("Both role and target user ID are required")
	}

	if p.FindParticipant(cmd.TargetUserID) != nil {
		return nil, apperrors.NewConflictError("User already has a pending or accepted role in this project")
	}

	p.Participants = append(p.Participants, models.Participant{
		UserID:    cmd.TargetUserID,
		Role:      cmd.Role,
		Status:    models.ParticipantInvited,
		CreatedAt: time.Now(),
	})
	p.UpdatedAt = time.Now()

	return nil, nil
}

// resolveParticipant accepts or rejects a pending record. A privileged actor
// (initiator/mentor) resolves the target user's requested record; anyone else
// resolves their own invited record; a supplied target is ignored, so a
// non-privileged actor can never act on someone else's record.
func resolveParticipant(actor models.Actor, p *models.Project, targetUserID int64, outcome models.ParticipantStatus) ([]NotificationIntent, error) {
	privileged := p.IsInitiatorOrMentor(actor.ID)

	subjectID := actor.ID
	if privileged {
		subjectID = targetUserID
	}

	participant := p.FindParticipant(subjectID)
	if participant == nil {
		return nil, apperrors.NewResourceNotFoundError("No pending invitation or request found")
	}

	priorStatus := participant.Status

	// Already-resolved records cannot be resolved again
	if priorStatus == models.ParticipantAccepted || priorStatus == models.ParticipantRejected {
		return nil, apperrors.NewResourceNotFoundError("No pending invitation or request found")
	}

	// A requested record is resolved by the leadership; an invited record only
	// by the invited user themselves.
	if (priorStatus == models.ParticipantRequested && !privileged) ||
		(priorStatus == models.ParticipantInvited && actor.ID != participant.UserID) {
		verb := "accept"
		if outcome == models.ParticipantRejected {
			verb = "reject"
		}
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("You don't have permission to %s this", verb))
	}

	participant.Status = outcome
	p.UpdatedAt = time.Now()

	var intents []NotificationIntent
	switch {
	case outcome == models.ParticipantAccepted:
		// Notify the other party of the relationship
		recipient := participant.UserID
		if !privileged {
			recipient = p.InitiatorID
		}
		message := fmt.Sprintf("Your request to join %q as %s has been approved", p.Title, participant.Role)
		if priorStatus == models.ParticipantInvited {
			message = fmt.Sprintf("%s accepted the invitation to join %q as %s", actor.Name, p.Title, participant.Role)
		}
		intents = append(intents, NotificationIntent{
			RecipientID: recipient,
			Type:        models.NotifyRoleRequestApproved,
			Message:     message,
			FromUserID:  actor.ID,
		})

	case outcome == models.ParticipantRejected && priorStatus == models.ParticipantRequested:
		// Declining an invitation stays silent; only rejected requests notify
		intents = append(intents, NotificationIntent{
			RecipientID: participant.UserID,
			Type:        models.NotifyRoleRequestRejected,
			Message:     fmt.Sprintf("Your request to join %q as %s has been declined", p.Title, participant.Role),
			FromUserID:  actor.ID,
		})
	}

	return intents, nil
}
