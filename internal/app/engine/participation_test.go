package engine

import (
	"testing"

	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mentoredProject(t *testing.T) *models.Project {
	t.Helper()
	p := newProposal(t, studentAlice)
	_, err := ApproveAsMentor(facultyFiona, p)
	require.NoError(t, err)
	return p
}

func TestRequestRequiresRole(t *testing.T) {
	p := mentoredProject(t)

	_, err := Participate(studentBob, p, ParticipationCommand{Action: ActionRequest})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRequestNotifiesLeadershipDeduplicated(t *testing.T) {
	p := mentoredProject(t)

	intents, err := Participate(studentBob, p, ParticipationCommand{
		Action: ActionRequest,
		Role:   "Research Assistant",
	})
	require.NoError(t, err)

	require.Len(t, p.Participants, 1)
	assert.Equal(t, studentBob.ID, p.Participants[0].UserID)
	assert.Equal(t, models.ParticipantRequested, p.Participants[0].Status)

	// Initiator and mentor each get exactly one new_role_request
	require.Len(t, intents, 2)
	recipients := []int64{intents[0].RecipientID, intents[1].RecipientID}
	assert.ElementsMatch(t, []int64{studentAlice.ID, facultyFiona.ID}, recipients)
	for _, in := range intents {
		assert.Equal(t, models.NotifyNewRoleRequest, in.Type)
		assert.Equal(t, studentBob.ID, in.FromUserID)
	}
}

func TestRequestDeduplicatesSelfMentoredInitiator(t *testing.T) {
	// Faculty-created project: initiator and mentor are the same user, so the
	// fan-out collapses to a single intent.
	p := newProposal(t, facultyFiona)

	intents, err := Participate(studentBob, p, ParticipationCommand{
		Action: ActionRequest,
		Role:   "Research Assistant",
	})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, facultyFiona.ID, intents[0].RecipientID)
}

func TestAnyExistingRecordBlocksRequest(t *testing.T) {
	p := mentoredProject(t)

	for _, status := range []models.ParticipantStatus{
		models.ParticipantRequested,
		models.ParticipantInvited,
		models.ParticipantAccepted,
		models.ParticipantRejected,
	} {
		p.Participants = []models.Participant{{UserID: studentBob.ID, Role: "RA", Status: status}}

		_, err := Participate(studentBob, p, ParticipationCommand{Action: ActionRequest, Role: "RA"})
		assert.ErrorIs(t, err, apperrors.ErrConflict, "status %s must block re-request", status)
	}
}

func TestInviteRequiresPrivilege(t *testing.T) {
	p := mentoredProject(t)

	_, err := Participate(studentBob, p, ParticipationCommand{
		Action: ActionInvite, Role: "RA", TargetUserID: 3,
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestInviteAppendsWithoutNotifying(t *testing.T) {
	p := mentoredProject(t)

	intents, err := Participate(facultyFiona, p, ParticipationCommand{
		Action: ActionInvite, Role: "Data Analyst", TargetUserID: studentBob.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, intents, "invitations do not fan out")

	require.Len(t, p.Participants, 1)
	assert.Equal(t, models.ParticipantInvited, p.Participants[0].Status)
}

func TestInviteBlockedByExistingRecord(t *testing.T) {
	p := mentoredProject(t)
	p.Participants = []models.Participant{{UserID: studentBob.ID, Role: "RA", Status: models.ParticipantRejected}}

	_, err := Participate(facultyFiona, p, ParticipationCommand{
		Action: ActionInvite, Role: "RA", TargetUserID: studentBob.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAcceptRequestedByMentor(t *testing.T) {
	p := mentoredProject(t)
	_, err := Participate(studentBob, p, ParticipationCommand{Action: ActionRequest, Role: "RA"})
	require.NoError(t, err)

	intents, err := Participate(facultyFiona, p, ParticipationCommand{
		Action: ActionAccept, TargetUserID: studentBob.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ParticipantAccepted, p.Participants[0].Status)
	require.Len(t, intents, 1)
	assert.Equal(t, studentBob.ID, intents[0].RecipientID)
	assert.Equal(t, models.NotifyRoleRequestApproved, intents[0].Type)
}

func TestAcceptRequestedByStrangerDenied(t *testing.T) {
	p := mentoredProject(t)
	_, err := Participate(studentBob, p, ParticipationCommand{Action: ActionRequest, Role: "RA"})
	require.NoError(t, err)

	// Bob cannot approve his own request; the target is ignored for
	// non-privileged actors, so his own record is found and the privilege
	// check fails.
	_, err = Participate(studentBob, p, ParticipationCommand{
		Action: ActionAccept, TargetUserID: studentBob.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAcceptInvitedByInvitee(t *testing.T) {
	p := mentoredProject(t)
	_, err := Participate(facultyFiona, p, ParticipationCommand{
		Action: ActionInvite, Role: "RA", TargetUserID: studentBob.ID,
	})
	require.NoError(t, err)

	intents, err := Participate(studentBob, p, ParticipationCommand{Action: ActionAccept})
	require.NoError(t, err)

	assert.Equal(t, models.ParticipantAccepted, p.Participants[0].Status)
	require.Len(t, intents, 1)
	assert.Equal(t, studentAlice.ID, intents[0].RecipientID, "the initiator hears about the accepted invite")
}

func TestAcceptInvitedByLeadershipDenied(t *testing.T) {
	p := mentoredProject(t)
	_, err := Participate(facultyFiona, p, ParticipationCommand{
		Action: ActionInvite, Role: "RA", TargetUserID: studentBob.ID,
	})
	require.NoError(t, err)

	// Only the invited user can accept their invitation
	_, err = Participate(facultyFiona, p, ParticipationCommand{
		Action: ActionAccept, TargetUserID: studentBob.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAcceptWithoutRecordNotFound(t *testing.T) {
	p := mentoredProject(t)

	_, err := Participate(facultyFiona, p, ParticipationCommand{
		Action: ActionAccept, TargetUserID: studentBob.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestResolvedRecordsCannotBeResolvedAgain(t *testing.T) {
	p := mentoredProject(t)
	_, err := Participate(studentBob, p, ParticipationCommand{Action: ActionRequest, Role: "RA"})
	require.NoError(t, err)
	_, err = Participate(facultyFiona, p, ParticipationCommand{Action: ActionAccept, TargetUserID: studentBob.ID})
	require.NoError(t, err)

	_, err = Participate(facultyFiona, p, ParticipationCommand{Action: ActionAccept, TargetUserID: studentBob.ID})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = Participate(facultyFiona, p, ParticipationCommand{Action: ActionReject, TargetUserID: studentBob.ID})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	assert.Equal(t, models.ParticipantAccepted, p.Participants[0].Status, "record is not double-mutated")
}

func TestRejectRequestedNotifies(t *testing.T) {
	p := mentoredProject(t)
	_, err := Participate(studentBob, p, ParticipationCommand{Action: ActionRequest, Role: "RA"})
	require.NoError(t, err)

	intents, err := Participate(facultyFiona, p, ParticipationCommand{
		Action: ActionReject, TargetUserID: studentBob.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ParticipantRejected, p.Participants[0].Status)
	require.Len(t, intents, 1)
	assert.Equal(t, models.NotifyRoleRequestRejected, intents[0].Type)
	assert.Equal(t, studentBob.ID, intents[0].RecipientID)
}

func TestDecliningInviteStaysSilent(t *testing.T) {
	p := mentoredProject(t)
	_, err := Participate(facultyFiona, p, ParticipationCommand{
		Action: ActionInvite, Role: "RA", TargetUserID: studentBob.ID,
	})
	require.NoError(t, err)

	intents, err := Participate(studentBob, p, ParticipationCommand{Action: ActionReject})
	require.NoError(t, err)

	assert.Equal(t, models.ParticipantRejected, p.Participants[0].Status)
	assert.Empty(t, intents)
}

func TestUnknownActionRejected(t *testing.T) {
	p := mentoredProject(t)

	_, err := Participate(studentBob, p, ParticipationCommand{Action: ParticipationAction("withdraw")})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

// TestCollaborationScenario walks the full lifecycle: proposal, mentor
// approval, role request, acceptance and completion, asserting the
// notification fan-out at each step.
func TestCollaborationScenario(t *testing.T) {
	p := newProposal(t, studentAlice)
	require.Equal(t, models.StatusProposed, p.Status)

	intents, err := ApproveAsMentor(facultyFiona, p)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, studentAlice.ID, intents[0].RecipientID)
	assert.Equal(t, models.NotifyProjectApproved, intents[0].Type)

	intents, err = Participate(studentBob, p, ParticipationCommand{
		Action: ActionRequest, Role: "Research Assistant",
	})
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.ElementsMatch(t,
		[]int64{studentAlice.ID, facultyFiona.ID},
		[]int64{intents[0].RecipientID, intents[1].RecipientID})

	intents, err = Participate(facultyFiona, p, ParticipationCommand{
		Action: ActionAccept, TargetUserID: studentBob.ID,
	})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, studentBob.ID, intents[0].RecipientID)
	assert.Equal(t, models.NotifyRoleRequestApproved, intents[0].Type)

	intents, err = SetStatus(facultyFiona, p, models.StatusFinished)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, p.Status)

	// Bob is the only accepted participant; Alice initiated but holds no
	// participation record, so she is not in the completion fan-out.
	require.Len(t, intents, 1)
	assert.Equal(t, studentBob.ID, intents[0].RecipientID)
	assert.Equal(t, models.NotifyProjectCompleted, intents[0].Type)
}
