package engine

import (
	"testing"

	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCommentRequiresText(t *testing.T) {
	p := mentoredProject(t)

	_, err := AddComment(studentBob, p, "", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAddTopLevelComment(t *testing.T) {
	p := mentoredProject(t)

	intents, err := AddComment(studentBob, p, "Is the dataset public?", nil)
	require.NoError(t, err)

	require.Len(t, p.Comments, 1)
	assert.Equal(t, "Is the dataset public?", p.Comments[0].Text)
	assert.Empty(t, p.Comments[0].Replies)

	// Initiator and mentor are notified; the commenter is not
	require.Len(t, intents, 2)
	assert.ElementsMatch(t,
		[]int64{studentAlice.ID, facultyFiona.ID},
		[]int64{intents[0].RecipientID, intents[1].RecipientID})
	for _, in := range intents {
		assert.Equal(t, models.NotifyNewComment, in.Type)
	}
}

func TestInitiatorCommentSkipsSelfNotification(t *testing.T) {
	p := mentoredProject(t)

	intents, err := AddComment(studentAlice, p, "Kickoff is Monday.", nil)
	require.NoError(t, err)

	require.Len(t, intents, 1)
	assert.Equal(t, facultyFiona.ID, intents[0].RecipientID)
}

func TestReplyRoundTrip(t *testing.T) {
	p := mentoredProject(t)

	_, err := AddComment(studentBob, p, "Is the dataset public?", nil)
	require.NoError(t, err)
	p.Comments[0].ID = 7

	parentID := int64(7)
	intents, err := AddComment(studentAlice, p, "Yes, on Zenodo.", &parentID)
	require.NoError(t, err)

	// Top-level count unchanged, exactly one reply appended
	require.Len(t, p.Comments, 1)
	require.Len(t, p.Comments[0].Replies, 1)
	assert.Equal(t, "Yes, on Zenodo.", p.Comments[0].Replies[0].Text)

	require.Len(t, intents, 1)
	assert.Equal(t, studentBob.ID, intents[0].RecipientID)
	assert.Equal(t, models.NotifyNewReply, intents[0].Type)
}

func TestReplyToOwnCommentStaysSilent(t *testing.T) {
	p := mentoredProject(t)

	_, err := AddComment(studentBob, p, "First thought.", nil)
	require.NoError(t, err)
	p.Comments[0].ID = 7

	parentID := int64(7)
	intents, err := AddComment(studentBob, p, "Second thought.", &parentID)
	require.NoError(t, err)
	assert.Empty(t, intents)
}

func TestReplyToMissingComment(t *testing.T) {
	p := mentoredProject(t)

	parentID := int64(42)
	_, err := AddComment(studentBob, p, "orphan", &parentID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestAddAttachmentAuthorization(t *testing.T) {
	p := mentoredProject(t)

	_, err := AddAttachment(studentBob, p, "Protocol", "http://files/x.pdf", "x.pdf")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	p.Participants = []models.Participant{{UserID: studentBob.ID, Role: "RA", Status: models.ParticipantAccepted}}

	att, err := AddAttachment(studentBob, p, "Protocol", "http://files/x.pdf", "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Protocol", att.Title)
	require.Len(t, p.Attachments, 1)
}

func TestAddAttachmentRequiresTitle(t *testing.T) {
	p := mentoredProject(t)

	_, err := AddAttachment(facultyFiona, p, "", "http://files/x.pdf", "x.pdf")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
