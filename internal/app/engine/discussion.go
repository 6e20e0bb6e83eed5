package engine

import (
	"fmt"
	"time"

	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/pkg/apperrors"
)

// AddComment appends a top-level comment, or a reply when parentCommentID is
// set. Replies nest exactly one level; a reply cannot be replied to.
func AddComment(actor models.Actor, p *models.Project, text string, parentCommentID *int64) ([]NotificationIntent, error) {
	if text == "" {
		return nil, apperrors.NewValidationError("Comment text is required")
	}

	now := time.Now()

	if parentCommentID != nil {
		parent := p.FindComment(*parentCommentID)
		if parent == nil {
			return nil, apperrors.NewResourceNotFoundError("Parent comment not found")
		}

		parent.Replies = append(parent.Replies, models.Reply{
			UserID:    actor.ID,
			Text:      text,
			CreatedAt: now,
		})
		p.UpdatedAt = now

		if parent.UserID == actor.ID {
			return nil, nil
		}
		return []NotificationIntent{{
			RecipientID: parent.UserID,
			Type:        models.NotifyNewReply,
			Message:     fmt.Sprintf("Someone replied to your comment on %q", p.Title),
			FromUserID:  actor.ID,
		}}, nil
	}

	p.Comments = append(p.Comments, models.Comment{
		UserID:    actor.ID,
		Text:      text,
		CreatedAt: now,
		Replies:   []models.Reply{},
	})
	p.UpdatedAt = now

	message := fmt.Sprintf("Someone commented on your project %q", p.Title)
	return notifyProjectLeaders(p, actor, models.NotifyNewComment, message), nil
}

// AddAttachment appends a stored file reference. Only project members (the
// initiator, the mentor or an accepted participant) may attach files.
func AddAttachment(actor models.Actor, p *models.Project, title, fileURL, fileKey string) (*models.Attachment, error) {
	if title == "" {
		return nil, apperrors.NewValidationError("Attachment title is required")
	}

	if !p.IsInitiatorOrMentor(actor.ID) && !p.IsAcceptedParticipant(actor.ID) {
		return nil, apperrors.NewForbiddenError("Only project members can add attachments")
	}

	now := time.Now()
	p.Attachments = append(p.Attachments, models.Attachment{
		Title:        title,
		FileURL:      fileURL,
		FileKey:      fileKey,
		UploadedByID: actor.ID,
		UploadedAt:   now,
	})
	p.UpdatedAt = now

	return &p.Attachments[len(p.Attachments)-1], nil
}

// RemoveAttachment detaches a stored file reference. The uploader may remove
// their own attachment; the initiator and mentor may remove any.
func RemoveAttachment(actor models.Actor, p *models.Project, attachmentID int64) (*models.Attachment, error) {
	for i := range p.Attachments {
		if p.Attachments[i].ID != attachmentID {
			continue
		}
		att := p.Attachments[i]
		if att.UploadedByID != actor.ID && !p.IsInitiatorOrMentor(actor.ID) {
			return nil, apperrors.NewForbiddenError("Only the uploader or a project leader can remove this attachment")
		}
		p.Attachments = append(p.Attachments[:i], p.Attachments[i+1:]...)
		p.UpdatedAt = time.Now()
		return &att, nil
	}
	return nil, apperrors.NewResourceNotFoundError("Attachment not found")
}
