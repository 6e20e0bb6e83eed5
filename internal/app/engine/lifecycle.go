package engine

import (
	"fmt"
	"time"

	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/pkg/apperrors"
)

// The lifecycle engine implements the project status state machine:
//
//	proposed --(faculty approves / assigns self as mentor)--> approved
//	approved --(initiator or mentor starts work)------------> ongoing
//	ongoing  --(initiator or mentor marks complete)---------> finished
//
// SetStatus deliberately performs no adjacency check against this graph; a
// privileged caller may jump states directly. The notification side effects
// are keyed on entering approved/finished from a different status, not on the
// edge taken.

// CreateInput carries the fields a new project is created with
type CreateInput struct {
	Title       string
	Description string
	Department  string
	OpenRoles   []models.OpenRole
	Tags        []string
}

// DetailsPatch is a wholesale replacement of the editable project fields
type DetailsPatch struct {
	Title       string
	Description string
	Department  string
	OpenRoles   []models.OpenRole
	Tags        []string
}

// CreateProject builds a new project aggregate for the actor. Students start
// in proposed; faculty start in approved with themselves as mentor.
func CreateProject(actor models.Actor, in CreateInput) (*models.Project, error) {
	if in.Title == "" || in.Description == "" || in.Department == "" {
		return nil, apperrors.NewValidationError("Title, description and department are required")
	}

	now := time.Now()
	project := &models.Project{
		Title:        in.Title,
		Description:  in.Description,
		Department:   in.Department,
		Status:       models.StatusProposed,
		InitiatorID:  actor.ID,
		OpenRoles:    in.OpenRoles,
		Tags:         in.Tags,
		Participants: []models.Participant{},
		Comments:     []models.Comment{},
		Attachments:  []models.Attachment{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if project.OpenRoles == nil {
		project.OpenRoles = []models.OpenRole{}
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}

	if actor.IsFaculty() {
		project.Status = models.StatusApproved
		mentorID := actor.ID
		project.MentorID = &mentorID
	}

	return project, nil
}

// SetStatus moves the project to newStatus on behalf of the actor and returns
// the notification intents the transition produces.
func SetStatus(actor models.Actor, p *models.Project, newStatus models.ProjectStatus) ([]NotificationIntent, error) {
	if !models.ValidProjectStatus(newStatus) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid project status %q", newStatus))
	}

	if !actor.IsFaculty() {
		return nil, apperrors.NewForbiddenError("Only faculty members can approve or update project status")
	}

	if !p.IsInitiatorOrMentor(actor.ID) {
		// A faculty member may adopt an unmentored proposal by approving it
		if newStatus == models.StatusApproved && p.Status == models.StatusProposed && p.MentorID == nil {
			mentorID := actor.ID
			p.MentorID = &mentorID
		} else {
			return nil, apperrors.NewForbiddenError("You don't have permission to update this project's status")
		}
	}

	var intents []NotificationIntent

	if newStatus == models.StatusApproved && p.Status != models.StatusApproved {
		intents = append(intents, NotificationIntent{
			RecipientID: p.InitiatorID,
			Type:        models.NotifyProjectApproved,
			Message:     fmt.Sprintf("Your project %q has been approved!", p.Title),
			FromUserID:  actor.ID,
		})
	}

	if newStatus == models.StatusFinished && p.Status != models.StatusFinished {
		for i := range p.Participants {
			pt := &p.Participants[i]
			if pt.Status != models.ParticipantAccepted || pt.UserID == actor.ID {
				continue
			}
			intents = append(intents, NotificationIntent{
				RecipientID: pt.UserID,
				Type:        models.NotifyProjectCompleted,
				Message:     fmt.Sprintf("The project %q has been marked as completed!", p.Title),
				FromUserID:  actor.ID,
			})
		}
	}

	p.Status = newStatus
	p.UpdatedAt = time.Now()
	return intents, nil
}

// ApproveAsMentor approves a proposed project and assigns the actor as its
// mentor. The mentor slot is set at most once.
func ApproveAsMentor(actor models.Actor, p *models.Project) ([]NotificationIntent, error) {
	if !actor.IsFaculty() {
		return nil, apperrors.NewForbiddenError("Only faculty members can approve projects as mentors")
	}

	if p.Status != models.StatusProposed {
		return nil, apperrors.NewConflictError("Only proposed projects can be approved")
	}

	if p.MentorID != nil {
		return nil, apperrors.NewConflictError("This project already has a mentor")
	}

	p.Status = models.StatusApproved
	mentorID := actor.ID
	p.MentorID = &mentorID
	p.UpdatedAt = time.Now()

	return []NotificationIntent{{
		RecipientID: p.InitiatorID,
		Type:        models.NotifyProjectApproved,
		Message:     fmt.Sprintf("Your project %q has been approved and has a mentor assigned!", p.Title),
		FromUserID:  actor.ID,
	}}, nil
}

// UpdateProgress sets the progress percentage. Only the initiator or mentor
// may do so; no notification is produced.
func UpdateProgress(actor models.Actor, p *models.Project, percentage int) error {
	if percentage < 0 || percentage > 100 {
		return apperrors.NewValidationError("Progress percentage must be between 0 and 100")
	}

	if !p.IsInitiatorOrMentor(actor.ID) {
		return apperrors.NewForbiddenError("Only project initiator or mentor can update progress")
	}

	p.ProgressPercentage = percentage
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateDetails replaces the editable project fields wholesale. Only the
// initiator or mentor may edit; no notification is produced.
func UpdateDetails(actor models.Actor, p *models.Project, patch DetailsPatch) error {
	if !p.IsInitiatorOrMentor(actor.ID) {
		return apperrors.NewForbiddenError("Only project initiator or mentor can edit this project")
	}

	if patch.Title == "" || patch.Description == "" || patch.Department == "" {
		return apperrors.NewValidationError("Title, description and department are required")
	}

	p.Title = patch.Title
	p.Description = patch.Description
	p.Department = patch.Department
	p.OpenRoles = patch.OpenRoles
	if p.OpenRoles == nil {
		p.OpenRoles = []models.OpenRole{}
	}
	p.Tags = patch.Tags
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.UpdatedAt = time.Now()
	return nil
}
