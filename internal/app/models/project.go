package models

import "time"

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	StatusProposed    ProjectStatus = "proposed"
	StatusApproved    ProjectStatus = "approved"
	StatusOngoing     ProjectStatus = "ongoing"
	StatusUnderReview ProjectStatus = "under_review"
	StatusFinished    ProjectStatus = "finished"
)

// ValidProjectStatus reports whether s is one of the five lifecycle states
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case StatusProposed, StatusApproved, StatusOngoing, StatusUnderReview, StatusFinished:
		return true
	}
	return false
}

// ParticipantStatus is the state of a participation record
type ParticipantStatus string

const (
	ParticipantInvited   ParticipantStatus = "invited"
	ParticipantRequested ParticipantStatus = "requested"
	ParticipantAccepted  ParticipantStatus = "accepted"
	ParticipantRejected  ParticipantStatus = "rejected"
)

// Project is the aggregate root. It owns every nested entity below; none of
// them is shared across projects, and every mutation loads, changes and saves
// the aggregate as a single unit.
type Project struct {
	ID                 int64         `json:"id" db:"id"`
	Title              string        `json:"title" db:"title"`
	Description        string        `json:"description" db:"description"`
	Department         string        `json:"department" db:"department"`
	Status             ProjectStatus `json:"status" db:"status"`
	ProgressPercentage int           `json:"progressPercentage" db:"progress_percentage"`
	InitiatorID        int64         `json:"initiatorId" db:"initiator_id"`
	MentorID           *int64        `json:"mentorId,omitempty" db:"mentor_id"`
	Tags               []string      `json:"tags" db:"tags"`
	CreatedAt          time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time     `json:"updatedAt" db:"updated_at"`

	OpenRoles    []OpenRole    `json:"openRoles"`
	Participants []Participant `json:"participants"`
	Comments     []Comment     `json:"comments"`
	Attachments  []Attachment  `json:"attachments"`

	// Related entities populated on read
	Initiator *User `json:"initiator,omitempty"`
	Mentor    *User `json:"mentor,omitempty"`
}

// OpenRole is a position the project is recruiting for
type OpenRole struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
}

// Participant tracks one user's request/invite lifecycle on a project.
// At most one record exists per (project, user) pair.
type Participant struct {
	ID        int64             `json:"id" db:"id"`
	UserID    int64             `json:"userId" db:"user_id"`
	Role      string            `json:"role" db:"role"`
	Status    ParticipantStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`

	User *User `json:"user,omitempty"`
}

// Comment is a top-level discussion entry; replies nest exactly one level
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Replies   []Reply   `json:"replies"`

	User *User `json:"user,omitempty"`
}

// Reply is a second-level discussion entry under a Comment
type Reply struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	User *User `json:"user,omitempty"`
}

// Attachment is an opaque stored file reference on a project
type Attachment struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	FileURL      string    `json:"fileUrl" db:"file_url"`
	FileKey      string    `json:"-" db:"file_key"`
	UploadedByID int64     `json:"uploadedById" db:"uploaded_by"`
	UploadedAt   time.Time `json:"uploadedAt" db:"uploaded_at"`
}

// IsInitiator reports whether the user created this project
func (p *Project) IsInitiator(userID int64) bool {
	return p.InitiatorID == userID
}

// IsMentor reports whether the user is the assigned mentor
func (p *Project) IsMentor(userID int64) bool {
	return p.MentorID != nil && *p.MentorID == userID
}

// IsInitiatorOrMentor reports whether the user has implicit authority over
// the project
func (p *Project) IsInitiatorOrMentor(userID int64) bool {
	return p.IsInitiator(userID) || p.IsMentor(userID)
}

// FindParticipant returns the participation record for userID, if any
func (p *Project) FindParticipant(userID int64) *Participant {
	for i := range p.Participants {
		if p.Participants[i].UserID == userID {
			return &p.Participants[i]
		}
	}
	return nil
}

// IsAcceptedParticipant reports whether userID holds an accepted role
func (p *Project) IsAcceptedParticipant(userID int64) bool {
	pt := p.FindParticipant(userID)
	return pt != nil && pt.Status == ParticipantAccepted
}

// FindComment returns the top-level comment with the given id, if any
func (p *Project) FindComment(commentID int64) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}
