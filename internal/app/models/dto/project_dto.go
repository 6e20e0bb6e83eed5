package dto

import "github.com/okan/urcp/internal/app/models"

// OpenRoleRequest describes one recruitable role in a create/update payload
type OpenRoleRequest struct {
	Title       string `json:"title" binding:"required" example:"Research Assistant"`
	Description string `json:"description" example:"Runs the weekly lab sessions"`
}

// CreateProjectRequest represents the payload for creating a project
type CreateProjectRequest struct {
	Title       string            `json:"title" binding:"required" example:"Quantum Sensing"`
	Description string            `json:"description" binding:"required" example:"Low-noise magnetometry study"`
	Department  string            `json:"department" binding:"required" example:"Physics"`
	Tags        []string          `json:"tags"`
	OpenRoles   []OpenRoleRequest `json:"openRoles"`
}

// UpdateProjectRequest represents the payload for replacing project details.
// Open roles and tags are replaced wholesale, not merged.
type UpdateProjectRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description" binding:"required"`
	Department  string            `json:"department" binding:"required"`
	Tags        []string          `json:"tags"`
	OpenRoles   []OpenRoleRequest `json:"openRoles"`
}

// SetStatusRequest represents the payload for a lifecycle transition
type SetStatusRequest struct {
	Status string `json:"status" binding:"required" example:"ongoing"`
}

// UpdateProgressRequest represents the payload for updating completion progress
type UpdateProgressRequest struct {
	ProgressPercentage *int `json:"progressPercentage" binding:"required" example:"40"`
}

// ParticipationRequest represents the payload for the participation endpoint.
// Action selects the operation; the remaining fields are action-specific.
type ParticipationRequest struct {
	Action       string `json:"action" binding:"required,oneof=request invite accept reject" example:"request"`
	Role         string `json:"role" example:"Research Assistant"`
	TargetUserID int64  `json:"userId" example:"42"`
}

// CommentRequest represents the payload for posting a comment or a reply
type CommentRequest struct {
	Text            string `json:"text" binding:"required" example:"Is the dataset public?"`
	ParentCommentID *int64 `json:"parentCommentId,omitempty"`
}

// ProjectFilterRequest carries the query parameters of the project listing
type ProjectFilterRequest struct {
	Status     string `form:"status"`
	Department string `form:"department"`
	MentorID   int64  `form:"mentorId"`
	Tag        string `form:"tag"`
	Search     string `form:"search"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"pageSize,default=10"`
}

// ProjectListResponse wraps a page of projects
type ProjectListResponse struct {
	Projects   []*models.Project `json:"projects"`
	Pagination PaginationInfo    `json:"pagination"`
}
