package services

import (
	"context"

	"github.com/okan/urcp/internal/app/engine"
	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/app/models/dto"
	"github.com/okan/urcp/internal/app/repositories"
	"github.com/okan/urcp/internal/pkg/apperrors"
	"github.com/okan/urcp/internal/pkg/helpers"
)

// ProjectService defines the interface for project operations. Every mutation
// follows the same shape: load the aggregate, run the corresponding engine
// function, save the aggregate, then dispatch the produced notification
// intents after the commit.
type ProjectService interface {
	Create(ctx context.Context, actor models.Actor, req *dto.CreateProjectRequest) (*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	GetAll(ctx context.Context, filter *dto.ProjectFilterRequest) (*dto.ProjectListResponse, error)
	GetMine(ctx context.Context, actor models.Actor, page, pageSize int) (*dto.ProjectListResponse, error)
	GetPending(ctx context.Context, actor models.Actor, page, pageSize int) (*dto.ProjectListResponse, error)
	Update(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateProjectRequest) (*models.Project, error)
	Delete(ctx context.Context, actor models.Actor, id int64) error
	SetStatus(ctx context.Context, actor models.Actor, id int64, status string) (*models.Project, error)
	ApproveAsMentor(ctx context.Context, actor models.Actor, id int64) (*models.Project, error)
	UpdateProgress(ctx context.Context, actor models.Actor, id int64, progress int) (*models.Project, error)
	Participate(ctx context.Context, actor models.Actor, id int64, req *dto.ParticipationRequest) (*models.Project, error)
	AddComment(ctx context.Context, actor models.Actor, id int64, req *dto.CommentRequest) (*models.Project, error)
	AddAttachment(ctx context.Context, actor models.Actor, id int64, title, fileURL, fileKey string) (*models.Attachment, error)
	RemoveAttachment(ctx context.Context, actor models.Actor, id, attachmentID int64) (*models.Attachment, error)
}

type projectServiceImpl struct {
	projectStore  ProjectStore
	userStore     UserStore
	notifications NotificationService
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectStore ProjectStore, userStore UserStore, notifications NotificationService) ProjectService {
	return &projectServiceImpl{
		projectStore:  projectStore,
		userStore:     userStore,
		notifications: notifications,
	}
}

// mutate runs an engine function against the loaded aggregate, persists the
// result and dispatches the intents. Intents are only dispatched after a
// successful save.
func (s *projectServiceImpl) mutate(ctx context.Context, id int64, fn func(p *models.Project) ([]engine.NotificationIntent, error)) (*models.Project, error) {
	project, err := s.projectStore.GetAggregate(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperrors.ErrProjectNotFound
	}

	intents, err := fn(project)
	if err != nil {
		return nil, err
	}

	if err := s.projectStore.SaveAggregate(ctx, project); err != nil {
		return nil, err
	}

	s.notifications.Dispatch(ctx, project.ID, intents)
	return project, nil
}

func toOpenRoles(reqs []dto.OpenRoleRequest) []models.OpenRole {
	roles := make([]models.OpenRole, 0, len(reqs))
	for _, r := range reqs {
		roles = append(roles, models.OpenRole{Title: r.Title, Description: r.Description})
	}
	return roles
}

// Create creates a new project for the actor
func (s *projectServiceImpl) Create(ctx context.Context, actor models.Actor, req *dto.CreateProjectRequest) (*models.Project, error) {
	project, err := engine.CreateProject(actor, engine.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		OpenRoles:   toOpenRoles(req.OpenRoles),
		Tags:        req.Tags,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.projectStore.Create(ctx, project); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, project.ID)
}

// GetByID retrieves the full project aggregate
func (s *projectServiceImpl) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	project, err := s.projectStore.GetAggregate(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperrors.ErrProjectNotFound
	}
	return project, nil
}

// GetAll retrieves projects with filtering and pagination
func (s *projectServiceImpl) GetAll(ctx context.Context, filter *dto.ProjectFilterRequest) (*dto.ProjectListResponse, error) {
	page, pageSize := helpers.NormalizePagination(filter.Page, filter.PageSize)

	projects, total, err := s.projectStore.GetAll(ctx, repositories.ProjectFilter{
		Status:     filter.Status,
		Department: filter.Department,
		MentorID:   filter.MentorID,
		Tag:        filter.Tag,
		Search:     filter.Search,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, err
	}

	return newProjectListResponse(projects, total, page, pageSize), nil
}

// GetMine retrieves the projects the actor initiated, mentors or joined
func (s *projectServiceImpl) GetMine(ctx context.Context, actor models.Actor, page, pageSize int) (*dto.ProjectListResponse, error) {
	page, pageSize = helpers.NormalizePagination(page, pageSize)

	projects, total, err := s.projectStore.GetByMember(ctx, actor.ID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return newProjectListResponse(projects, total, page, pageSize), nil
}

// GetPending retrieves proposed projects awaiting mentor approval. Faculty
// only.
func (s *projectServiceImpl) GetPending(ctx context.Context, actor models.Actor, page, pageSize int) (*dto.ProjectListResponse, error) {
	if !actor.IsFaculty() {
		return nil, apperrors.NewForbiddenError("Only faculty members can view pending proposals")
	}
	page, pageSize = helpers.NormalizePagination(page, pageSize)

	projects, total, err := s.projectStore.GetPending(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return newProjectListResponse(projects, total, page, pageSize), nil
}

func newProjectListResponse(projects []*models.Project, total int64, page, pageSize int) *dto.ProjectListResponse {
	if projects == nil {
		projects = []*models.Project{}
	}
	return &dto.ProjectListResponse{
		Projects:   projects,
		Pagination: helpers.NewPaginationInfo(total, page, pageSize),
	}
}

// Update replaces the editable project details wholesale
func (s *projectServiceImpl) Update(ctx context.Context, actor models.Actor, id int64, req *dto.UpdateProjectRequest) (*models.Project, error) {
	return s.mutate(ctx, id, func(p *models.Project) ([]engine.NotificationIntent, error) {
		return nil, engine.UpdateDetails(actor, p, engine.DetailsPatch{
			Title:       req.Title,
			Description: req.Description,
			Department:  req.Department,
			OpenRoles:   toOpenRoles(req.OpenRoles),
			Tags:        req.Tags,
		})
	})
}

// Delete removes a project. Only the initiator may delete.
func (s *projectServiceImpl) Delete(ctx context.Context, actor models.Actor, id int64) error {
	project, err := s.projectStore.GetAggregate(ctx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return apperrors.ErrProjectNotFound
	}
	if !project.IsInitiator(actor.ID) {
		return apperrors.NewForbiddenError("Only the project initiator can delete this project")
	}
	return s.projectStore.Delete(ctx, id)
}

// SetStatus moves the project through its lifecycle
func (s *projectServiceImpl) SetStatus(ctx context.Context, actor models.Actor, id int64, status string) (*models.Project, error) {
	return s.mutate(ctx, id, func(p *models.Project) ([]engine.NotificationIntent, error) {
		return engine.SetStatus(actor, p, models.ProjectStatus(status))
	})
}

// ApproveAsMentor approves a proposed project with the actor as mentor
func (s *projectServiceImpl) ApproveAsMentor(ctx context.Context, actor models.Actor, id int64) (*models.Project, error) {
	return s.mutate(ctx, id, func(p *models.Project) ([]engine.NotificationIntent, error) {
		return engine.ApproveAsMentor(actor, p)
	})
}

// UpdateProgress sets the project's completion percentage
func (s *projectServiceImpl) UpdateProgress(ctx context.Context, actor models.Actor, id int64, progress int) (*models.Project, error) {
	return s.mutate(ctx, id, func(p *models.Project) ([]engine.NotificationIntent, error) {
		return nil, engine.UpdateProgress(actor, p, progress)
	})
}

// Participate handles request, invite, accept and reject in one entry point
func (s *projectServiceImpl) Participate(ctx context.Context, actor models.Actor, id int64, req *dto.ParticipationRequest) (*models.Project, error) {
	cmd := engine.ParticipationCommand{
		Action:       engine.ParticipationAction(req.Action),
		Role:         req.Role,
		TargetUserID: req.TargetUserID,
	}

	// An invitation target must be a real user
	if cmd.Action == engine.ActionInvite && cmd.TargetUserID != 0 {
		target, err := s.userStore.GetByID(ctx, cmd.TargetUserID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, apperrors.ErrUserNotFound
		}
		cmd.TargetName = target.Name
	}

	return s.mutate(ctx, id, func(p *models.Project) ([]engine.NotificationIntent, error) {
		return engine.Participate(actor, p, cmd)
	})
}

// AddComment posts a top-level comment or a one-level reply
func (s *projectServiceImpl) AddComment(ctx context.Context, actor models.Actor, id int64, req *dto.CommentRequest) (*models.Project, error) {
	return s.mutate(ctx, id, func(p *models.Project) ([]engine.NotificationIntent, error) {
		return engine.AddComment(actor, p, req.Text, req.ParentCommentID)
	})
}

// AddAttachment records an uploaded file on the project
func (s *projectServiceImpl) AddAttachment(ctx context.Context, actor models.Actor, id int64, title, fileURL, fileKey string) (*models.Attachment, error) {
	var attachment *models.Attachment
	_, err := s.mutate(ctx, id, func(p *models.Project) ([]engine.NotificationIntent, error) {
		var err error
		attachment, err = engine.AddAttachment(actor, p, title, fileURL, fileKey)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return attachment, nil
}

// RemoveAttachment detaches a file from the project and returns the removed
// record so the caller can clean up the stored blob
func (s *projectServiceImpl) RemoveAttachment(ctx context.Context, actor models.Actor, id, attachmentID int64) (*models.Attachment, error) {
	project, err := s.projectStore.GetAggregate(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperrors.ErrProjectNotFound
	}

	attachment, err := engine.RemoveAttachment(actor, project, attachmentID)
	if err != nil {
		return nil, err
	}

	if err := s.projectStore.DeleteAttachment(ctx, id, attachmentID); err != nil {
		return nil, err
	}
	return attachment, nil
}
