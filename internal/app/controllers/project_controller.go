package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/app/models/dto"
	"github.com/okan/urcp/internal/app/services"
	"github.com/okan/urcp/internal/middleware"
	"github.com/okan/urcp/internal/pkg/filestorage"
	"github.com/okan/urcp/internal/pkg/helpers"
	"github.com/okan/urcp/internal/pkg/logger"
)

// ProjectController handles project lifecycle, participation and discussion
// endpoints
type ProjectController struct {
	projectService services.ProjectService
	fileStorage    *filestorage.LocalStorage
}

// NewProjectController creates a new ProjectController
func NewProjectController(projectService services.ProjectService, fileStorage *filestorage.LocalStorage) *ProjectController {
	return &ProjectController{
		projectService: projectService,
		fileStorage:    fileStorage,
	}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithDetails(name + " must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

func requireActor(ctx *gin.Context) (models.Actor, bool) {
	a, ok := middleware.GetActor(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "User not authenticated")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
	}
	return a, ok
}

func parsePageParams(ctx *gin.Context) (page, pageSize int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = helpers.DefaultPage
	}
	pageSize, err = strconv.Atoi(ctx.DefaultQuery("pageSize", "10"))
	if err != nil || pageSize <= 0 || pageSize > helpers.MaxPageSize {
		pageSize = helpers.DefaultPageSize
	}
	return page, pageSize
}

// GetAllProjects handles listing projects with optional filtering
// @Summary List projects
// @Description Retrieves projects with optional filtering and pagination
// @Tags projects
// @Produce json
// @Param status query string false "Filter by lifecycle status"
// @Param department query string false "Filter by department"
// @Param mentorId query int false "Filter by mentor ID"
// @Param tag query string false "Filter by tag"
// @Param search query string false "Search in title and description"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.ProjectListResponse}
// @Router /projects [get]
func (c *ProjectController) GetAllProjects(ctx *gin.Context) {
	var filter dto.ProjectFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.projectService.GetAll(ctx, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetProjectByID handles retrieving a full project by ID
// @Summary Get project by ID
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} dto.APIResponse{data=models.Project}
// @Failure 404 {object} dto.APIResponse
// @Router /projects/{id} [get]
func (c *ProjectController) GetProjectByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	project, err := c.projectService.GetByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(project))
}

// CreateProject handles creating a new project
// @Summary Create a project
// @Description Students create proposals; faculty projects start approved with the creator as mentor
// @Tags projects
// @Accept json
// @Produce json
// @Param request body dto.CreateProjectRequest true "Project payload"
// @Success 201 {object} dto.APIResponse{data=models.Project}
// @Failure 400 {object} dto.APIResponse
// @Router /projects [post]
func (c *ProjectController) CreateProject(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	project, err := c.projectService.Create(ctx, a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(project))
}

// GetMyProjects handles listing the caller's projects
// @Summary List my projects
// @Description Projects the caller initiated, mentors or joined with an accepted role
// @Tags projects
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ProjectListResponse}
// @Router /projects/my [get]
func (c *ProjectController) GetMyProjects(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}

	page, pageSize := parsePageParams(ctx)
	response, err := c.projectService.GetMine(ctx, a, page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetPendingProjects handles listing proposals awaiting mentor approval
// @Summary List pending proposals
// @Tags projects
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ProjectListResponse}
// @Failure 403 {object} dto.APIResponse
// @Router /projects/pending [get]
func (c *ProjectController) GetPendingProjects(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}

	page, pageSize := parsePageParams(ctx)
	response, err := c.projectService.GetPending(ctx, a, page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// UpdateProject handles replacing project details
// @Summary Update project details
// @Description Replaces title, description, department, open roles and tags wholesale
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body dto.UpdateProjectRequest true "Updated details"
// @Success 200 {object} dto.APIResponse{data=models.Project}
// @Router /projects/{id} [put]
func (c *ProjectController) UpdateProject(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	project, err := c.projectService.Update(ctx, a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(project))
}

// DeleteProject handles deleting a project
// @Summary Delete a project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} dto.APIResponse
// @Router /projects/{id} [delete]
func (c *ProjectController) DeleteProject(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.projectService.Delete(ctx, a, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Project deleted successfully"))
}

// SetProjectStatus handles lifecycle transitions
// @Summary Set project status
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body dto.SetStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Project}
// @Router /projects/{id}/status [put]
func (c *ProjectController) SetProjectStatus(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	project, err := c.projectService.SetStatus(ctx, a, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(project))
}

// ApproveAsMentor handles a faculty member approving a proposal as mentor
// @Summary Approve a proposal as mentor
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} dto.APIResponse{data=models.Project}
// @Failure 409 {object} dto.APIResponse
// @Router /projects/{id}/approve-as-mentor [post]
func (c *ProjectController) ApproveAsMentor(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	project, err := c.projectService.ApproveAsMentor(ctx, a, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(project))
}

// UpdateProgress handles updating the completion percentage
// @Summary Update project progress
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body dto.UpdateProgressRequest true "Progress percentage"
// @Success 200 {object} dto.APIResponse{data=models.Project}
// @Router /projects/{id}/progress [put]
func (c *ProjectController) UpdateProgress(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.ProgressPercentage == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Progress percentage is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	project, err := c.projectService.UpdateProgress(ctx, a, id, *req.ProgressPercentage)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(project))
}

// Participate handles the request/invite/accept/reject workflow
// @Summary Manage participation
// @Description One endpoint for requesting a role, inviting a user, and accepting or rejecting a pending record
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body dto.ParticipationRequest true "Participation command"
// @Success 200 {object} dto.APIResponse{data=models.Project}
// @Failure 403 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /projects/{id}/participation [post]
func (c *ProjectController) Participate(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ParticipationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	project, err := c.projectService.Participate(ctx, a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(project))
}

// AddComment handles posting a comment or a one-level reply
// @Summary Add a comment or reply
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body dto.CommentRequest true "Comment payload"
// @Success 201 {object} dto.APIResponse{data=models.Project}
// @Router /projects/{id}/comments [post]
func (c *ProjectController) AddComment(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Comment text is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	project, err := c.projectService.AddComment(ctx, a, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(project))
}

// AddAttachment handles uploading a file onto a project
// @Summary Add an attachment
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Project ID"
// @Param title formData string true "Attachment title"
// @Param file formData file true "File to attach"
// @Success 201 {object} dto.APIResponse{data=models.Attachment}
// @Router /projects/{id}/attachments [post]
func (c *ProjectController) AddAttachment(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	title := ctx.PostForm("title")
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid or missing file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	fileURL, fileKey, err := c.fileStorage.SaveFile(fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	attachment, err := c.projectService.AddAttachment(ctx, a, id, title, fileURL, fileKey)
	if err != nil {
		// The aggregate rejected the attachment; drop the orphaned file
		_ = c.fileStorage.DeleteFile(fileKey)
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(attachment))
}

// DeleteAttachment handles removing a file from a project
// @Summary Delete an attachment
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Param attachmentId path int true "Attachment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /projects/{id}/attachments/{attachmentId} [delete]
func (c *ProjectController) DeleteAttachment(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	attachmentID, ok := parseIDParam(ctx, "attachmentId")
	if !ok {
		return
	}

	attachment, err := c.projectService.RemoveAttachment(ctx, a, id, attachmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.fileStorage.DeleteFile(attachment.FileKey); err != nil {
		// The record is already gone; losing the blob is not a client error
		logger.Warn().Err(err).Str("fileKey", attachment.FileKey).Msg("Failed to delete attachment file")
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Attachment deleted"))
}
