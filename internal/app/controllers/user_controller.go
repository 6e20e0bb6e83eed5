package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okan/urcp/internal/app/models/dto"
	"github.com/okan/urcp/internal/app/services"
	"github.com/okan/urcp/internal/middleware"
)

// UserController handles profile and people-listing endpoints
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// GetMe handles retrieving the caller's profile
// @Summary Get my profile
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Router /users/me [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}

	user, err := c.userService.GetByID(ctx, a.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// UpdateMe handles updating the caller's profile
// @Summary Update my profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Router /users/me [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	a, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	user, err := c.userService.UpdateProfile(ctx, a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// GetAllUsers handles the people listing
// @Summary List users
// @Tags users
// @Produce json
// @Param role query string false "Filter by role (student, faculty)"
// @Param department query string false "Filter by department"
// @Param search query string false "Search in name and email"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.User}
// @Router /users [get]
func (c *UserController) GetAllUsers(ctx *gin.Context) {
	page, pageSize := parsePageParams(ctx)

	users, pagination, err := c.userService.GetAll(ctx,
		ctx.Query("role"), ctx.Query("department"), ctx.Query("search"), page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"users":      users,
		"pagination": pagination,
	}))
}
