package services

import (
	"context"

	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/app/models/dto"
	"github.com/okan/urcp/internal/pkg/apperrors"
	"github.com/okan/urcp/internal/pkg/helpers"
)

// UserService defines the interface for user profile operations
type UserService interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, actor models.Actor, req *dto.UpdateProfileRequest) (*models.User, error)
	GetAll(ctx context.Context, role, department, search string, page, pageSize int) ([]*models.User, dto.PaginationInfo, error)
}

type userServiceImpl struct {
	userStore UserStore
}

// NewUserService creates a new UserService
func NewUserService(userStore UserStore) UserService {
	return &userServiceImpl{userStore: userStore}
}

// GetByID retrieves a user by ID
func (s *userServiceImpl) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies the provided profile fields to the actor's record.
// Absent fields keep their current value.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, actor models.Actor, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.NewValidationError("Name cannot be empty")
		}
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Interests != nil {
		user.Interests = req.Interests
	}
	if req.Theme != nil {
		user.Theme = models.Theme(*req.Theme)
	}

	if err := s.userStore.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetAll retrieves users with filtering and pagination
func (s *userServiceImpl) GetAll(ctx context.Context, role, department, search string, page, pageSize int) ([]*models.User, dto.PaginationInfo, error) {
	page, pageSize = helpers.NormalizePagination(page, pageSize)

	users, total, err := s.userStore.GetAll(ctx, role, department, search, page, pageSize)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, helpers.NewPaginationInfo(total, page, pageSize), nil
}
