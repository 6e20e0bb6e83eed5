package middleware

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/okan/urcp/internal/app/models/dto"
	"github.com/okan/urcp/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handleErr(t *testing.T, err error) (int, dto.APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/test", nil)

	HandleAPIError(c, err)

	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"project not found", apperrors.ErrProjectNotFound, 404, dto.ErrorCodeResourceNotFound},
		{"user not found", apperrors.ErrUserNotFound, 404, dto.ErrorCodeResourceNotFound},
		{"permission denied", apperrors.ErrPermissionDenied, 403, dto.ErrorCodeForbidden},
		{"invalid credentials", apperrors.ErrInvalidCredentials, 401, dto.ErrorCodeInvalidCredentials},
		{"token expired", apperrors.ErrTokenExpired, 401, dto.ErrorCodeExpiredToken},
		{"token invalid", apperrors.ErrTokenInvalid, 401, dto.ErrorCodeInvalidToken},
		{"validation failed", apperrors.ErrValidationFailed, 400, dto.ErrorCodeValidationFailed},
		{"email exists", apperrors.ErrEmailAlreadyExists, 409, dto.ErrorCodeResourceAlreadyExists},
		{"conflict", apperrors.ErrConflict, 409, dto.ErrorCodeConflict},
		{"unexpected", errors.New("boom"), 500, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := handleErr(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestCustomErrorMessagePassthrough(t *testing.T) {
	status, resp := handleErr(t, apperrors.NewForbiddenError("Only the project initiator can delete this project"))
	assert.Equal(t, 403, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Only the project initiator can delete this project", resp.Error.Message)
}

func TestSentinelFallbackMessage(t *testing.T) {
	status, resp := handleErr(t, apperrors.ErrPermissionDenied)
	assert.Equal(t, 403, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Permission denied", resp.Error.Message)
}
