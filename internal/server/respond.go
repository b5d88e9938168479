package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/WellingtonDevBR/immigru-app/internal/journey"
	"github.com/WellingtonDevBR/immigru-app/internal/posts"
	"github.com/WellingtonDevBR/immigru-app/internal/profile"
)

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, apiResponse{Success: false, Error: code, Message: message})
}

// respondServiceError maps service failures onto the response envelope:
// client-input failures become 400, everything else 500.
func (h *httpHandler) respondServiceError(c *gin.Context, err error) {
	if isValidationFailure(err) {
		code := "invalid_request"
		var svcErr *journey.ServiceError
		if errors.As(err, &svcErr) {
			code = svcErr.Code()
		}
		respondError(c, http.StatusBadRequest, code, err.Error())
		return
	}

	var svcErr *journey.ServiceError
	if errors.As(err, &svcErr) {
		h.logger.Error("service operation failed", zap.String("code", svcErr.Code()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, svcErr.Code(), "internal error")
		return
	}

	h.logger.Error("request failed", zap.Error(err))
	respondError(c, http.StatusInternalServerError, "internal_error", "internal error")
}

func isValidationFailure(err error) bool {
	return errors.Is(err, journey.ErrCountryRequired) ||
		errors.Is(err, journey.ErrDeleteWithoutID) ||
		errors.Is(err, journey.ErrInvalidDate) ||
		errors.Is(err, profile.ErrValidation) ||
		errors.Is(err, posts.ErrEmptyContent) ||
		errors.Is(err, posts.ErrUnsafeContent) ||
		errors.Is(err, posts.ErrUnknownFilter)
}
