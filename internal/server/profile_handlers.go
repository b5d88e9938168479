package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WellingtonDevBR/immigru-app/internal/profile"
)

const (
	profileActionSave        = "save"
	profileActionUpdate      = "update"
	profileActionStepData    = "getOnboardingData"
	profileActionCheckStatus = "checkStatus"
)

type profileRequestPayload struct {
	Action string          `json:"action"`
	Step   string          `json:"step"`
	Data   json.RawMessage `json:"data"`
}

func (h *httpHandler) handleGetProfile(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	bundle, err := h.profile.GetBundle(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, bundle)
}

func (h *httpHandler) handlePostProfile(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	var request profileRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	switch request.Action {
	case profileActionSave, profileActionUpdate:
		if request.Step != "" {
			result, err := h.profile.ProcessOnboardingStep(c.Request.Context(), userID, request.Step, request.Data)
			if err != nil {
				h.respondServiceError(c, err)
				return
			}
			respondOK(c, result)
			return
		}
		var update profile.ProfileUpdate
		if len(request.Data) == 0 {
			respondError(c, http.StatusBadRequest, "invalid_request", "data is required")
			return
		}
		if err := json.Unmarshal(request.Data, &update); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", "malformed profile data")
			return
		}
		if _, err := h.profile.CreateProfileIfAbsent(c.Request.Context(), userID); err != nil {
			h.respondServiceError(c, err)
			return
		}
		updated, err := h.profile.UpdateProfile(c.Request.Context(), userID, update)
		if err != nil {
			h.respondServiceError(c, err)
			return
		}
		respondOK(c, updated)
	case profileActionStepData:
		result, err := h.profile.GetOnboardingStepData(c.Request.Context(), userID, request.Step)
		if err != nil {
			h.respondServiceError(c, err)
			return
		}
		respondOK(c, result)
	case profileActionCheckStatus:
		status, err := h.profile.CheckOnboardingStatus(c.Request.Context(), userID)
		if err != nil {
			h.respondServiceError(c, err)
			return
		}
		respondOK(c, status)
	default:
		respondError(c, http.StatusBadRequest, "invalid_action", "unknown profile action")
	}
}
