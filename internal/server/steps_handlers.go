package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WellingtonDevBR/immigru-app/internal/journey"
)

const (
	stepsActionSave = "save"
	stepsActionGet  = "get"
)

type stepsRequestPayload struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

func (h *httpHandler) handleGetSteps(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	steps, err := h.journey.ListSteps(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, steps)
}

func (h *httpHandler) handlePostSteps(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	var request stepsRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	switch request.Action {
	case stepsActionGet:
		steps, err := h.journey.ListSteps(c.Request.Context(), userID)
		if err != nil {
			h.respondServiceError(c, err)
			return
		}
		respondOK(c, steps)
	case stepsActionSave:
		if len(request.Data) == 0 {
			respondError(c, http.StatusBadRequest, "invalid_request", "data must be an array of step changes")
			return
		}
		changes, err := journey.DecodeStepChanges(request.Data)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		results, err := h.journey.ReconcileSteps(c.Request.Context(), userID, changes)
		if err != nil {
			h.respondServiceError(c, err)
			return
		}
		respondOK(c, results)
	default:
		respondError(c, http.StatusBadRequest, "invalid_action", "action must be save or get")
	}
}
