package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WellingtonDevBR/immigru-app/internal/profile"
)

func (h *httpHandler) handleGetUserLanguages(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	languages, err := h.profile.Languages(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, languages)
}

func (h *httpHandler) handlePostUserLanguages(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	ids, ok := h.readIDSelection(c, "languages")
	if !ok {
		return
	}
	if err := h.profile.ReplaceLanguages(c.Request.Context(), userID, ids); err != nil {
		h.respondServiceError(c, err)
		return
	}
	languages, err := h.profile.Languages(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, languages)
}

func (h *httpHandler) handleGetUserInterests(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	interests, err := h.profile.Interests(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, interests)
}

func (h *httpHandler) handlePostUserInterests(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	ids, ok := h.readIDSelection(c, "interests")
	if !ok {
		return
	}
	if err := h.profile.ReplaceInterests(c.Request.Context(), userID, ids); err != nil {
		h.respondServiceError(c, err)
		return
	}
	interests, err := h.profile.Interests(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, interests)
}

// readIDSelection accepts either a bare array of ids or an object keyed by the
// collection name, tolerating `{id: ...}` object entries in either shape.
func (h *httpHandler) readIDSelection(c *gin.Context, key string) ([]int64, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		respondError(c, http.StatusBadRequest, "invalid_request", "request body is required")
		return nil, false
	}

	trimmed := bytes.TrimSpace(body)
	raw := json.RawMessage(trimmed)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
			return nil, false
		}
		raw = wrapper[key]
	}

	ids, err := profile.DecodeIDList(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return nil, false
	}
	return ids, true
}
