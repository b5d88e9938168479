package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/WellingtonDevBR/immigru-app/internal/posts"
)

func (h *httpHandler) handleCreatePost(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	var input posts.CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	created, err := h.posts.CreatePost(c.Request.Context(), userID, input)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, created)
}

func (h *httpHandler) handleFetchFeed(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	var query posts.FeedQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	feed, err := h.posts.FetchFeed(c.Request.Context(), userID, query)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, feed)
}

// With an ids parameter the handler resolves those groves instead of
// recommending.
func (h *httpHandler) handleRecommendedGroves(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	if rawIDs := c.Query("ids"); rawIDs != "" {
		groveIDs := strings.Split(rawIDs, ",")
		for index := range groveIDs {
			groveIDs[index] = strings.TrimSpace(groveIDs[index])
		}
		groves, err := h.posts.GrovesByIDs(c.Request.Context(), groveIDs)
		if err != nil {
			h.respondServiceError(c, err)
			return
		}
		respondOK(c, groves)
		return
	}

	limit := 0
	if rawLimit := c.Query("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", "limit must be an integer")
			return
		}
		limit = parsed
	}

	groves, err := h.posts.RecommendGroves(c.Request.Context(), userID, limit)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, groves)
}
