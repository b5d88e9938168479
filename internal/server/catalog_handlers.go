package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *httpHandler) handleListLanguages(c *gin.Context) {
	languages, err := h.catalog.ListLanguages(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, languages)
}

func (h *httpHandler) handleListInterests(c *gin.Context) {
	interests, err := h.catalog.ListInterests(c.Request.Context(), c.Query("name"), c.Query("category"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, interests)
}

func (h *httpHandler) handleListCountryVisas(c *gin.Context) {
	countryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || countryID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_request", "country id must be a positive integer")
		return
	}
	visas, err := h.catalog.ListCountryVisas(c.Request.Context(), countryID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	respondOK(c, visas)
}
