package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/typecast-backend/internal/http/response"
	"github.com/yungbote/typecast-backend/internal/services"
)

type ResultHandler struct {
	results services.ResultService
	sharing services.SharingService
}

func NewResultHandler(results services.ResultService, sharing services.SharingService) *ResultHandler {
	return &ResultHandler{results: results, sharing: sharing}
}

// POST /api/sessions/:id/result
func (h *ResultHandler) CalculateResult(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.results.CalculateResult(dbcFrom(c), sessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// GET /api/sessions/:id/result
func (h *ResultHandler) GetResult(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.results.GetResult(dbcFrom(c), sessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// GET /api/me/result
func (h *ResultHandler) GetMyResult(c *gin.Context) {
	rd, ok := requireIdentity(c)
	if !ok {
		return
	}
	res, err := h.results.GetLatestResultForIdentity(dbcFrom(c), rd.Identity)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// POST /api/sessions/:id/link
func (h *ResultHandler) LinkResult(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rd, ok := requireIdentity(c)
	if !ok {
		return
	}
	out, err := h.sharing.LinkResult(dbcFrom(c), sessionID, rd.Identity, services.ProfileClaims{
		DisplayName: rd.DisplayName,
		Email:       rd.Email,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}
