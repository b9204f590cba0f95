package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/typecast-backend/internal/http/response"
	"github.com/yungbote/typecast-backend/internal/services"
)

const headerPasscode = "X-Passcode"

type SharingHandler struct {
	sharing services.SharingService
}

func NewSharingHandler(sharing services.SharingService) *SharingHandler {
	return &SharingHandler{sharing: sharing}
}

// POST /api/sessions/:id/sharing
func (h *SharingHandler) ToggleSharing(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rd, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req struct {
		IsPublic *bool   `json:"is_public" binding:"required"`
		Passcode *string `json:"passcode"`
	}
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.sharing.ToggleSharing(dbcFrom(c), services.ToggleSharingInput{
		SessionID: sessionID,
		Identity:  rd.Identity,
		Display:   services.ProfileClaims{DisplayName: rd.DisplayName, Email: rd.Email},
		IsPublic:  *req.IsPublic,
		Passcode:  req.Passcode,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sharing": st})
}

// GET /api/public/:slug
func (h *SharingHandler) GetPublicResult(c *gin.Context) {
	passcode := strings.TrimSpace(c.GetHeader(headerPasscode))
	if passcode == "" {
		passcode = strings.TrimSpace(c.Query("passcode"))
	}
	out, err := h.sharing.GetPublicResult(dbcFrom(c), c.Param("slug"), passcode)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/public/:slug/passcode
func (h *SharingHandler) ValidatePasscode(c *gin.Context) {
	var req struct {
		Passcode string `json:"passcode"`
	}
	if !bindJSON(c, &req) {
		return
	}
	check, err := h.sharing.ValidatePasscode(dbcFrom(c), c.Param("slug"), req.Passcode)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, check)
}
