package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/typecast-backend/internal/http/response"
	"github.com/yungbote/typecast-backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /api/me
func (h *ProfileHandler) GetMe(c *gin.Context) {
	rd, ok := requireIdentity(c)
	if !ok {
		return
	}
	p, err := h.profiles.EnsureProfile(dbcFrom(c), rd.Identity, services.ProfileClaims{
		DisplayName: rd.DisplayName,
		Email:       rd.Email,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// PUT /api/me/slug
func (h *ProfileHandler) ClaimSlug(c *gin.Context) {
	rd, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Slug string `json:"slug" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profiles.ClaimSlug(dbcFrom(c), rd.Identity, req.Slug)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// PATCH /api/me/onboarding
func (h *ProfileHandler) UpdateOnboarding(c *gin.Context) {
	rd, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req services.OnboardingInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profiles.UpdateOnboarding(dbcFrom(c), rd.Identity, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// GET /api/slugs/:slug/availability
func (h *ProfileHandler) CheckSlugAvailability(c *gin.Context) {
	out, err := h.profiles.CheckSlugAvailability(dbcFrom(c), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}
