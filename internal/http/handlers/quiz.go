package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/typecast-backend/internal/http/response"
	"github.com/yungbote/typecast-backend/internal/platform/ctxutil"
	"github.com/yungbote/typecast-backend/internal/services"
)

type QuizHandler struct {
	sessions services.SessionService
	retake   services.RetakeService
	ipSalt   string
}

func NewQuizHandler(sessions services.SessionService, retake services.RetakeService, ipSalt string) *QuizHandler {
	return &QuizHandler{sessions: sessions, retake: retake, ipSalt: ipSalt}
}

// GET /api/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	q, err := h.sessions.GetQuiz(dbcFrom(c), quizID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quiz": q})
}

// POST /api/quizzes/:id/sessions
func (h *QuizHandler) StartSession(c *gin.Context) {
	quizID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		RetakeOf *uuid.UUID `json:"retake_of"`
		Locale   string     `json:"locale"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = c.GetHeader("Accept-Language")
	}
	in := services.StartSessionInput{
		QuizID:   quizID,
		Identity: ctxutil.Identity(c.Request.Context()),
		RetakeOf: req.RetakeOf,
		Metadata: services.ClientMetadata{
			UserAgent: c.Request.UserAgent(),
			Locale:    locale,
			Referrer:  c.Request.Referer(),
			IPHash:    services.HashIP(c.ClientIP(), h.ipSalt),
		},
	}
	s, err := h.sessions.StartSession(dbcFrom(c), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"session": s})
}

// PUT /api/sessions/:id/responses
func (h *QuizHandler) SubmitResponse(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		QuestionID uuid.UUID `json:"question_id" binding:"required"`
		Value      *int      `json:"value" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.sessions.SubmitResponse(dbcFrom(c), sessionID, req.QuestionID, *req.Value)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": p})
}

// POST /api/sessions/:id/complete
func (h *QuizHandler) CompleteSession(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	s, err := h.sessions.CompleteSession(dbcFrom(c), sessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": s})
}

// GET /api/sessions/:id/retake-prefill?quiz_id=
func (h *QuizHandler) GetRetakePrefill(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	quizID, err := uuid.Parse(strings.TrimSpace(c.Query("quiz_id")))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_quiz_id", err)
		return
	}
	p, err := h.retake.GetRetakePrefill(dbcFrom(c), sessionID, quizID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"prefill": p})
}
