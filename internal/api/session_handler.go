package api

import (
	"alcyxob/flexplan/internal/domain"
	"alcyxob/flexplan/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionHandler holds the session service dependency.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- DTOs ---

type OpenSessionResponse struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionStateResponse struct {
	SessionID    string               `json:"sessionId"`
	State        service.State        `json:"state"`
	HasPlan      bool                 `json:"hasPlan"`
	CreatedAt    time.Time            `json:"createdAt"`
	LastActiveAt time.Time            `json:"lastActiveAt"`
	Transcript   []domain.ChatMessage `json:"transcript"`
}

// --- Handler Methods ---

// OpenSession godoc
// @Summary Start a planning session
// @Tags Sessions
// @Produce json
// @Success 201 {object} OpenSessionResponse
// @Router /sessions [post]
func (h *SessionHandler) OpenSession(c *gin.Context) {
	opened, err := h.sessionService.Open(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, OpenSessionResponse{
		SessionID: opened.Info.ID,
		Token:     opened.Token,
		ExpiresAt: opened.ExpiresAt,
	})
}

// GetSession godoc
// @Summary Show whether an operation is running, whether a plan exists, and the revision transcript
// @Tags Sessions
// @Produce json
// @Success 200 {object} SessionStateResponse
// @Failure 404 {object} gin.H "Session not found"
// @Router /session [get]
// @Security BearerAuth
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, ok := sessionIDOrAbort(c)
	if !ok {
		return
	}
	sess, info, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionStateResponse{
		SessionID:    info.ID,
		State:        sess.Plans.State(),
		HasPlan:      sess.Plans.HasPlan(),
		CreatedAt:    info.CreatedAt,
		LastActiveAt: info.LastActiveAt,
		Transcript:   sess.Transcript(),
	})
}

// ResetSession godoc
// @Summary Drop the current plan and transcript
// @Tags Sessions
// @Success 204
// @Router /session [delete]
// @Security BearerAuth
func (h *SessionHandler) ResetSession(c *gin.Context) {
	sessionID, ok := sessionIDOrAbort(c)
	if !ok {
		return
	}
	if err := h.sessionService.Reset(c.Request.Context(), sessionID); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func sessionIDOrAbort(c *gin.Context) (string, bool) {
	sessionID, err := getSessionIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get session ID from token")
		return "", false
	}
	return sessionID, true
}
