package api

import (
	"alcyxob/flexplan/internal/domain"
	"alcyxob/flexplan/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves the current plan of a session and the operations that replace it.
type PlanHandler struct {
	sessionService service.SessionService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(sessionService service.SessionService) *PlanHandler {
	return &PlanHandler{sessionService: sessionService}
}

// --- DTOs ---

// CreatePlanRequest mirrors domain.UserPreferences with the accepted values spelled out.
type CreatePlanRequest struct {
	Goal       domain.Goal       `json:"goal" binding:"required,oneof=Strength Hypertrophy Endurance 'Weight Loss' Flexibility"`
	Difficulty domain.Difficulty `json:"difficulty" binding:"required,oneof=Beginner Intermediate Advanced"`
	Equipment  domain.Equipment  `json:"equipment" binding:"required,oneof=Gym 'Dumbbells Only' Bodyweight 'Home Gym'"`
	Duration   int               `json:"duration" binding:"required,min=15,max=120"`
	FocusArea  string            `json:"focusArea" binding:"required,max=200"`
	Notes      string            `json:"notes" binding:"max=2000"`
}

type ImportPlanRequest struct {
	Text string `json:"text" binding:"required,max=20000"`
}

type RevisePlanRequest struct {
	Instruction string `json:"instruction" binding:"required,max=2000"`
}

// ExerciseResponse is an exercise plus a ready-made video search link.
type ExerciseResponse struct {
	domain.Exercise
	VideoSearchURL string `json:"videoSearchUrl"`
}

type PlanResponse struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	TotalDuration string             `json:"totalDuration"`
	Difficulty    string             `json:"difficulty"`
	Exercises     []ExerciseResponse `json:"exercises"`
	Tips          []string           `json:"tips"`
}

// MapPlanToResponse converts a domain.WorkoutPlan to PlanResponse DTO.
func MapPlanToResponse(p *domain.WorkoutPlan) PlanResponse {
	if p == nil {
		return PlanResponse{}
	}
	resp := PlanResponse{
		Title:         p.Title,
		Description:   p.Description,
		TotalDuration: p.TotalDuration,
		Difficulty:    p.Difficulty,
		Exercises:     make([]ExerciseResponse, len(p.Exercises)),
		Tips:          p.Tips,
	}
	if resp.Tips == nil {
		resp.Tips = []string{}
	}
	for i, ex := range p.Exercises {
		resp.Exercises[i] = ExerciseResponse{Exercise: ex, VideoSearchURL: ex.VideoSearchURL()}
	}
	return resp
}

// --- Handler Methods ---

// GetPlan godoc
// @Summary Get the session's current plan
// @Tags Plans
// @Produce json
// @Success 200 {object} PlanResponse
// @Failure 404 {object} gin.H "No plan yet"
// @Router /session/plan [get]
// @Security BearerAuth
func (h *PlanHandler) GetPlan(c *gin.Context) {
	sessionID, ok := sessionIDOrAbort(c)
	if !ok {
		return
	}
	sess, _, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	current := sess.Plans.Current()
	if current == nil {
		respondWithServiceError(c, service.ErrNoCurrentPlan)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(current))
}

// CreatePlan godoc
// @Summary Generate a plan from preferences
// @Tags Plans
// @Accept json
// @Produce json
// @Param preferences body CreatePlanRequest true "Workout preferences"
// @Success 201 {object} PlanResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Another operation is running"
// @Failure 502 {object} gin.H "Generation failed or returned an unusable plan"
// @Router /session/plan [post]
// @Security BearerAuth
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	sessionID, ok := sessionIDOrAbort(c)
	if !ok {
		return
	}
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	prefs := domain.UserPreferences{
		Goal:       req.Goal,
		Difficulty: req.Difficulty,
		Equipment:  req.Equipment,
		Duration:   req.Duration,
		FocusArea:  req.FocusArea,
		Notes:      req.Notes,
	}
	p, err := h.sessionService.CreatePlan(c.Request.Context(), sessionID, prefs)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(p))
}

// ImportPlan godoc
// @Summary Turn pasted workout text into a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param body body ImportPlanRequest true "Workout text"
// @Success 201 {object} PlanResponse
// @Router /session/plan/import [post]
// @Security BearerAuth
func (h *PlanHandler) ImportPlan(c *gin.Context) {
	sessionID, ok := sessionIDOrAbort(c)
	if !ok {
		return
	}
	var req ImportPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	p, err := h.sessionService.ImportPlan(c.Request.Context(), sessionID, req.Text)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(p))
}

// RevisePlan godoc
// @Summary Revise the current plan with a natural-language instruction
// @Tags Plans
// @Accept json
// @Produce json
// @Param body body RevisePlanRequest true "Instruction"
// @Success 200 {object} PlanResponse
// @Failure 404 {object} gin.H "No plan to revise"
// @Router /session/plan/revisions [post]
// @Security BearerAuth
func (h *PlanHandler) RevisePlan(c *gin.Context) {
	sessionID, ok := sessionIDOrAbort(c)
	if !ok {
		return
	}
	var req RevisePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	p, err := h.sessionService.RevisePlan(c.Request.Context(), sessionID, req.Instruction)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(p))
}
