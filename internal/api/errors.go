package api

import (
	"alcyxob/flexplan/internal/generation"
	"alcyxob/flexplan/internal/plan"
	"alcyxob/flexplan/internal/service"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondWithServiceError maps service and engine errors to HTTP responses.
func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		abortWithErrorCode(c, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, service.ErrNoCurrentPlan):
		abortWithErrorCode(c, http.StatusNotFound, "no_plan", err.Error())
	case errors.Is(err, service.ErrOperationInFlight):
		abortWithErrorCode(c, http.StatusConflict, "operation_in_flight", err.Error())
	case errors.Is(err, service.ErrStaleResult):
		abortWithErrorCode(c, http.StatusConflict, "stale_result", err.Error())
	case errors.Is(err, service.ErrEmptyInstruction), errors.Is(err, service.ErrEmptyImportText):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case generation.IsGenerationError(err):
		abortWithErrorCode(c, http.StatusBadGateway, "generation_failed",
			"The workout service could not produce a plan. Please try again.")
	case plan.IsMalformedPlan(err):
		abortWithErrorCode(c, http.StatusBadGateway, "malformed_plan",
			"The workout service returned a plan that could not be read. Please try again.")
	default:
		log.Printf("ERROR: Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
