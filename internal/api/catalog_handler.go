package api

import (
	"alcyxob/flexplan/internal/domain"
	"alcyxob/flexplan/internal/prompt"
	"alcyxob/flexplan/internal/schema"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSchema returns the JSON form of the plan schema the service is held to.
func GetSchema(c *gin.Context) {
	raw, err := schema.JSON()
	if err != nil {
		log.Printf("ERROR: Failed to render plan schema: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Could not render schema")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// GetSuggestions returns the quick revision prompts.
func GetSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": prompt.Suggestions()})
}

// GetDefaultPreferences returns the preferences the form starts with.
func GetDefaultPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, domain.DefaultPreferences())
}
