package configmanagement

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-content-replacer-pro/backend/internal/auth"
	"ai-content-replacer-pro/backend/internal/datastore"
)

// GetBusinessProfileHandler returns the caller's business profile, or 404
// if none has been saved yet.
func GetBusinessProfileHandler(c *gin.Context) {
	userID := auth.UserID(c)

	profile, err := datastore.GetBusinessProfile(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve business profile: " + err.Error()})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business profile not set up yet"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SaveBusinessProfileHandler creates or updates the caller's business
// profile. The profile feeds the business context block of every prompt.
func SaveBusinessProfileHandler(c *gin.Context) {
	userID := auth.UserID(c)

	var profile datastore.BusinessProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if profile.BusinessName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Business name is a required field"})
		return
	}

	profile.UserID = userID
	if _, err := datastore.SaveBusinessProfile(&profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save business profile: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, profile)
}
