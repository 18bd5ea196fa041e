package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/devonochie/academia-ai/api/middleware"
	"github.com/devonochie/academia-ai/api/models"
	"github.com/devonochie/academia-ai/api/services"
)

type GenerateRecommendationsRequest struct {
	LearningGoals []string `json:"learningGoals"`
}

type generatedRecommendation struct {
	Analysis        json.RawMessage `json:"analysis"`
	Recommendations json.RawMessage `json:"recommendations"`
}

func (h *Handler) GenerateRecommendations(c *gin.Context) {
	var req GenerateRecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)

	// Summarize the user's progress as generation context
	var records []models.UserProgress
	if err := h.db.Where("user_id = ?", user.ID).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve progress"})
		return
	}

	summary := strings.Builder{}
	for _, record := range records {
		var curriculum models.Curriculum
		if err := h.db.Where("id = ?", record.CurriculumID).First(&curriculum).Error; err != nil {
			continue
		}
		summary.WriteString(fmt.Sprintf("- %q (%s): %d%% complete, status %s\n",
			curriculum.Topic, curriculum.Difficulty, record.CompletionPercentage, record.Status))
	}
	if summary.Len() == 0 {
		summary.WriteString("- no curricula started yet\n")
	}

	prompt := fmt.Sprintf("Progress summary:\n%s", summary.String())
	if len(req.LearningGoals) > 0 {
		prompt += fmt.Sprintf("\nLearning goals: %s", strings.Join(req.LearningGoals, "; "))
	}

	response, err := h.tutor.GenerateContent(c.Request.Context(), services.PhaseRecommendation, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Recommendation generation error")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to generate recommendations"})
		return
	}

	var generated generatedRecommendation
	if err := json.Unmarshal([]byte(response), &generated); err != nil || generated.Analysis == nil || generated.Recommendations == nil {
		log.Error().Err(err).Str("response", response).Msg("Failed to parse recommendation JSON")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Invalid recommendation structure from AI"})
		return
	}

	recommendation := &models.Recommendation{
		ID:              uuid.New().String(),
		UserID:          user.ID,
		Analysis:        string(generated.Analysis),
		Recommendations: string(generated.Recommendations),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := h.db.Create(recommendation).Error; err != nil {
		log.Error().Err(err).Msg("Failed to save recommendation")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save recommendation"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    recommendation,
		"message": "Recommendations generated successfully",
	})
}

func (h *Handler) GetUserRecommendations(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var recommendations []models.Recommendation
	if err := h.db.Where("user_id = ?", user.ID).Order("created_at DESC").Limit(5).Find(&recommendations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": recommendations})
}
