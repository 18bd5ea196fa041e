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

type GenerateCurriculumRequest struct {
	Topic       string `json:"topic" binding:"required,min=3"`
	Difficulty  string `json:"difficulty" binding:"required,oneof=Novice Intermediate Expert"`
	Preferences string `json:"preferences"`
}

type GeneratedCurriculum struct {
	Metadata struct {
		Topic               string `json:"topic"`
		Difficulty          string `json:"difficulty"`
		TotalEstimatedHours int    `json:"total_estimated_hours"`
	} `json:"metadata"`
	Overview       string              `json:"overview"`
	Modules        []GeneratedModule   `json:"modules"`
	AssessmentPlan map[string][]string `json:"assessment_plan"`
}

type GeneratedModule struct {
	ModuleID    string            `json:"module_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Lessons     []GeneratedLesson `json:"lessons"`
}

type GeneratedLesson struct {
	LessonID         string   `json:"lesson_id"`
	Title            string   `json:"title"`
	DurationMin      int      `json:"duration_min"`
	LearningOutcomes []string `json:"learning_outcomes"`
	Components       []struct {
		Type     string `json:"type"`
		Title    string `json:"title"`
		Content  string `json:"content"`
		Sequence int    `json:"sequence"`
	} `json:"components"`
}

func (h *Handler) GenerateCurriculum(c *gin.Context) {
	var req GenerateCurriculumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Topic must be at least 3 characters long and difficulty must be Novice, Intermediate or Expert"})
		return
	}

	user := middleware.CurrentUser(c)

	// Reuse an existing curriculum for the same topic and difficulty
	var existing models.Curriculum
	if err := h.db.Where("LOWER(topic) = ? AND difficulty = ?", strings.ToLower(req.Topic), req.Difficulty).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    existing,
			"message": "Existing curriculum retrieved successfully",
		})
		return
	}

	prompt := fmt.Sprintf("Generate a curriculum for topic %q at %s difficulty.", req.Topic, req.Difficulty)
	if req.Preferences != "" {
		prompt += fmt.Sprintf(" Learner preferences: %s", req.Preferences)
	}

	response, err := h.tutor.GenerateContent(c.Request.Context(), services.PhaseCurriculum, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Curriculum generation error")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to generate curriculum"})
		return
	}

	var generated GeneratedCurriculum
	if err := json.Unmarshal([]byte(response), &generated); err != nil {
		log.Error().Err(err).Str("response", response).Msg("Failed to parse curriculum JSON")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to parse generated curriculum"})
		return
	}

	modulesJSON, _ := json.Marshal(generated.Modules)
	planJSON, _ := json.Marshal(generated.AssessmentPlan)

	curriculum := &models.Curriculum{
		ID:                  uuid.New().String(),
		Topic:               req.Topic,
		Difficulty:          req.Difficulty,
		Overview:            generated.Overview,
		TotalEstimatedHours: generated.Metadata.TotalEstimatedHours,
		Modules:             string(modulesJSON),
		AssessmentPlan:      string(planJSON),
		CreatedBy:           user.ID,
		IsActive:            true,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
	if err := h.db.Create(curriculum).Error; err != nil {
		log.Error().Err(err).Msg("Failed to save curriculum")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save curriculum"})
		return
	}

	if err := h.mailer.SendCurriculumReady(user.Email, user.Name, curriculum.Topic); err != nil {
		log.Warn().Err(err).Msg("Failed to send curriculum notification")
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    curriculum,
		"message": "Curriculum generated successfully",
	})
}

func (h *Handler) GetCurriculum(c *gin.Context) {
	var curriculum models.Curriculum
	if err := h.db.Where("id = ?", c.Param("curriculumId")).First(&curriculum).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Curriculum not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": curriculum})
}

func (h *Handler) GetCurricula(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var curricula []models.Curriculum
	if err := h.db.Where("created_by = ?", user.ID).Order("created_at DESC").Find(&curricula).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve curricula"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": curricula})
}

type UpdateCurriculumRequest struct {
	Overview *string `json:"overview"`
	IsActive *bool   `json:"is_active"`
}

func (h *Handler) UpdateCurriculum(c *gin.Context) {
	var req UpdateCurriculumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var curriculum models.Curriculum
	if err := h.db.Where("id = ?", c.Param("curriculumId")).First(&curriculum).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Curriculum not found"})
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Overview != nil {
		updates["overview"] = *req.Overview
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := h.db.Model(&curriculum).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update curriculum"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    curriculum,
		"message": "Curriculum updated successfully",
	})
}
