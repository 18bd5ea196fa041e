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

type GenerateAssessmentRequest struct {
	CurriculumID string `json:"curriculumId" binding:"required"`
	Type         string `json:"type" binding:"omitempty,oneof=diagnostic formative summative"`
}

type generatedAssessment struct {
	Type      string              `json:"type"`
	Questions []KnowledgeQuestion `json:"questions"`
}

func (h *Handler) GenerateAssessment(c *gin.Context) {
	var req GenerateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)

	var curriculum models.Curriculum
	if err := h.db.Where("id = ?", req.CurriculumID).First(&curriculum).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Curriculum not found"})
		return
	}

	var modules []GeneratedModule
	_ = json.Unmarshal([]byte(curriculum.Modules), &modules)

	objectives := []string{}
	for _, module := range modules {
		for _, lesson := range module.Lessons {
			objectives = append(objectives, lesson.LearningOutcomes...)
		}
	}

	assessmentType := req.Type
	if assessmentType == "" {
		assessmentType = "summative"
	}

	prompt := fmt.Sprintf(
		"Generate a %s assessment for the curriculum %q (%s difficulty). Cover these learning objectives: %s.",
		assessmentType, curriculum.Topic, curriculum.Difficulty, strings.Join(objectives, "; "),
	)

	response, err := h.tutor.GenerateContent(c.Request.Context(), services.PhaseAssessment, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Assessment generation error")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to generate assessment"})
		return
	}

	var generated generatedAssessment
	if err := json.Unmarshal([]byte(response), &generated); err != nil || len(generated.Questions) == 0 {
		log.Error().Err(err).Str("response", response).Msg("Failed to parse assessment JSON")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Invalid assessment structure from AI"})
		return
	}

	questionsJSON, _ := json.Marshal(generated.Questions)

	assessment := &models.Assessment{
		ID:           uuid.New().String(),
		CurriculumID: req.CurriculumID,
		Type:         assessmentType,
		Questions:    string(questionsJSON),
		Submissions:  "[]",
		CreatedBy:    user.ID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := h.db.Create(assessment).Error; err != nil {
		log.Error().Err(err).Msg("Failed to save assessment")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save assessment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    assessment,
		"message": "Assessment generated successfully",
	})
}

func (h *Handler) GetAssessment(c *gin.Context) {
	var assessment models.Assessment
	if err := h.db.Where("id = ?", c.Param("assessmentId")).First(&assessment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Assessment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": assessment})
}

type SubmitAssessmentRequest struct {
	Responses []string `json:"responses" binding:"required"`
}

func (h *Handler) SubmitAssessment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var assessment models.Assessment
	if err := h.db.Where("id = ?", c.Param("assessmentId")).First(&assessment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Assessment not found"})
		return
	}

	var questions []KnowledgeQuestion
	if err := json.Unmarshal([]byte(assessment.Questions), &questions); err != nil || len(questions) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Assessment questions are corrupted"})
		return
	}

	percentageScore, responses := gradeResponses(questions, req.Responses)

	var submissions []AssessmentSubmission
	if assessment.Submissions != "" {
		_ = json.Unmarshal([]byte(assessment.Submissions), &submissions)
	}
	submissions = append(submissions, AssessmentSubmission{
		UserID:      user.ID,
		Score:       percentageScore,
		Responses:   responses,
		SubmittedAt: time.Now(),
	})
	submissionsJSON, _ := json.Marshal(submissions)

	if err := h.db.Model(&assessment).Updates(map[string]interface{}{
		"submissions": string(submissionsJSON),
		"updated_at":  time.Now(),
	}).Error; err != nil {
		log.Error().Err(err).Msg("Failed to save submission")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"score":      percentageScore,
			"feedback":   scoreFeedback(percentageScore),
			"weak_areas": weakAreas(questions, responses),
		},
	})
}
