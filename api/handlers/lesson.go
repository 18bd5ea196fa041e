package handlers

import (
	"encoding/json"
	"fmt"
	"math"
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

// McqOption is one choice of a multiple-choice question
type McqOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// KnowledgeQuestion is a question inside generated lesson content or an assessment
type KnowledgeQuestion struct {
	Type            string      `json:"type"` // "mcq", "true_false", "short_answer"
	Stem            string      `json:"stem"`
	Options         []McqOption `json:"options,omitempty"`
	ModelAnswer     string      `json:"model_answer,omitempty"`
	Feedback        string      `json:"feedback,omitempty"`
	Points          int         `json:"points,omitempty"`
	LearningOutcome string      `json:"learning_outcome,omitempty"`
}

// GeneratedLessonContent is the subset of the lesson document the server inspects
type GeneratedLessonContent struct {
	Assessment struct {
		KnowledgeCheck struct {
			Questions []KnowledgeQuestion `json:"questions"`
		} `json:"knowledge_check"`
	} `json:"assessment"`
}

// AssessmentResponse records one graded answer
type AssessmentResponse struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// AssessmentSubmission is one user's graded attempt
type AssessmentSubmission struct {
	UserID      string               `json:"user_id"`
	LessonID    string               `json:"lesson_id,omitempty"`
	Score       int                  `json:"score"`
	Responses   []AssessmentResponse `json:"responses"`
	SubmittedAt time.Time            `json:"submitted_at"`
}

func (h *Handler) GenerateLessonContent(c *gin.Context) {
	curriculumID := c.Param("curriculumId")
	moduleID := c.Param("moduleId")
	lessonID := c.Param("lessonId")

	var req struct {
		Preferences string `json:"preferences"`
	}
	_ = c.ShouldBindJSON(&req)

	// Return existing content rather than regenerating
	var existing models.LessonContent
	if err := h.db.Where("curriculum_id = ? AND lesson_id = ?", curriculumID, lessonID).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    existing,
			"message": "Lesson content already exists",
		})
		return
	}

	var curriculum models.Curriculum
	if err := h.db.Where("id = ?", curriculumID).First(&curriculum).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Curriculum not found"})
		return
	}

	var modules []GeneratedModule
	if err := json.Unmarshal([]byte(curriculum.Modules), &modules); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Curriculum modules are corrupted"})
		return
	}

	lesson, err := findLesson(modules, moduleID, lessonID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
		return
	}

	prompt := fmt.Sprintf(
		"Create lesson content for %q (lesson of the %q curriculum, %s difficulty). Learning outcomes: %s.",
		lesson.Title, curriculum.Topic, curriculum.Difficulty, strings.Join(lesson.LearningOutcomes, "; "),
	)
	if req.Preferences != "" {
		prompt += fmt.Sprintf(" Learner preferences: %s", req.Preferences)
	}

	response, err := h.tutor.GenerateContent(c.Request.Context(), services.PhaseLesson, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Lesson content generation error")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to generate lesson content"})
		return
	}

	// Reject documents the grader can't use later
	var parsed GeneratedLessonContent
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		log.Error().Err(err).Str("response", response).Msg("Failed to parse lesson JSON")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to parse generated lesson content"})
		return
	}

	content := &models.LessonContent{
		ID:           uuid.New().String(),
		CurriculumID: curriculumID,
		LessonID:     lessonID,
		LessonTopic:  strings.TrimSpace(lesson.Title),
		Version:      1,
		Content:      response,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := h.db.Create(content).Error; err != nil {
		log.Error().Err(err).Msg("Failed to save lesson content")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save lesson content"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"title":   strings.TrimSpace(lesson.Title),
		"data":    content,
		"message": "Lesson content generated successfully",
	})
}

func (h *Handler) GetLessonContent(c *gin.Context) {
	curriculumID := c.Param("curriculumId")
	lessonID := c.Param("lessonId")

	var content models.LessonContent
	if err := h.db.Where("curriculum_id = ? AND lesson_id = ?", curriculumID, lessonID).First(&content).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Lesson content not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": content})
}

type SubmitLessonAssessmentRequest struct {
	Responses []string `json:"responses" binding:"required"`
}

func (h *Handler) SubmitLessonAssessment(c *gin.Context) {
	curriculumID := c.Param("curriculumId")
	moduleID := c.Param("moduleId")
	lessonID := c.Param("lessonId")
	user := middleware.CurrentUser(c)

	var req SubmitLessonAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var content models.LessonContent
	if err := h.db.Where("curriculum_id = ? AND lesson_id = ?", curriculumID, lessonID).First(&content).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Lesson content not found"})
		return
	}

	var lessonDoc GeneratedLessonContent
	if err := json.Unmarshal([]byte(content.Content), &lessonDoc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Lesson content is corrupted"})
		return
	}

	questions := lessonDoc.Assessment.KnowledgeCheck.Questions
	if len(questions) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Lesson has no knowledge check questions"})
		return
	}

	percentageScore, responses := gradeResponses(questions, req.Responses)

	// Record the submission on a formative assessment for this lesson
	assessment, err := h.findOrCreateLessonAssessment(curriculumID, lessonID, user.ID, questions)
	if err != nil {
		log.Error().Err(err).Msg("Failed to record assessment")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record assessment"})
		return
	}

	var submissions []AssessmentSubmission
	if assessment.Submissions != "" {
		_ = json.Unmarshal([]byte(assessment.Submissions), &submissions)
	}
	submissions = append(submissions, AssessmentSubmission{
		UserID:      user.ID,
		LessonID:    lessonID,
		Score:       percentageScore,
		Responses:   responses,
		SubmittedAt: time.Now(),
	})
	submissionsJSON, _ := json.Marshal(submissions)
	if err := h.db.Model(assessment).Updates(map[string]interface{}{
		"submissions": string(submissionsJSON),
		"updated_at":  time.Now(),
	}).Error; err != nil {
		log.Warn().Err(err).Msg("Failed to save submission")
	}

	// A low score pauses progress until the material is reviewed
	status := "in_progress"
	if percentageScore < 80 {
		status = "paused"
	}
	h.recordAssessmentResult(user.ID, curriculumID, moduleID, status)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"score":         percentageScore,
			"feedback":      scoreFeedback(percentageScore),
			"weak_areas":    weakAreas(questions, responses),
			"assessment_id": assessment.ID,
		},
	})
}

func findLesson(modules []GeneratedModule, moduleID, lessonID string) (*GeneratedLesson, error) {
	for i := range modules {
		if modules[i].ModuleID != moduleID {
			continue
		}
		for j := range modules[i].Lessons {
			if modules[i].Lessons[j].LessonID == lessonID {
				return &modules[i].Lessons[j], nil
			}
		}
		return nil, fmt.Errorf("Lesson not found")
	}
	return nil, fmt.Errorf("Module not found")
}

// gradeResponses scores answers positionally against the question list and
// returns the percentage score plus per-question results
func gradeResponses(questions []KnowledgeQuestion, answers []string) (int, []AssessmentResponse) {
	score := 0
	totalPoints := 0
	responses := make([]AssessmentResponse, 0, len(questions))

	for i, question := range questions {
		points := question.Points
		if points == 0 {
			points = 1
		}
		totalPoints += points

		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}

		correct := isAnswerCorrect(question, answer)
		if correct {
			score += points
		}

		responses = append(responses, AssessmentResponse{
			QuestionIndex: i,
			Answer:        answer,
			IsCorrect:     correct,
		})
	}

	return int(math.Round(float64(score) / float64(totalPoints) * 100)), responses
}

func isAnswerCorrect(question KnowledgeQuestion, answer string) bool {
	if question.Type == "mcq" {
		for _, option := range question.Options {
			if option.Text == answer {
				return option.IsCorrect
			}
		}
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(question.ModelAnswer))
}

func scoreFeedback(score int) string {
	switch {
	case score >= 90:
		return "Excellent mastery of the material"
	case score >= 70:
		return "Good understanding with minor gaps"
	case score >= 50:
		return "Basic understanding, needs more practice"
	default:
		return "Needs significant review of the material"
	}
}

// weakAreas collects the learning outcomes of incorrectly answered questions
func weakAreas(questions []KnowledgeQuestion, responses []AssessmentResponse) []string {
	seen := make(map[string]bool)
	areas := []string{}

	for _, response := range responses {
		if response.IsCorrect {
			continue
		}
		outcome := questions[response.QuestionIndex].LearningOutcome
		if outcome == "" {
			outcome = "General Concepts"
		}
		if !seen[outcome] {
			seen[outcome] = true
			areas = append(areas, outcome)
		}
	}

	return areas
}

func (h *Handler) findOrCreateLessonAssessment(curriculumID, lessonID, userID string, questions []KnowledgeQuestion) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := h.db.Where("curriculum_id = ? AND lesson_id = ?", curriculumID, lessonID).First(&assessment).Error; err == nil {
		return &assessment, nil
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return nil, err
	}

	assessment = models.Assessment{
		ID:           uuid.New().String(),
		CurriculumID: curriculumID,
		LessonID:     lessonID,
		Type:         "formative",
		Questions:    string(questionsJSON),
		Submissions:  "[]",
		CreatedBy:    userID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := h.db.Create(&assessment).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (h *Handler) recordAssessmentResult(userID, curriculumID, moduleID, status string) {
	var progress models.UserProgress
	err := h.db.Where("user_id = ? AND curriculum_id = ?", userID, curriculumID).First(&progress).Error
	if err != nil {
		progress = models.UserProgress{
			ID:              uuid.New().String(),
			UserID:          userID,
			CurriculumID:    curriculumID,
			ModulesProgress: "[]",
			CurrentModule:   moduleID,
			Status:          status,
			StartedAt:       time.Now(),
			LastAccessed:    time.Now(),
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		if err := h.db.Create(&progress).Error; err != nil {
			log.Warn().Err(err).Msg("Failed to create progress record")
		}
		return
	}

	if err := h.db.Model(&progress).Updates(map[string]interface{}{
		"status":         status,
		"current_module": moduleID,
		"last_accessed":  time.Now(),
		"updated_at":     time.Now(),
	}).Error; err != nil {
		log.Warn().Err(err).Msg("Failed to update progress record")
	}
}
