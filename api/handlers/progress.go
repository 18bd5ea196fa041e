package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/devonochie/academia-ai/api/middleware"
	"github.com/devonochie/academia-ai/api/models"
)

// ModuleProgress is the per-module progress entry stored on UserProgress
type ModuleProgress struct {
	ModuleID         string    `json:"module_id"`
	CompletedLessons []string  `json:"completed_lessons"`
	LastAccessed     time.Time `json:"last_accessed"`
}

type UpdateProgressRequest struct {
	CurriculumID string `json:"curriculumId" binding:"required"`
	ModuleID     string `json:"moduleId" binding:"required"`
	LessonID     string `json:"lessonId" binding:"required"`
	Status       string `json:"status" binding:"required,oneof=started completed"`
}

func (h *Handler) UpdateProgress(c *gin.Context) {
	var req UpdateProgressRequest
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
	if err := json.Unmarshal([]byte(curriculum.Modules), &modules); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Curriculum modules are corrupted"})
		return
	}

	var progress models.UserProgress
	isNew := h.db.Where("user_id = ? AND curriculum_id = ?", user.ID, req.CurriculumID).First(&progress).Error != nil
	if isNew {
		// Seed one progress entry per curriculum module
		seeded := make([]ModuleProgress, 0, len(modules))
		for _, module := range modules {
			seeded = append(seeded, ModuleProgress{
				ModuleID:         module.ModuleID,
				CompletedLessons: []string{},
				LastAccessed:     time.Now(),
			})
		}
		seededJSON, _ := json.Marshal(seeded)

		progress = models.UserProgress{
			ID:              uuid.New().String(),
			UserID:          user.ID,
			CurriculumID:    req.CurriculumID,
			ModulesProgress: string(seededJSON),
			Status:          "in_progress",
			StartedAt:       time.Now(),
			CreatedAt:       time.Now(),
		}
	}

	var moduleProgress []ModuleProgress
	_ = json.Unmarshal([]byte(progress.ModulesProgress), &moduleProgress)

	found := false
	for i := range moduleProgress {
		if moduleProgress[i].ModuleID != req.ModuleID {
			continue
		}
		found = true
		moduleProgress[i].LastAccessed = time.Now()
		if req.Status == "completed" && !contains(moduleProgress[i].CompletedLessons, req.LessonID) {
			moduleProgress[i].CompletedLessons = append(moduleProgress[i].CompletedLessons, req.LessonID)
		}
	}
	if !found {
		entry := ModuleProgress{ModuleID: req.ModuleID, LastAccessed: time.Now()}
		if req.Status == "completed" {
			entry.CompletedLessons = []string{req.LessonID}
		} else {
			entry.CompletedLessons = []string{}
		}
		moduleProgress = append(moduleProgress, entry)
	}

	progress.CompletionPercentage = completionPercentage(modules, moduleProgress)
	progress.CurrentModule = req.ModuleID
	progress.CurrentLesson = req.LessonID
	progress.LastAccessed = time.Now()
	progress.UpdatedAt = time.Now()

	if progress.CompletionPercentage >= 100 {
		now := time.Now()
		progress.Status = "completed"
		progress.CompletedAt = &now
	} else {
		progress.Status = "in_progress"
	}

	moduleProgressJSON, _ := json.Marshal(moduleProgress)
	progress.ModulesProgress = string(moduleProgressJSON)

	if err := h.db.Save(&progress).Error; err != nil {
		log.Error().Err(err).Msg("Failed to save progress")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    progress,
		"message": "Progress updated successfully",
	})
}

func (h *Handler) GetUserProgress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var records []models.UserProgress
	if err := h.db.Where("user_id = ?", user.ID).Order("last_accessed DESC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": records})
}

// completionPercentage is the share of all curriculum lessons completed
func completionPercentage(modules []GeneratedModule, moduleProgress []ModuleProgress) int {
	totalLessons := 0
	for _, module := range modules {
		totalLessons += len(module.Lessons)
	}
	if totalLessons == 0 {
		return 0
	}

	completed := 0
	for _, entry := range moduleProgress {
		completed += len(entry.CompletedLessons)
	}

	return int(math.Round(float64(completed) / float64(totalLessons) * 100))
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
