package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered learner account
type User struct {
	ID                string     `gorm:"primaryKey" json:"id"`
	Name              string     `json:"name"`
	Email             string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash      string     `json:"-"`
	ResetToken        string     `gorm:"index" json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Curriculum is a generated learning path for a topic/difficulty pair.
// Modules and AssessmentPlan hold the generated document as JSON.
type Curriculum struct {
	ID                  string    `gorm:"primaryKey" json:"id"`
	Topic               string    `gorm:"index" json:"topic"`
	Difficulty          string    `json:"difficulty"` // "Novice", "Intermediate", "Expert"
	Overview            string    `json:"overview"`
	TotalEstimatedHours int       `json:"total_estimated_hours"`
	Modules             string    `json:"modules"`         // JSON-encoded module array
	AssessmentPlan      string    `json:"assessment_plan"` // JSON-encoded plan
	CreatedBy           string    `gorm:"index" json:"created_by"`
	IsActive            bool      `gorm:"default:true" json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// LessonContent is the generated material for one lesson of a curriculum
type LessonContent struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	CurriculumID string    `gorm:"index:idx_lesson_content,unique" json:"curriculum_id"`
	LessonID     string    `gorm:"index:idx_lesson_content,unique" json:"lesson_id"`
	LessonTopic  string    `json:"lesson_topic"`
	Version      int       `json:"version"`
	Content      string    `json:"content"` // JSON-encoded lesson document
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Assessment holds generated questions plus recorded submissions
type Assessment struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	CurriculumID string    `gorm:"index" json:"curriculum_id"`
	LessonID     string    `gorm:"index" json:"lesson_id,omitempty"`
	Type         string    `json:"type"` // "diagnostic", "formative", "summative"
	Questions    string    `json:"questions"`   // JSON-encoded question array
	Submissions  string    `json:"submissions"` // JSON-encoded submission array
	CreatedBy    string    `gorm:"index" json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserProgress tracks a user's position in one curriculum
type UserProgress struct {
	ID                   string     `gorm:"primaryKey" json:"id"`
	UserID               string     `gorm:"index:idx_user_curriculum,unique" json:"user_id"`
	CurriculumID         string     `gorm:"index:idx_user_curriculum,unique" json:"curriculum_id"`
	ModulesProgress      string     `json:"modules_progress"` // JSON-encoded per-module progress
	CurrentModule        string     `json:"current_module"`
	CurrentLesson        string     `json:"current_lesson"`
	CompletionPercentage int        `json:"completion_percentage"`
	Status               string     `json:"status"` // "not_started", "in_progress", "paused", "completed"
	StartedAt            time.Time  `json:"started_at"`
	LastAccessed         time.Time  `json:"last_accessed"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Recommendation stores a personalized learning suggestion document
type Recommendation struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"index" json:"user_id"`
	Analysis        string    `json:"analysis"`        // JSON-encoded skill gap analysis
	Recommendations string    `json:"recommendations"` // JSON-encoded suggestion document
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AutoMigrate runs all migrations
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Curriculum{},
		&LessonContent{},
		&Assessment{},
		&UserProgress{},
		&Recommendation{},
	)
}
