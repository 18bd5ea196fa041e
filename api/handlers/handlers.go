package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devonochie/academia-ai/api/config"
	"github.com/devonochie/academia-ai/api/services"
)

type Handler struct {
	db          *gorm.DB
	cfg         *config.Config
	aiProvider  services.AIProvider
	paraphraser *services.Paraphraser
	tutor       *services.TutorService
	mailer      *services.Mailer
}

func New(db *gorm.DB, cfg *config.Config, aiProvider services.AIProvider) *Handler {
	return &Handler{
		db:          db,
		cfg:         cfg,
		aiProvider:  aiProvider,
		paraphraser: services.NewParaphraser(aiProvider),
		tutor:       services.NewTutorService(aiProvider),
		mailer:      services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom),
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"model_provider": h.aiProvider.GetProviderName(),
	})
}
