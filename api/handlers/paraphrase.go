package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/devonochie/academia-ai/api/services"
)

type ParaphraseRequest struct {
	Text                string   `json:"text"`
	Tone                string   `json:"tone"`
	Domain              string   `json:"domain"`
	AvoidWords          []string `json:"avoidWords"`
	EnsureChanges       *bool    `json:"ensureChanges"`
	MaxAttempts         int      `json:"maxAttempts" binding:"omitempty,min=1"`
	Creativity          float64  `json:"creativity"`
	PlagiarismThreshold int      `json:"plagiarismThreshold" binding:"omitempty,min=0,max=100"`
}

func (r *ParaphraseRequest) toOptions() services.ParaphraseOptions {
	opts := services.DefaultParaphraseOptions()
	if r.Tone != "" {
		opts.Tone = r.Tone
	}
	if r.Domain != "" {
		opts.Domain = r.Domain
	}
	if r.AvoidWords != nil {
		opts.AvoidWords = r.AvoidWords
	}
	if r.EnsureChanges != nil {
		opts.EnsureChanges = *r.EnsureChanges
	}
	if r.MaxAttempts > 0 {
		opts.MaxAttempts = r.MaxAttempts
	}
	if r.Creativity != 0 {
		opts.Creativity = r.Creativity
	}
	if r.PlagiarismThreshold > 0 {
		opts.PlagiarismThreshold = r.PlagiarismThreshold
	}
	return opts
}

func (h *Handler) ParaphraseContent(c *gin.Context) {
	var req ParaphraseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text must be a non-empty string"})
		return
	}

	result, err := h.paraphraser.Paraphrase(c.Request.Context(), req.Text, req.toOptions())
	if err != nil {
		h.renderParaphraseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type BatchParaphraseRequest struct {
	Texts []string `json:"texts" binding:"required,min=1"`
	ParaphraseRequest
}

func (h *Handler) BatchParaphrase(c *gin.Context) {
	var req BatchParaphraseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Texts must be a non-empty array of non-empty strings"})
		return
	}
	for _, text := range req.Texts {
		if strings.TrimSpace(text) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Texts must be a non-empty array of non-empty strings"})
			return
		}
	}

	// Stream one NDJSON progress line per completed item, then a summary line
	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)

	results := h.paraphraser.ParaphraseBatch(c.Request.Context(), req.Texts, req.toOptions(), func(progress services.BatchProgress) {
		line, err := json.Marshal(progress)
		if err != nil {
			return
		}
		c.Writer.Write(append(line, '\n'))
		c.Writer.Flush()
		log.Info().
			Int("progress", progress.Progress).
			Int("completed", progress.Completed).
			Int("total", progress.Total).
			Msg("Batch progress")
	})

	summary, _ := json.Marshal(gin.H{
		"success": true,
		"results": results,
		"count":   len(results),
	})
	c.Writer.Write(append(summary, '\n'))
	c.Writer.Flush()
}

func (h *Handler) ParaphraseDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	if file.Size > h.cfg.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 10MB limit"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	text, err := services.ExtractText(file.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only PDF, TXT, MD, and JSON files are allowed."})
		case errors.Is(err, services.ErrExtractionFailed):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to extract text from document", "details": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process document"})
		}
		return
	}
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Extracted text is empty or invalid"})
		return
	}

	opts := services.DefaultParaphraseOptions()
	if tone := c.PostForm("tone"); tone != "" {
		opts.Tone = tone
	}
	if domain := c.PostForm("domain"); domain != "" {
		opts.Domain = domain
	}

	result, err := h.paraphraser.Paraphrase(c.Request.Context(), text, opts)
	if err != nil {
		h.renderParaphraseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"originalFilename": file.Filename,
		"text":             result.Text,
		"plagiarismScore":  result.PlagiarismScore,
		"attempts":         result.Attempts,
		"success":          result.Success,
	})
}

func (h *Handler) renderParaphraseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidText):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text must be a non-empty string"})
	case errors.Is(err, services.ErrGenerationExhausted):
		log.Error().Err(err).Msg("Paraphrase generation exhausted")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate valid paraphrase after multiple attempts"})
	default:
		log.Error().Err(err).Msg("Paraphrase failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while processing the request"})
	}
}
