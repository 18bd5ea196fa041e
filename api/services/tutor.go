package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Generation phases understood by the tutor service
const (
	PhaseCurriculum     = "curriculumGenerator"
	PhaseLesson         = "lessonGenerator"
	PhaseRecommendation = "recommendationEngine"
	PhaseAssessment     = "assessmentGenerator"
)

// ErrInvalidPhase is returned for a phase with no registered instruction
var ErrInvalidPhase = errors.New("invalid phase specified")

var phaseInstructions = map[string]string{
	PhaseCurriculum: `You are an AI curriculum designer. Generate a comprehensive learning path in strict JSON format based on the provided topic and difficulty level. Follow these guidelines precisely:

LEVEL ADAPTATION:
- Novice: Foundational concepts, simple analogies (4-6 modules)
- Intermediate: Practical applications, case studies (7-9 modules)
- Expert: Advanced theory, mathematical formulations (8-10 modules)

STRUCTURE TEMPLATE:
{
  "metadata": {
    "topic": "[Provided Topic]",
    "difficulty": "[Provided Level]",
    "total_estimated_hours": 0
  },
  "overview": "Detailed introduction explaining the topic's significance",
  "modules": [
    {
      "module_id": "M1",
      "title": "Module 1: [Title]",
      "description": "Brief purpose statement",
      "lessons": [
        {
          "lesson_id": "M1L1",
          "title": "Lesson 1.1: [Title]",
          "duration_min": 45,
          "learning_outcomes": ["bullet point 1", "bullet point 2"],
          "components": [
            {
              "type": "concept|example|exercise",
              "title": "[Component Title]",
              "content": "Detailed explanation or instructions",
              "sequence": 1
            }
          ]
        }
      ]
    }
  ],
  "assessment_plan": {
    "formative": ["Quiz after each module"],
    "summative": ["Final project/case study"]
  }
}

VALIDATION RULES:
1. JSON must be parseable with no trailing commas
2. Each lesson must have exactly 3 components (1 concept, 1 example, 1 exercise)
3. Duration estimates must sum to total_estimated_hours
4. Use consistent hierarchical IDs (M1, M1L1, etc.)
5. No markdown or explanatory text outside JSON`,

	PhaseLesson: `You are an AI professor creating detailed lesson content. Generate materials in strict JSON format matching this schema:

{
  "lesson_meta": {
    "target_audience": "[Beginner|Intermediate|Advanced]",
    "prerequisites": ["List of required knowledge"],
    "pedagogical_approach": "[Conceptual|Practical|Theoretical]"
  },
  "duration_estimate": 45,
  "learning_outcomes": ["At least 2 clear outcomes"],
  "core_content": {
    "theoretical_foundation": {
      "key_concepts": ["array of concepts"],
      "detailed_explanation": "Multi-paragraph explanation with academic references",
      "formulas": ["optional math representations"]
    },
    "applied_learning": {
      "case_studies": [
        {
          "title": "Case 1: [Title]",
          "problem": "Description",
          "solution": "Step-by-step analysis",
          "key_takeaways": ["list items"]
        }
      ]
    }
  },
  "assessment": {
    "knowledge_check": {
      "questions": [
        {
          "type": "mcq|true_false|short_answer",
          "stem": "Question text",
          "options": [{"text": "for MCQ", "is_correct": false}],
          "model_answer": "Expected response",
          "feedback": "Explanation for review",
          "learning_outcome": "Outcome this question checks"
        }
      ]
    }
  },
  "supplemental": {
    "further_reading": [{"title": "Resource title", "url": "https://...", "type": "Article"}],
    "common_misconceptions": [{"misconception": "...", "explanation": "..."}]
  }
}

CONTENT REQUIREMENTS:
1. Minimum 5 knowledge check questions
2. At least 3 case studies for applied learning
3. Duration estimate based on word count (150 words per minute)
4. Strict JSON compliance - no free text outside structure
5. Do not use placeholder or generic values for supplemental fields`,

	PhaseRecommendation: `You are an AI recommendation engine. Generate personalized learning suggestions in strict JSON format:

REQUIRED STRUCTURE:
{
  "analysis": {
    "skill_gaps": ["array", "of", "strings"],
    "proficiency_level": "Novice|Intermediate|Expert",
    "learning_style_preferences": ["Visual|Auditory|Kinesthetic"]
  },
  "recommendations": {
    "immediate_next_steps": [{
      "topic": "string",
      "priority": "High|Medium|Low",
      "reason": "string"
    }],
    "long_term_path": ["Ordered topic progression"]
  },
  "adaptive_learning": {
    "remediation_paths": {
      "weak_areas": ["Suggested review materials"]
    },
    "acceleration_options": {
      "advanced_materials": ["Challenging extensions"]
    }
  }
}

REQUIREMENTS:
1. Ground every suggestion in the provided progress summary
2. Provide clear reasoning per recommendation
3. Ensure JSON validity with proper escaping`,

	PhaseAssessment: `You are an AI assessment designer. Generate an assessment in strict JSON format:

REQUIRED STRUCTURE:
{
  "type": "diagnostic|formative|summative",
  "questions": [
    {
      "type": "mcq|true_false|short_answer",
      "stem": "Question text",
      "options": [{"text": "for MCQ", "is_correct": false}],
      "model_answer": "Expected response",
      "feedback": "Explanation for review",
      "points": 1,
      "learning_outcome": "Outcome this question checks"
    }
  ]
}

REQUIREMENTS:
1. Include multiple assessment types across questions
2. Provide clear evaluation criteria in feedback
3. Map every question to a learning objective
4. Ensure JSON validity with proper escaping`,
}

// TutorService generates structured learning content through an AI provider
type TutorService struct {
	provider AIProvider
}

func NewTutorService(provider AIProvider) *TutorService {
	return &TutorService{provider: provider}
}

// GenerateContent runs the instruction for phase against the provider and
// returns the cleaned JSON document. Transient failures are retried up to
// three times with linear backoff before surfacing.
func (t *TutorService) GenerateContent(ctx context.Context, phase, prompt string) (string, error) {
	systemPrompt, ok := phaseInstructions[phase]
	if !ok {
		return "", ErrInvalidPhase
	}

	const maxAttempts = 3
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		response, err := t.provider.GenerateJSON(ctx, prompt, systemPrompt, DefaultSampling)
		if err == nil {
			return StripJSONFences(response), nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		lastErr = err
		log.Warn().Err(err).Str("phase", phase).Int("attempt", attempt).Msg("Content generation attempt failed")

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

// StripJSONFences removes markdown code fences some models wrap around JSON
func StripJSONFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
