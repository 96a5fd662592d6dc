package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brightclass/brightclass-backend/internal/config"
	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/rs/zerolog"
)

// AIService generates draft quiz questions and feedback through an
// OpenAI-compatible chat completions endpoint. When no API key is
// configured every call fails with ErrAIUnavailable.
type AIService struct {
	httpClient *http.Client
	apiKey     string
	apiURL     string
	model      string
	log        zerolog.Logger
}

// NewAIService creates a new AIService from config.
func NewAIService(cfg *config.Config, log zerolog.Logger) *AIService {
	return &AIService{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     cfg.AIAPIKey,
		apiURL:     cfg.AIAPIURL,
		model:      cfg.AIModel,
		log:        log.With().Str("component", "ai_service").Logger(),
	}
}

// IsAvailable reports whether the AI endpoint is configured.
func (s *AIService) IsAvailable() bool {
	return s.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const questionsPrompt = `You are a quiz question generator for a school platform. You must respond with ONLY valid JSON (no markdown, no code fences, no explanations) in the following format:

{
  "questions": [
    {
      "text": "Question text?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_option": 0
    }
  ]
}

Rules:
- Generate exactly the number of questions the user asks for
- Each question must have exactly 4 options
- correct_option is the zero-based index of the right answer
- Make questions age-appropriate for the requested grade level and factually accurate
- Return ONLY the JSON object, nothing else`

const feedbackPrompt = `You are a friendly tutor. Given a student's quiz result, write 2-3 short sentences of encouraging, specific feedback. Respond with plain text only, no markdown.`

// GenerateQuestions asks the model for a set of draft questions. The
// model's JSON output is validated the same way teacher-authored
// questions are; a malformed reply is retried once before giving up.
func (s *AIService) GenerateQuestions(ctx context.Context, req *model.GenerateQuestionsRequest) ([]model.Question, error) {
	if !s.IsAvailable() {
		return nil, ErrAIUnavailable
	}

	userPrompt := fmt.Sprintf("Generate %d multiple-choice questions about %q for subject %q, grade level %s.",
		req.QuestionCount, req.Topic, req.Subject, req.GradeLevel)

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		content, err := s.complete(ctx, questionsPrompt, userPrompt)
		if err != nil {
			return nil, err
		}

		var parsed struct {
			Questions []model.Question `json:"questions"`
		}
		if err := json.Unmarshal([]byte(stripCodeFences(content)), &parsed); err != nil {
			lastErr = fmt.Errorf("model returned invalid JSON: %w", err)
			s.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("Question generation retry")
			continue
		}
		if err := validateQuestions(parsed.Questions); err != nil {
			lastErr = fmt.Errorf("model returned unusable questions: %w", err)
			s.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("Question generation retry")
			continue
		}
		return parsed.Questions, nil
	}
	return nil, lastErr
}

// GenerateFeedback writes a short personalized comment on a graded result.
func (s *AIService) GenerateFeedback(ctx context.Context, quizTitle string, result *model.SubmitResult) (string, error) {
	if !s.IsAvailable() {
		return "", ErrAIUnavailable
	}

	userPrompt := fmt.Sprintf("Quiz: %q. Score: %d%%. Correct: %d of %d questions.",
		quizTitle, result.Score, result.CorrectAnswers, result.TotalQuestions)

	content, err := s.complete(ctx, feedbackPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// complete performs one chat completion round-trip.
func (s *AIService) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parse API response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// stripCodeFences removes markdown fences some models wrap JSON in.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
