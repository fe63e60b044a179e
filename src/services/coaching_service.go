package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/username/tradecoach/backend/src/analysis"
	"github.com/username/tradecoach/backend/src/config"
	"github.com/username/tradecoach/backend/src/logger"
)

const coachingSystemPrompt = `You are an elite trading coach who analyzes behavioral patterns in stock trading. You receive anonymized aggregate statistics about a trader's behavior — never individual trade details, stock names, or dates.

Your job:
1. Identify the most significant behavioral weaknesses from the stats
2. Write a coaching narrative (2-3 paragraphs) explaining the patterns you see and why they matter
3. Generate 5-8 concrete, numbered trading rules with specific thresholds

Be direct, specific, and data-driven. Reference the actual numbers provided. Write like a coach who cares but doesn't sugarcoat.

Respond with valid JSON only (no markdown fencing):
{
  "narrative": "Your coaching narrative here...",
  "rules": [
    {
      "number": 1,
      "title": "Short rule name",
      "description": "Detailed rule explanation",
      "evidence": "The specific stat that supports this rule"
    }
  ]
}`

type coachingRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system"`
	Messages  []coachingMessage `json:"messages"`
}

type coachingMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type coachingAPIResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type coachingServiceImpl struct {
	httpClient http.Client
	apiURL     string
	apiKey     string
	model      string
}

func NewCoachingService() CoachingService {
	return &coachingServiceImpl{
		httpClient: http.Client{Timeout: 60 * time.Second},
		apiURL:     config.Cfg.CoachingAPIURL,
		apiKey:     config.Cfg.CoachingAPIKey,
		model:      config.Cfg.CoachingModel,
	}
}

var codeFenceRe = regexp.MustCompile("(?is)^```(?:json)?\\s*\\n?|\\n?```\\s*$")

// GetCoaching sends the anonymized stats to the LLM collaborator and parses
// the narrative plus rules out of its reply.
func (s *coachingServiceImpl) GetCoaching(stats analysis.AnonymizedStats) (*CoachingResponse, error) {
	if config.Cfg.CoachingDisabled {
		return nil, fmt.Errorf("%w: coaching is disabled", ErrCoachingFailed)
	}
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: coaching API key not configured", ErrCoachingFailed)
	}

	statsJSON, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCoachingFailed, err)
	}

	payload := coachingRequest{
		Model:     s.model,
		MaxTokens: 2000,
		System:    coachingSystemPrompt,
		Messages: []coachingMessage{
			{
				Role:    "user",
				Content: fmt.Sprintf("Here are the anonymized trading statistics for analysis:\n\n%s", statsJSON),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCoachingFailed, err)
	}

	req, err := http.NewRequest("POST", s.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCoachingFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCoachingFailed, err)
	}
	defer resp.Body.Close()

	var apiResp coachingAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrCoachingFailed, err)
	}
	if apiResp.Error != nil {
		logger.L.Error("Coaching API returned an error", "type", apiResp.Error.Type, "message", apiResp.Error.Message)
		return nil, fmt.Errorf("%w: %s", ErrCoachingFailed, apiResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrCoachingFailed, resp.StatusCode)
	}

	var text string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrCoachingFailed)
	}

	// The model sometimes wraps the JSON in code fencing despite instructions.
	text = codeFenceRe.ReplaceAllString(text, "")

	var coaching CoachingResponse
	if err := json.Unmarshal([]byte(text), &coaching); err != nil {
		logger.L.Error("Failed to parse coaching response as JSON", "error", err)
		return nil, fmt.Errorf("%w: malformed coaching response: %v", ErrCoachingFailed, err)
	}

	return &coaching, nil
}
