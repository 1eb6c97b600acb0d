package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"carparkfinder/internal/config"
	"carparkfinder/internal/utils"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient implements CostOracle against the Anthropic Messages API.
type AnthropicClient struct {
	config     *config.AnthropicConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewAnthropicClient creates the oracle client. A missing API key yields a
// disabled client rather than an error; callers observe that through
// IsEnabled and degrade cost estimates instead of failing queries.
func NewAnthropicClient(cfg *config.AnthropicConfig, logger *logrus.Logger) *AnthropicClient {
	return &AnthropicClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

// IsEnabled returns whether the client is configured and ready.
func (c *AnthropicClient) IsEnabled() bool {
	return c.config.Enabled
}

// messagesRequest is the Messages API request body.
type messagesRequest struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	Messages    []messagePayload `json:"messages"`
}

type messagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Messages API response body.
type messagesResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// EstimateCost sends one deterministic cost-calculation prompt and extracts
// the structured payload from the reply. The oracle may wrap its answer in
// a markdown fence or prose; extraction failures surface as errors, which
// the estimator converts to a degraded per-carpark result.
func (c *AnthropicClient) EstimateCost(ctx context.Context, req OracleRequest) (*OracleResult, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("oracle is not enabled (missing API key)")
	}

	body := messagesRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: 0, // deterministic for math
		Messages: []messagePayload{
			{Role: "user", Content: buildCalculationPrompt(req)},
		},
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var msg messagesResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("empty response from oracle")
	}

	var result OracleResult
	if err := utils.ParseOracleJSON(msg.Content[0].Text, &result); err != nil {
		c.logger.WithField("content", msg.Content[0].Text).Debug("Unparsable oracle reply")
		return nil, fmt.Errorf("failed to parse oracle response: %w", err)
	}

	return &result, nil
}

// buildCalculationPrompt renders the structured cost-calculation prompt.
func buildCalculationPrompt(req OracleRequest) string {
	return fmt.Sprintf(`You are a parking cost calculator. Calculate the EXACT cost to park at this carpark.

CARPARK: %s
RATE STRUCTURE: %s
PARKING DURATION: %g hours
DAY TYPE: %s

INSTRUCTIONS:
1. Parse the rate structure carefully (handle cases like "first X hours free", "per half hour", etc.)
2. Calculate the exact cost for the given duration in Singapore dollars (SGD)
3. Show your breakdown step-by-step
4. Return ONLY valid JSON in this exact format:

{
  "total_cost": <number in SGD, e.g., 6.50>,
  "breakdown": "<step-by-step calculation, e.g., 'First 2 hrs free, then 1.5 hrs x $3/hr = $4.50'>",
  "explanation": "<brief explanation of rate structure applied>",
  "confidence": "high"
}

IMPORTANT RULES:
- If rate is "per half hour", calculate accordingly (e.g., 1.5 hours = 3 half hours)
- If rate varies by time (e.g., "after 5pm"), assume daytime rates unless specified
- Round to 2 decimal places
- Return ONLY the JSON object, no markdown formatting, no other text

Calculate now:`,
		req.CarparkName, req.RateString, req.DurationHours, req.DayType)
}

// Ensure AnthropicClient implements CostOracle.
var _ CostOracle = (*AnthropicClient)(nil)
