package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carparkfinder/internal/config"
	"carparkfinder/internal/model"
)

func anthropicTestClient(apiBase string) *AnthropicClient {
	return NewAnthropicClient(&config.AnthropicConfig{
		APIKey:         "test-key",
		APIBase:        apiBase,
		Model:          "claude-3-haiku-20240307",
		MaxTokens:      500,
		TimeoutSeconds: 5,
		Enabled:        true,
	}, testLogger())
}

func oracleReply(text string) string {
	reply := map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	}
	raw, _ := json.Marshal(reply)
	return string(raw)
}

func TestAnthropicEstimateCost(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotBody messagesRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(oracleReply(`{"total_cost": 6.5, "breakdown": "2 hrs x $3.25", "explanation": "hourly rate", "confidence": "high"}`)))
	}))
	defer server.Close()

	client := anthropicTestClient(server.URL)
	result, err := client.EstimateCost(context.Background(), OracleRequest{
		CarparkName:   "Suntec City",
		RateString:    "$3.25 per hour",
		DurationHours: 2,
		DayType:       model.DayTypeWeekday,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, anthropicVersion, gotVersion)
	assert.Equal(t, "claude-3-haiku-20240307", gotBody.Model)
	assert.Zero(t, gotBody.Temperature)
	require.Len(t, gotBody.Messages, 1)
	assert.Contains(t, gotBody.Messages[0].Content, "$3.25 per hour")
	assert.Contains(t, gotBody.Messages[0].Content, "Suntec City")
	assert.Contains(t, gotBody.Messages[0].Content, "2 hours")

	assert.Equal(t, 6.5, result.TotalCost)
	assert.Equal(t, "2 hrs x $3.25", result.Breakdown)
	assert.Equal(t, "high", result.Confidence)
}

func TestAnthropicEstimateCostFencedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(oracleReply("Here is the calculation:\n```json\n{\"total_cost\": 1.2, \"breakdown\": \"1 hr\"}\n```")))
	}))
	defer server.Close()

	client := anthropicTestClient(server.URL)
	result, err := client.EstimateCost(context.Background(), OracleRequest{
		CarparkName:   "a",
		RateString:    "$1.20 per hour",
		DurationHours: 1,
		DayType:       model.DayTypeWeekday,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.2, result.TotalCost)
}

func TestAnthropicEstimateCostUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := anthropicTestClient(server.URL)
	_, err := client.EstimateCost(context.Background(), OracleRequest{
		CarparkName: "a", RateString: "$1/hr", DurationHours: 1, DayType: model.DayTypeWeekday,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestAnthropicDisabledWithoutKey(t *testing.T) {
	client := NewAnthropicClient(&config.AnthropicConfig{TimeoutSeconds: 1}, testLogger())
	assert.False(t, client.IsEnabled())

	_, err := client.EstimateCost(context.Background(), OracleRequest{})
	require.Error(t, err)
}
