// Package feed fetches and normalizes the two upstream carpark availability
// feeds: the transport authority's slot-level feed and the housing
// authority's availability feed merged with its static geocoded reference.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"carparkfinder/internal/model"
)

// LTAClient fetches the transport authority's slot-level availability feed.
type LTAClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewLTAClient creates a client for the transport authority feed.
func NewLTAClient(apiURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *LTAClient {
	return &LTAClient{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ltaCarpark mirrors one row of the upstream payload. Location is a
// free-text "lat lng" pair and may be empty.
type ltaCarpark struct {
	CarParkID     string `json:"CarParkID"`
	Area          string `json:"Area"`
	Development   string `json:"Development"`
	Location      string `json:"Location"`
	AvailableLots int    `json:"AvailableLots"`
	LotType       string `json:"LotType"`
	Agency        string `json:"Agency"`
}

// FetchCarparks retrieves the live feed and returns normalized slot records.
// Rows with empty or unparsable coordinates are dropped with a warning so
// malformed geodata never propagates downstream.
func (c *LTAClient) FetchCarparks(ctx context.Context) ([]model.SlotRecord, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("AccountKey", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch carpark availability: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("carpark availability request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Value []ltaCarpark `json:"value"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return c.normalize(payload.Value), nil
}

func (c *LTAClient) normalize(rows []ltaCarpark) []model.SlotRecord {
	records := make([]model.SlotRecord, 0, len(rows))
	for _, row := range rows {
		point, err := parseLocation(row.Location)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"carpark_id": row.CarParkID,
				"location":   row.Location,
			}).Warn("Dropping carpark with unparsable location")
			continue
		}

		lots := row.AvailableLots
		if lots < 0 {
			lots = 0
		}

		records = append(records, model.SlotRecord{
			CarparkID:     row.CarParkID,
			Area:          row.Area,
			Development:   row.Development,
			Location:      point,
			LotType:       mapLotType(row.LotType),
			AvailableLots: lots,
			Source:        model.SourceLTA,
		})
	}
	return records
}

// parseLocation parses the feed's "lat lng" coordinate string.
func parseLocation(s string) (orb.Point, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return orb.Point{}, fmt.Errorf("malformed location %q", s)
	}
	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("malformed latitude %q: %w", fields[0], err)
	}
	lng, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("malformed longitude %q: %w", fields[1], err)
	}
	return orb.Point{lng, lat}, nil
}

// mapLotType maps the feed's single-letter lot type discriminators onto
// vehicle classes. Unknown letters pass through lowercased; the consolidator
// logs and skips them.
func mapLotType(raw string) model.LotType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "C":
		return model.LotTypeCar
	case "Y":
		return model.LotTypeMotorcycle
	case "H":
		return model.LotTypeHeavy
	}
	return model.LotType(strings.ToLower(strings.TrimSpace(raw)))
}
