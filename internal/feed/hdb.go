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
	"carparkfinder/internal/staticdata"
)

// HDBClient fetches the housing authority feed: a static geocoded reference
// table merged with the live per-carpark availability endpoint by carpark
// number. The live feed only publishes aggregated car-lot counts, so every
// record it yields is pre-aggregated.
type HDBClient struct {
	availURL   string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
	reference  []staticdata.HDBCarparkInfo
}

// NewHDBClient creates a client for the housing authority feed. The static
// reference table is loaded once here and is read-only afterwards.
func NewHDBClient(availURL, apiKey string, timeout time.Duration, logger *logrus.Logger) (*HDBClient, error) {
	reference, err := staticdata.HDBCarparks()
	if err != nil {
		return nil, fmt.Errorf("failed to load HDB carpark reference: %w", err)
	}
	logger.WithField("carparks", len(reference)).Info("Loaded HDB carpark reference")

	return &HDBClient{
		availURL: availURL,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:    logger,
		reference: reference,
	}, nil
}

type hdbAvailability struct {
	LotsAvailable int
	TotalLots     int
	UpdatedAt     string
}

// FetchCarparks merges the static reference with live availability and
// returns normalized slot records in reference-table order. A failed
// availability fetch degrades to zero-lot records rather than failing the
// whole feed.
func (c *HDBClient) FetchCarparks(ctx context.Context) ([]model.SlotRecord, error) {
	availability, err := c.fetchAvailability(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("HDB availability fetch failed, serving static reference only")
		availability = map[string]hdbAvailability{}
	}

	records := make([]model.SlotRecord, 0, len(c.reference))
	for _, info := range c.reference {
		if info.Lat == 0 && info.Lng == 0 {
			c.logger.WithField("carpark_id", info.CarParkNo).Warn("Dropping HDB carpark without coordinates")
			continue
		}

		avail := availability[info.CarParkNo]
		records = append(records, model.SlotRecord{
			CarparkID:     info.CarParkNo,
			Area:          ExtractArea(info.Address),
			Development:   info.Address,
			Address:       info.Address,
			Location:      orb.Point{info.Lng, info.Lat},
			LotType:       model.LotTypeCar,
			AvailableLots: avail.LotsAvailable,
			Source:        model.SourceHDB,
			Aggregated:    true,
			UpdatedAt:     avail.UpdatedAt,
			HDB: &model.HDBDetails{
				CarParkType:      info.CarParkType,
				ParkingSystem:    info.TypeOfParkingSystem,
				ShortTermParking: info.ShortTermParking,
				FreeParking:      info.FreeParking,
				NightParking:     info.NightParking,
				Decks:            info.CarParkDecks,
				GantryHeight:     info.GantryHeight,
				Basement:         info.CarParkBasement,
			},
		})
	}
	return records, nil
}

// fetchAvailability queries the live endpoint and aggregates car-lot counts
// per carpark number. The upstream publishes lot counts as strings.
func (c *HDBClient) fetchAvailability(ctx context.Context) (map[string]hdbAvailability, error) {
	if c.apiKey == "" {
		c.logger.Warn("DATAGOV_API_KEY not configured, HDB availability disabled")
		return map[string]hdbAvailability{}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.availURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HDB availability: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HDB availability request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Items []struct {
			CarparkData []struct {
				CarparkNumber  string `json:"carpark_number"`
				UpdateDatetime string `json:"update_datetime"`
				CarparkInfo    []struct {
					TotalLots     string `json:"total_lots"`
					LotType       string `json:"lot_type"`
					LotsAvailable string `json:"lots_available"`
				} `json:"carpark_info"`
			} `json:"carpark_data"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("no items in HDB availability response")
	}

	availability := make(map[string]hdbAvailability)
	for _, cp := range payload.Items[0].CarparkData {
		if cp.CarparkNumber == "" {
			continue
		}
		var agg hdbAvailability
		agg.UpdatedAt = cp.UpdateDatetime
		for _, info := range cp.CarparkInfo {
			if info.LotType != "C" {
				continue
			}
			if n, err := strconv.Atoi(info.LotsAvailable); err == nil && n > 0 {
				agg.LotsAvailable += n
			}
			if n, err := strconv.Atoi(info.TotalLots); err == nil && n > 0 {
				agg.TotalLots += n
			}
		}
		availability[cp.CarparkNumber] = agg
	}

	c.logger.WithField("carparks", len(availability)).Debug("Fetched HDB availability")
	return availability, nil
}

// addressStopWords terminate the area phrase extracted from an HDB address.
var addressStopWords = map[string]bool{
	"STREET": true, "AVENUE": true, "ROAD": true, "CRESCENT": true,
	"DRIVE": true, "LANE": true, "CLOSE": true, "PARK": true,
	"CAR": true, "MULTI-STOREY": true, "BASEMENT": true, "SURFACE": true,
}

// ExtractArea derives an area name from an HDB address such as
// "BLK 270/271 ALBERT CENTRE BASEMENT CAR PARK" or
// "BLOCK 253 ANG MO KIO STREET 22".
func ExtractArea(address string) string {
	upper := strings.ToUpper(strings.TrimSpace(address))

	for _, prefix := range []string{"BLKS ", "BLOCKS ", "BLK ", "BLOCK "} {
		if strings.HasPrefix(upper, prefix) {
			upper = upper[len(prefix):]
			break
		}
	}

	parts := strings.Fields(upper)

	// Skip the block number itself (digits, possibly with / or - separators
	// and a trailing letter like 712A).
	if len(parts) > 0 && isBlockNumber(parts[0]) {
		parts = parts[1:]
	}

	var areaWords []string
	for _, word := range parts {
		if isAllDigits(word) || addressStopWords[word] {
			break
		}
		areaWords = append(areaWords, word)
		if len(areaWords) >= 3 {
			break
		}
	}

	if len(areaWords) == 0 {
		return "HDB"
	}
	return strings.Join(areaWords, " ")
}

func isBlockNumber(word string) bool {
	stripped := strings.NewReplacer("/", "", "-", "").Replace(word)
	if stripped == "" {
		return false
	}
	digits := 0
	for _, r := range stripped {
		if r >= '0' && r <= '9' {
			digits++
		} else if !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return digits > 0
}

func isAllDigits(word string) bool {
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(word) > 0
}
