package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carparkfinder/internal/config"
	"carparkfinder/internal/model"
	"carparkfinder/internal/service"
)

type stubFeed struct {
	slots []model.SlotRecord
}

func (f *stubFeed) FetchCarparks(context.Context) ([]model.SlotRecord, error) {
	return f.slots, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	aliases, err := service.NewAliasTable(logger)
	require.NoError(t, err)
	pricing, err := service.NewPricingResolver(logger)
	require.NoError(t, err)

	oracle := service.NewAnthropicClient(&config.AnthropicConfig{TimeoutSeconds: 1}, logger)
	estimator := service.NewCostEstimator(oracle, 10, 2, logger)

	transport := &stubFeed{slots: []model.SlotRecord{
		{CarparkID: "1", Development: "Suntec City", LotType: model.LotTypeCar, AvailableLots: 50, Source: model.SourceLTA},
	}}
	housing := &stubFeed{slots: []model.SlotRecord{
		{CarparkID: "ACB", Development: "BLK 270 ALBERT CENTRE", LotType: model.LotTypeCar, AvailableLots: 20, Aggregated: true, Source: model.SourceHDB},
	}}

	svc := service.NewCarparkService(
		transport, housing,
		service.NewRanker(aliases, logger), pricing, estimator,
		1, 2, 100, logger,
	)

	router := gin.New()
	router.GET("/api/v1/carparks", NewCarparkHandler(svc).Search)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, url string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(w, req)

	body := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSearchEndpointBrowse(t *testing.T) {
	router := testRouter(t)

	w, body := doRequest(t, router, "/api/v1/carparks")
	assert.Equal(t, http.StatusOK, w.Code)

	var count int
	require.NoError(t, json.Unmarshal(body["count"], &count))
	assert.Equal(t, 2, count)
	assert.Contains(t, string(body["query_id"]), "-")
}

func TestSearchEndpointWithTerm(t *testing.T) {
	router := testRouter(t)

	w, body := doRequest(t, router, "/api/v1/carparks?search=suntec")
	assert.Equal(t, http.StatusOK, w.Code)

	var results []model.Carpark
	require.NoError(t, json.Unmarshal(body["results"], &results))
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].CarparkID)
}

func TestSearchEndpointInvalidDuration(t *testing.T) {
	router := testRouter(t)

	for _, url := range []string{
		"/api/v1/carparks?duration=abc",
		"/api/v1/carparks?duration=-2",
		"/api/v1/carparks?duration=0",
	} {
		w, body := doRequest(t, router, url)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
		assert.Contains(t, string(body["error"]), "duration", url)
	}
}

func TestSearchEndpointInvalidDayType(t *testing.T) {
	router := testRouter(t)

	w, body := doRequest(t, router, "/api/v1/carparks?day_type=holiday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(body["error"]), "day_type")
}

func TestSearchEndpointLocationValidation(t *testing.T) {
	router := testRouter(t)

	w, _ := doRequest(t, router, "/api/v1/carparks?lat=1.3")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, router, "/api/v1/carparks?lat=95&lng=103.8")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, router, "/api/v1/carparks?lat=1.3&lng=200")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, router, "/api/v1/carparks?lat=1.3&lng=103.8")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchEndpointSortValidation(t *testing.T) {
	router := testRouter(t)

	w, _ := doRequest(t, router, "/api/v1/carparks?sort=price")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, router, "/api/v1/carparks?sort=distance")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, router, "/api/v1/carparks?sort=distance&lat=1.3&lng=103.8")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchEndpointDayTypeCaseInsensitive(t *testing.T) {
	router := testRouter(t)

	w, _ := doRequest(t, router, "/api/v1/carparks?day_type=Saturday")
	assert.Equal(t, http.StatusOK, w.Code)
}
