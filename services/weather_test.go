package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylistapi/models"
)

func TestMapWeatherCode(t *testing.T) {
	cases := map[int]models.WeatherCondition{
		0:   models.ConditionClearSky,
		1:   models.ConditionCloudy,
		2:   models.ConditionCloudy,
		3:   models.ConditionCloudy,
		45:  models.ConditionFoggy,
		48:  models.ConditionFoggy,
		51:  models.ConditionRainy,
		61:  models.ConditionRainy,
		82:  models.ConditionRainy,
		71:  models.ConditionSnowy,
		86:  models.ConditionSnowy,
		95:  models.ConditionThunderstorm,
		99:  models.ConditionThunderstorm,
		4:   models.ConditionUnknown,
		50:  models.ConditionUnknown,
		100: models.ConditionUnknown,
		-1:  models.ConditionUnknown,
	}
	for code, want := range cases {
		assert.Equal(t, want, MapWeatherCode(code), "code %d", code)
	}
}

func TestWeatherSnapshotString(t *testing.T) {
	snapshot := models.WeatherSnapshot{Condition: models.ConditionRainy, Temperature: 15.0}
	assert.Equal(t, "Rainy, 15.0°C", snapshot.String())
}

func TestOpenMeteoFetchOk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "40.4", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-3.7", r.URL.Query().Get("longitude"))
		assert.Equal(t, "temperature_2m,weather_code", r.URL.Query().Get("current"))
		assert.Equal(t, "auto", r.URL.Query().Get("timezone"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current": {"temperature_2m": 15.0, "weather_code": 61}}`))
	}))
	defer server.Close()

	service := NewOpenMeteoService()
	service.BaseURL = server.URL

	snapshot := service.Fetch(context.Background(), 40.4, -3.7)
	require.NotNil(t, snapshot)
	assert.Equal(t, models.ConditionRainy, snapshot.Condition)
	assert.Equal(t, 15.0, snapshot.Temperature)
	assert.Equal(t, "Rainy, 15.0°C", snapshot.String())
}

func TestOpenMeteoFetchMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current": {"temperature_2m": 15.0}}`))
	}))
	defer server.Close()

	service := NewOpenMeteoService()
	service.BaseURL = server.URL

	assert.Nil(t, service.Fetch(context.Background(), 40.4, -3.7))
}

func TestOpenMeteoFetchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	service := NewOpenMeteoService()
	service.BaseURL = server.URL

	assert.Nil(t, service.Fetch(context.Background(), 40.4, -3.7))
}

func TestOpenMeteoFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewOpenMeteoService()
	service.BaseURL = server.URL

	assert.Nil(t, service.Fetch(context.Background(), 40.4, -3.7))
}

func TestOpenMeteoFetchNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	service := NewOpenMeteoService()
	service.BaseURL = server.URL
	service.Client = &http.Client{Timeout: 200 * time.Millisecond}

	assert.Nil(t, service.Fetch(context.Background(), 40.4, -3.7))
}
