package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"stylistapi/models"
)

const openMeteoURL = "https://api.open-meteo.com/v1/forecast"

// WeatherServiceProvider resolves a best-effort weather snapshot. A nil result
// means the lookup failed or the response was unusable, callers simply omit
// the weather context in that case.
type WeatherServiceProvider interface {
	Fetch(ctx context.Context, lat, lon float64) *models.WeatherSnapshot
}

type OpenMeteoService struct {
	BaseURL string
	Client  *http.Client
}

func NewOpenMeteoService() *OpenMeteoService {
	return &OpenMeteoService{
		BaseURL: openMeteoURL,
		Client:  &http.Client{Timeout: 4 * time.Second},
	}
}

type openMeteoCurrent struct {
	Temperature *float64 `json:"temperature_2m"`
	WeatherCode *int     `json:"weather_code"`
}

type openMeteoResponse struct {
	Current *openMeteoCurrent `json:"current"`
}

// MapWeatherCode maps a WMO weather code to the coarse condition label set.
func MapWeatherCode(code int) models.WeatherCondition {
	switch code {
	case 0:
		return models.ConditionClearSky
	case 1, 2, 3:
		return models.ConditionCloudy
	case 45, 48:
		return models.ConditionFoggy
	case 51, 53, 55, 61, 63, 65, 80, 81, 82:
		return models.ConditionRainy
	case 71, 73, 75, 77, 85, 86:
		return models.ConditionSnowy
	case 95, 96, 99:
		return models.ConditionThunderstorm
	default:
		return models.ConditionUnknown
	}
}

func (s *OpenMeteoService) Fetch(ctx context.Context, lat, lon float64) *models.WeatherSnapshot {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("current", "temperature_2m,weather_code")
	query.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		fmt.Printf("[Weather] lookup failed: %v\n", err)
		sentry.CaptureException(fmt.Errorf("[Weather] forecast lookup failed: %w", err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		sentry.CaptureException(fmt.Errorf("[Weather] forecast endpoint returned status %d", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var parsed openMeteoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		sentry.CaptureException(fmt.Errorf("[Weather] unexpected forecast payload: %w", err))
		return nil
	}
	if parsed.Current == nil || parsed.Current.Temperature == nil || parsed.Current.WeatherCode == nil {
		return nil
	}

	return &models.WeatherSnapshot{
		Condition:   MapWeatherCode(*parsed.Current.WeatherCode),
		Temperature: *parsed.Current.Temperature,
	}
}
