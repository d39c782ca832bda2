package models

import "fmt"

// WeatherCondition is a coarse label mapped from a WMO weather code.
type WeatherCondition string

const (
	ConditionClearSky     WeatherCondition = "Clear Sky"
	ConditionCloudy       WeatherCondition = "Cloudy"
	ConditionFoggy        WeatherCondition = "Foggy"
	ConditionRainy        WeatherCondition = "Rainy"
	ConditionSnowy        WeatherCondition = "Snowy"
	ConditionThunderstorm WeatherCondition = "Thunderstorm"
	ConditionUnknown      WeatherCondition = "Unknown"
)

// WeatherSnapshot is fetched fresh per request and never cached.
type WeatherSnapshot struct {
	Condition   WeatherCondition `json:"condition"`
	Temperature float64          `json:"temperature"`
}

// String renders the snapshot for direct prompt embedding, e.g. "Rainy, 15.0°C".
func (w WeatherSnapshot) String() string {
	return fmt.Sprintf("%s, %.1f°C", w.Condition, w.Temperature)
}
