package models

import (
	"fmt"
	"time"
)

type CurrentWeather struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Text      string  `json:"text"`
	Icon      string  `json:"icon"`
	Humidity  float64 `json:"humidity"`
	WindDir   string  `json:"wind_dir"`
	WindScale string  `json:"wind_scale"`
}

type ForecastDay struct {
	Date      string  `json:"date"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	TextDay   string  `json:"text_day"`
	TextNight string  `json:"text_night"`
	IconDay   string  `json:"icon_day"`
	IconNight string  `json:"icon_night"`
}

type WeatherData struct {
	Location string         `json:"location"`
	Current  CurrentWeather `json:"current"`
	Forecast []ForecastDay  `json:"forecast"`
	CachedAt time.Time      `json:"cached_at"`
}

// WeatherSnapshot is the compact weather a recommendation was generated for.
type WeatherSnapshot struct {
	Temp float64 `json:"temp"`
	Text string  `json:"text"`
}

func (w WeatherData) Snapshot() WeatherSnapshot {
	return WeatherSnapshot{Temp: w.Current.Temp, Text: w.Current.Text}
}

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// ClothingLevel buckets a temperature into a dressing advice level.
func ClothingLevel(temp float64) string {
	switch {
	case temp >= 30:
		return "炎热"
	case temp >= 25:
		return "温暖"
	case temp >= 20:
		return "舒适"
	case temp >= 15:
		return "微凉"
	case temp >= 10:
		return "凉爽"
	case temp >= 5:
		return "寒冷"
	default:
		return "严寒"
	}
}

func WeatherIconURL(icon string) string {
	return fmt.Sprintf("https://a.hecdn.net/img/common/icon/202106d/%s.png", icon)
}
