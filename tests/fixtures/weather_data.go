package fixtures

// GetMockForecastResponse returns a canned Open-Meteo forecast payload
func GetMockForecastResponse() string {
	return `{
		"latitude": 37.5,
		"longitude": 127.0,
		"timezone": "Asia/Seoul",
		"hourly_units": {"temperature_2m": "°C"},
		"hourly": {
			"time": ["2025-01-01T00:00", "2025-01-01T01:00"],
			"temperature_2m": [-2.1, -2.4]
		}
	}`
}

// GetMockAirQualityResponse returns a canned Open-Meteo air-quality payload
func GetMockAirQualityResponse() string {
	return `{
		"latitude": 37.5,
		"longitude": 127.0,
		"hourly_units": {"pm2_5": "μg/m³"},
		"hourly": {
			"time": ["2025-01-01T00:00", "2025-01-01T01:00"],
			"pm2_5": [18.2, 17.6],
			"pm10": [31.0, 29.4]
		}
	}`
}

// GetInvalidJSONResponse returns a body that fails to decode as a JSON object
func GetInvalidJSONResponse() string {
	return `{"latitude": 37.5, "hourly": [truncated`
}
