package model

// Forecast is the shape of a cached per-day forecast record. Providers live
// outside the core; this is only consumed, e.g. in the daily summary.
type Forecast struct {
	Condition   string  `json:"condition"`
	Temperature float64 `json:"temperature"`
	HighTemp    float64 `json:"highTemp"`
	LowTemp     float64 `json:"lowTemp"`
	Day         string  `json:"day"`
}
