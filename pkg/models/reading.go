package models

// Canonical reading types, in snapshot order.
const (
	TypeEC        = "ec"
	TypePH        = "ph"
	TypeWaterTemp = "water_temperature"
	TypeAirTemp   = "air_temperature"
	TypeHumidity  = "humidity"
	TypeLight     = "light"
)

// Reading is a single measurement with its unit. Values carry at most
// two decimal places.
type Reading struct {
	Type  string  `json:"readingType"`
	Value float64 `json:"readingValue"`
	Unit  string  `json:"readingUnit"`
}

// Snapshot is the complete set of readings produced by one tick:
// always six entries, in canonical order.
type Snapshot []Reading
