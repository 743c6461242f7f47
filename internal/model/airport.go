package model

// Airport is immutable reference data for a supported airport. The registry
// loads these once at startup; they are read-only afterwards.
type Airport struct {
	Code  string  `json:"code"`  // 3-letter IATA code, uppercase, unique
	Name  string  `json:"name"`
	City  string  `json:"city,omitempty"`
	State string  `json:"state"` // full state name, used for capacity-factor and CO2 lookup
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}
