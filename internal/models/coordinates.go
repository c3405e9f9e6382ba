package models

// Latitude and longitude bounds in degrees (WGS 84).
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Coordinates represents a geographical point defined by its latitude and longitude.
// It is derived once per inbound location event and never mutated afterwards.
type Coordinates struct {
	Latitude  float64 // Latitude of the geographical point.
	Longitude float64 // Longitude of the geographical point.
}

// Valid reports whether the coordinates lie within the geographic bounds.
func (c Coordinates) Valid() bool {
	return c.Latitude >= MinLatitude && c.Latitude <= MaxLatitude &&
		c.Longitude >= MinLongitude && c.Longitude <= MaxLongitude
}
