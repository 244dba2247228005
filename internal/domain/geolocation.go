package domain

// GeolocationCoordinates is a raw latitude/longitude pair supplied by the
// client. It is input-only: once copied into a GeolocationData at trip
// creation it is never read again.
type GeolocationCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeolocationData is a coordinate pair optionally annotated with a resolved
// country and locality. Empty Country/Locality is a valid persisted state
// meaning "not yet enriched" or "could not be resolved" — it is reported as
// data by LocationErrors, never as an error.
type GeolocationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country,omitempty"`
	Locality  string  `json:"locality,omitempty"`
}

// GeolocationInfo is the result payload of a successful geocoding lookup.
type GeolocationInfo struct {
	Country  string `json:"country"`
	Locality string `json:"locality"`
}

// NewGeolocationData copies coordinates into a GeolocationData with
// country/locality unset.
func NewGeolocationData(c GeolocationCoordinates) GeolocationData {
	return GeolocationData{Latitude: c.Latitude, Longitude: c.Longitude}
}

// Coordinates returns the immutable coordinate pair of d, used as the
// enrichment lookup key.
func (d GeolocationData) Coordinates() GeolocationCoordinates {
	return GeolocationCoordinates{Latitude: d.Latitude, Longitude: d.Longitude}
}

// Resolved reports whether d carries at least a resolved country.
func (d GeolocationData) Resolved() bool {
	return d.Country != ""
}

// WithResolved returns a copy of d with country and locality filled in from
// info. Latitude and longitude are untouched — only enrichment fields change.
func (d GeolocationData) WithResolved(info GeolocationInfo) GeolocationData {
	out := d
	out.Country = info.Country
	out.Locality = info.Locality
	return out
}
