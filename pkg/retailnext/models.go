package retailnext

import "encoding/json"

// Address is the remote address sub-object. Only the street address survives
// normalization.
type Address struct {
	StreetAddress string `json:"street_address"`
}

// RawLocation is one node of the remote location hierarchy as returned by the
// location endpoint. Attributes stays raw JSON: its internal structure is not
// interpreted, only carried through as text.
type RawLocation struct {
	ID               string          `json:"id"`
	ParentID         string          `json:"parent_id"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	Area             json.Number     `json:"area"`
	Attributes       json.RawMessage `json:"attributes"`
	Address          Address         `json:"address"`
	PosID            string          `json:"pos_id"`
	StoreID          string          `json:"store_id"`
	TimeZone         string          `json:"time_zone"`
	TimeZoneAbbrev   string          `json:"time_zone_abbrev"`
	CurrentUTCOffset json.Number     `json:"current_utc_offset"`
}

// LocationsPage is one page of the location hierarchy
type LocationsPage struct {
	Locations []RawLocation `json:"locations"`
}

// MetricGroup carries the window bounds of one data point
type MetricGroup struct {
	Start  string `json:"start"`
	Finish string `json:"finish"`
	Type   string `json:"type"`
}

// DataPoint is one grouped value within a metric's data list
type DataPoint struct {
	Group    *MetricGroup `json:"group"`
	Value    float64      `json:"value"`
	Validity string       `json:"validity"`
	Index    int          `json:"index"`
}

// Metric is one named metric with its grouped data points
type Metric struct {
	Name string      `json:"name"`
	Data []DataPoint `json:"data"`
}

// MetricsResponse is the datamine response envelope. The API can embed an
// error inside a 200/206 response; Err/ErrType surface that. A nil Metrics
// slice means the key was absent entirely, which is a routine no-data case.
type MetricsResponse struct {
	Metrics []Metric `json:"metrics"`
	Err     string   `json:"error,omitempty"`
	ErrType string   `json:"error_type,omitempty"`
}

// HasMetrics reports whether the metrics key was present in the response
func (r *MetricsResponse) HasMetrics() bool {
	return r.Metrics != nil
}

// EnvelopeError reports whether the response carries an API-level error
// despite a success status
func (r *MetricsResponse) EnvelopeError() bool {
	return r.Err != "" || r.ErrType != ""
}
