package locations

import (
	"rntap/pkg/retailnext"
)

// Location is one node of the hierarchy flattened for output. Every field is
// a string; numeric and structured values are rendered as text so the stream
// stays uniform across tenants with divergent attribute shapes.
type Location struct {
	ID               string `json:"id"`
	ParentID         string `json:"parent_id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Area             string `json:"area"`
	Attributes       string `json:"attributes"`
	StreetAddress    string `json:"street_address"`
	PosID            string `json:"pos_id"`
	StoreID          string `json:"store_id"`
	TimeZone         string `json:"time_zone"`
	TimeZoneAbbrev   string `json:"time_zone_abbrev"`
	CurrentUTCOffset string `json:"current_utc_offset"`
	Date             string `json:"date"`
}

// Normalize flattens a raw hierarchy node. The address collapses to its
// street address, attributes are carried through as their JSON text, and the
// record is stamped with the run's execution date.
func Normalize(raw retailnext.RawLocation, executionDate string) Location {
	return Location{
		ID:               raw.ID,
		ParentID:         raw.ParentID,
		Name:             raw.Name,
		Type:             raw.Type,
		Area:             raw.Area.String(),
		Attributes:       string(raw.Attributes),
		StreetAddress:    raw.Address.StreetAddress,
		PosID:            raw.PosID,
		StoreID:          raw.StoreID,
		TimeZone:         raw.TimeZone,
		TimeZoneAbbrev:   raw.TimeZoneAbbrev,
		CurrentUTCOffset: raw.CurrentUTCOffset.String(),
		Date:             executionDate,
	}
}

// Leaves returns the ids of locations no other location names as parent.
// Order follows the order locations arrived in.
func Leaves(all []Location) []string {
	parents := make(map[string]struct{}, len(all))
	for _, loc := range all {
		if loc.ParentID != "" {
			parents[loc.ParentID] = struct{}{}
		}
	}

	var leaves []string
	for _, loc := range all {
		if _, isParent := parents[loc.ID]; !isParent {
			leaves = append(leaves, loc.ID)
		}
	}
	return leaves
}
