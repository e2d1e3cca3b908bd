package retailnext

import "strings"

const (
	// DefaultBaseURL is the production API root
	DefaultBaseURL = "https://api.retailnext.net/v1"

	// LocationEndpoint serves the paginated location hierarchy
	LocationEndpoint = "/location"

	// DatamineEndpoint accepts metric query filters
	DatamineEndpoint = "/datamine"

	// Pagination headers. A 206 response carries HeaderPageNext; the
	// continuation request echoes it back as HeaderPageStart.
	HeaderPageStart  = "X-Page-Start"
	HeaderPageNext   = "X-Page-Next"
	HeaderPageLength = "X-Page-Length"

	// PageLength is the fixed page size for continuation requests
	PageLength = 100
)

// LocationURL constructs the location hierarchy URL for a base URL
func LocationURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + LocationEndpoint
}

// DatamineURL constructs the metric query URL for a base URL
func DatamineURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + DatamineEndpoint
}
