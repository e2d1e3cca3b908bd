package locations

import (
	"rntap/pkg/logger"
	"rntap/pkg/retailnext"
)

// Fetcher is the slice of the API client the resolver needs
type Fetcher interface {
	GetLocations(pageStart string) (*retailnext.LocationsPage, string, error)
}

// Resolver walks the paginated location hierarchy to completion
type Resolver struct {
	client Fetcher
	logger logger.Logger
}

// NewResolver creates a resolver over the given client
func NewResolver(client Fetcher, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{client: client, logger: log}
}

// Resolve fetches every page of the hierarchy, normalizes each node and hands
// it to emit as it arrives. It returns the complete normalized set; a failure
// on any page fails the whole resolution.
func (r *Resolver) Resolve(executionDate string, emit func(Location) error) ([]Location, error) {
	var all []Location
	pageStart := ""
	pages := 0

	for {
		page, next, err := r.client.GetLocations(pageStart)
		if err != nil {
			return nil, err
		}
		pages++

		for _, raw := range page.Locations {
			loc := Normalize(raw, executionDate)
			if emit != nil {
				if err := emit(loc); err != nil {
					return nil, err
				}
			}
			all = append(all, loc)
		}

		if next == "" {
			break
		}
		pageStart = next
	}

	r.logger.InfoWithFields("location hierarchy resolved", map[string]interface{}{
		"locations": len(all),
		"pages":     pages,
	})

	return all, nil
}
