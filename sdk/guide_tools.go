package guide

import (
	"context"

	"github.com/namma-guide/guide-go/pkg/discovery"
	"github.com/namma-guide/guide-go/pkg/transport"
)

// GuideTools bundles the Bengaluru tool handlers for a live session:
// findRoutes over the transport snapshot and findPlaces over the discovery
// snapshot. captureImage is built into the session itself.
func GuideTools(transportSvc *transport.Service, discoverySvc *discovery.Service) []ToolWithHandler {
	findRoutes := MakeTool("findRoutes",
		"Find bus, metro and cab routes between two places in Bengaluru",
		func(ctx context.Context, input struct {
			Origin      string `json:"origin" desc:"Starting point, e.g. a locality, metro station or bus stop"`
			Destination string `json:"destination" desc:"Where the user wants to go"`
			Mode        string `json:"mode,omitempty" desc:"Restrict to one kind of transport" enum:"all,bus,metro,cab"`
		}) (map[string]any, error) {
			routes := transportSvc.Search(input.Origin, input.Destination, transport.ParseMode(input.Mode))
			return map[string]any{"routes": routes}, nil
		},
	)

	findPlaces := MakeTool("findPlaces",
		"Find food, cafes, shopping, emergency services or PG accommodation in Bengaluru",
		func(ctx context.Context, input struct {
			Query    string `json:"query,omitempty" desc:"Free-text of what the user wants, e.g. dosa, filter coffee"`
			Location string `json:"location,omitempty" desc:"Neighbourhood to search around, e.g. Koramangala"`
			Category string `json:"category,omitempty" desc:"Kind of place" enum:"food,cafe,shopping,emergency,pg"`
		}) (map[string]any, error) {
			places := discoverySvc.Nearby(input.Query, input.Location, discovery.ParseCategory(input.Category))
			return map[string]any{"places": places}, nil
		},
	)

	return []ToolWithHandler{findRoutes, findPlaces}
}
