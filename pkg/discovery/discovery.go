// Package discovery finds food, cafes, shopping, emergency services and PG
// accommodation around Bengaluru from a curated snapshot. Lookups are
// deterministic so voice-session behavior is reproducible.
package discovery

import (
	"sort"
	"strings"
)

// Category buckets the curated places.
type Category string

const (
	CategoryAny       Category = ""
	CategoryFood      Category = "food"
	CategoryCafe      Category = "cafe"
	CategoryShopping  Category = "shopping"
	CategoryEmergency Category = "emergency"
	CategoryPG        Category = "pg"
)

// ParseCategory maps free-form user input to a Category. Unrecognized input
// means no category filter.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "food", "restaurant", "breakfast", "lunch", "dinner":
		return CategoryFood
	case "cafe", "coffee":
		return CategoryCafe
	case "shopping", "shop", "market":
		return CategoryShopping
	case "emergency", "hospital", "police":
		return CategoryEmergency
	case "pg", "hostel", "accommodation":
		return CategoryPG
	default:
		return CategoryAny
	}
}

// Place is one curated recommendation.
type Place struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        Category `json:"kind"`
	Category    string   `json:"category"`
	Address     string   `json:"address"`
	Rating      float64  `json:"rating,omitempty"`
	PriceRange  string   `json:"priceRange,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DistanceKM  float64  `json:"distanceKm,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Service searches the place snapshot.
type Service struct {
	places []Place
}

// NewService returns a Service over the built-in Bengaluru snapshot.
func NewService() *Service {
	return &Service{places: places}
}

// Nearby returns places matching the free-text query, location and category,
// nearest first. Empty query, location or category means "no filter on that
// axis"; all three empty returns everything.
func (s *Service) Nearby(query, location string, category Category) []Place {
	query = strings.ToLower(strings.TrimSpace(query))
	location = strings.ToLower(strings.TrimSpace(location))

	var out []Place
	for _, p := range s.places {
		if category != CategoryAny && p.Kind != category {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(p.Address), location) {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKM < out[j].DistanceKM
	})
	return out
}

func matchesQuery(p Place, query string) bool {
	for _, field := range []string{p.Name, p.Category, p.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
