// Package transport answers "how do I get from A to B" questions for
// Bengaluru. Route data is a curated snapshot of BMTC bus routes, Namma Metro
// lines and locality coordinates; search over it is fully deterministic.
package transport

import (
	"math"
	"sort"
	"strings"
)

// Mode restricts a search to one kind of transport.
type Mode string

const (
	ModeAll   Mode = "all"
	ModeBus   Mode = "bus"
	ModeMetro Mode = "metro"
	ModeCab   Mode = "cab"
)

// ParseMode maps free-form user input to a Mode, defaulting to ModeAll.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bus":
		return ModeBus
	case "metro", "train":
		return ModeMetro
	case "cab", "auto", "taxi":
		return ModeCab
	default:
		return ModeAll
	}
}

// Crowding is a coarse occupancy estimate.
type Crowding string

const (
	CrowdingLow    Crowding = "low"
	CrowdingMedium Crowding = "medium"
	CrowdingHigh   Crowding = "high"
)

// Route is one way of making a journey. Fares are rupees.
type Route struct {
	Type           string   `json:"type"`
	RouteID        string   `json:"routeId,omitempty"`
	RouteName      string   `json:"routeName,omitempty"`
	LineName       string   `json:"lineName,omitempty"`
	Operator       string   `json:"operator"`
	FromStop       string   `json:"fromStop"`
	ToStop         string   `json:"toStop"`
	DurationMin    int      `json:"durationMinutes"`
	Fare           int      `json:"fare"`
	StopsCount     int      `json:"stopsCount,omitempty"`
	NextArrivalMin int      `json:"nextArrivalMinutes,omitempty"`
	Crowding       Crowding `json:"crowding,omitempty"`
	AC             bool     `json:"ac,omitempty"`
	DistanceKM     float64  `json:"distanceKm,omitempty"`
}

type busRoute struct {
	id       string
	name     string
	operator string
	stops    []string
	freqMin  int
	fare     int
	ac       bool
}

type metroLine struct {
	id       string
	name     string
	operator string
	stations []string
	freqMin  int
	fareBase int
	farePerK int
}

type locality struct {
	lat, lng float64
}

// Service searches the route snapshot.
type Service struct {
	buses      []busRoute
	metros     []metroLine
	localities map[string]locality
}

// NewService returns a Service over the built-in Bengaluru snapshot.
func NewService() *Service {
	return &Service{buses: bmtcRoutes, metros: metroLines, localities: localities}
}

const (
	minutesPerBusStop     = 8
	minutesPerMetroStop   = 3
	kmPerMetroStop        = 1.5
	cabBaseFare           = 30
	cabFarePerKM          = 18
	cabSpeedKMH           = 20
	cabTrafficFactor      = 1.5
	kmPerCoordinateDegree = 111
)

// Search returns journeys from origin to destination, fastest first.
// Matching is case-insensitive on stop and station name substrings; routes
// are directional, so a journey against the stop order is not offered.
func (s *Service) Search(origin, destination string, mode Mode) []Route {
	origin = strings.ToLower(strings.TrimSpace(origin))
	destination = strings.ToLower(strings.TrimSpace(destination))
	if origin == "" || destination == "" {
		return nil
	}

	var routes []Route
	if mode == ModeAll || mode == ModeBus {
		for _, b := range s.buses {
			from, to, ok := segment(b.stops, origin, destination)
			if !ok {
				continue
			}
			stops := to - from
			routes = append(routes, Route{
				Type:           "bus",
				RouteID:        b.id,
				RouteName:      b.name,
				Operator:       b.operator,
				FromStop:       b.stops[from],
				ToStop:         b.stops[to],
				DurationMin:    stops * minutesPerBusStop,
				Fare:           b.fare,
				StopsCount:     stops + 1,
				NextArrivalMin: nextArrival(b.freqMin),
				Crowding:       crowdingFor(b.ac, stops),
				AC:             b.ac,
			})
		}
	}
	if mode == ModeAll || mode == ModeMetro {
		for _, m := range s.metros {
			from, to, ok := segment(m.stations, origin, destination)
			if !ok {
				continue
			}
			stops := to - from
			distKM := float64(stops) * kmPerMetroStop
			routes = append(routes, Route{
				Type:           "metro",
				RouteID:        m.id,
				LineName:       m.name,
				Operator:       m.operator,
				FromStop:       m.stations[from],
				ToStop:         m.stations[to],
				DurationMin:    stops * minutesPerMetroStop,
				Fare:           m.fareBase + int(distKM)*m.farePerK,
				StopsCount:     stops + 1,
				NextArrivalMin: nextArrival(m.freqMin),
				Crowding:       CrowdingMedium,
				AC:             true,
				DistanceKM:     distKM,
			})
		}
	}
	if mode == ModeAll || mode == ModeCab {
		if r, ok := s.cabEstimate(origin, destination); ok {
			routes = append(routes, r)
		}
	}

	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].DurationMin != routes[j].DurationMin {
			return routes[i].DurationMin < routes[j].DurationMin
		}
		return routes[i].Fare < routes[j].Fare
	})
	return routes
}

// cabEstimate prices an auto/cab ride between two known localities using
// straight-line distance and a fixed rush-hour traffic factor.
func (s *Service) cabEstimate(origin, destination string) (Route, bool) {
	from, ok := s.locality(origin)
	if !ok {
		return Route{}, false
	}
	to, ok := s.locality(destination)
	if !ok {
		return Route{}, false
	}
	distKM := math.Hypot(to.lat-from.lat, to.lng-from.lng) * kmPerCoordinateDegree
	if distKM == 0 {
		return Route{}, false
	}
	return Route{
		Type:        "cab",
		Operator:    "Auto / Cab",
		FromStop:    title(origin),
		ToStop:      title(destination),
		DurationMin: int(distKM / cabSpeedKMH * 60 * cabTrafficFactor),
		Fare:        cabBaseFare + int(distKM*cabFarePerKM),
		DistanceKM:  math.Round(distKM*10) / 10,
	}, true
}

func (s *Service) locality(name string) (locality, bool) {
	key := strings.ReplaceAll(name, " ", "_")
	if l, ok := s.localities[key]; ok {
		return l, true
	}
	for k, l := range s.localities {
		if strings.Contains(k, key) {
			return l, true
		}
	}
	return locality{}, false
}

// segment finds the boarding and alighting indices on an ordered stop list.
func segment(stops []string, origin, destination string) (int, int, bool) {
	from, to := -1, -1
	for i, stop := range stops {
		lower := strings.ToLower(stop)
		if from < 0 && strings.Contains(lower, origin) {
			from = i
		}
		if strings.Contains(lower, destination) {
			to = i
		}
	}
	if from < 0 || to < 0 || from >= to {
		return 0, 0, false
	}
	return from, to, true
}

// nextArrival stands in for a live feed: half the headway, at least a minute.
func nextArrival(freqMin int) int {
	if freqMin < 2 {
		return 1
	}
	return freqMin / 2
}

func crowdingFor(ac bool, stops int) Crowding {
	switch {
	case ac:
		return CrowdingLow
	case stops >= 6:
		return CrowdingHigh
	default:
		return CrowdingMedium
	}
}

func title(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
