package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_AllModesFastestFirst(t *testing.T) {
	t.Parallel()

	svc := NewService()
	routes := svc.Search("MG Road", "Whitefield", ModeAll)
	require.Len(t, routes, 3)

	assert.Equal(t, "metro", routes[0].Type)
	assert.Equal(t, "Purple Line (Challaghatta - Whitefield)", routes[0].LineName)
	assert.Equal(t, "MG Road", routes[0].FromStop)
	assert.Equal(t, "Whitefield", routes[0].ToStop)
	assert.Equal(t, 15, routes[0].DurationMin)
	assert.Equal(t, 6, routes[0].StopsCount)
	assert.Equal(t, 24, routes[0].Fare)
	assert.True(t, routes[0].AC)

	assert.Equal(t, "bus", routes[1].Type)
	assert.Equal(t, "335E", routes[1].RouteID)
	assert.Equal(t, 24, routes[1].DurationMin)
	assert.Equal(t, 45, routes[1].Fare)
	assert.Equal(t, CrowdingMedium, routes[1].Crowding)

	assert.Equal(t, "cab", routes[2].Type)
	assert.InDelta(t, 17.3, routes[2].DistanceKM, 0.05)
	assert.Equal(t, 340, routes[2].Fare)
	assert.Equal(t, 77, routes[2].DurationMin)
}

func TestSearch_BusOnly(t *testing.T) {
	t.Parallel()

	routes := NewService().Search("jayanagar", "electronic city", ModeBus)
	require.Len(t, routes, 1)

	r := routes[0]
	assert.Equal(t, "500K", r.RouteID)
	assert.Equal(t, "Jayanagar", r.FromStop)
	assert.Equal(t, "Electronic City", r.ToStop)
	assert.Equal(t, 5, r.StopsCount)
	assert.Equal(t, 32, r.DurationMin)
	assert.Equal(t, 80, r.Fare)
	assert.True(t, r.AC)
	assert.Equal(t, CrowdingLow, r.Crowding)
}

func TestSearch_Directional(t *testing.T) {
	t.Parallel()

	// Stop order matters: the reverse journey is not offered on this snapshot.
	routes := NewService().Search("Whitefield", "MG Road", ModeMetro)
	assert.Empty(t, routes)
}

func TestSearch_CabNeedsKnownLocalities(t *testing.T) {
	t.Parallel()

	svc := NewService()
	assert.Empty(t, svc.Search("Kengeri", "Whitefield", ModeCab))

	routes := svc.Search("koramangala", "hsr layout", ModeCab)
	require.Len(t, routes, 1)
	assert.Equal(t, "cab", routes[0].Type)
	assert.Greater(t, routes[0].Fare, cabBaseFare)
}

func TestSearch_BlankInputs(t *testing.T) {
	t.Parallel()

	svc := NewService()
	assert.Empty(t, svc.Search("", "Whitefield", ModeAll))
	assert.Empty(t, svc.Search("MG Road", "  ", ModeAll))
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Mode
	}{
		{"bus", ModeBus},
		{"Metro", ModeMetro},
		{"train", ModeMetro},
		{"auto", ModeCab},
		{"taxi", ModeCab},
		{"", ModeAll},
		{"anything", ModeAll},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseMode(tt.in), "input %q", tt.in)
	}
}
