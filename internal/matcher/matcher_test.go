package matcher

import (
	"math"
	"testing"
	"time"

	"github.com/example/saathigo/internal/models"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func mkReq(id string, pickup, drop models.Coord, womenOnly, luggage bool, at time.Time) models.RideRequest {
	return models.RideRequest{
		ID:           id,
		UserName:     "user-" + id,
		PickupCoords: pickup,
		DropCoords:   drop,
		Preferences:  models.Preferences{WomenOnly: womenOnly, Luggage: luggage},
		CreatedAt:    at,
		Status:       models.StatusSearching,
	}
}

var (
	cpPickup = models.Coord{Lat: 28.6315, Lon: 77.2167}
	cpDrop   = models.Coord{Lat: 28.6129, Lon: 77.2295}
)

func TestFindMatchesNearbyPair(t *testing.T) {
	a := mkReq("a", cpPickup, cpDrop, true, false, t0)
	b := mkReq("b",
		models.Coord{Lat: 28.6320, Lon: 77.2170},
		models.Coord{Lat: 28.6135, Lon: 77.2300},
		true, false, t0.Add(time.Minute))

	got := FindMatches(b, []models.RideRequest{a}, Params{})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected single match a, got %+v", got)
	}
	if got[0].PickupDistanceKm > 0.1 {
		t.Fatalf("expected pickup distance well under 100m, got %f", got[0].PickupDistanceKm)
	}
	if got[0].PickupDistanceKm != math.Round(got[0].PickupDistanceKm*100)/100 {
		t.Fatalf("distance not rounded to 2 decimals: %v", got[0].PickupDistanceKm)
	}
}

func TestFindMatchesLuggageMismatch(t *testing.T) {
	a := mkReq("a", cpPickup, cpDrop, true, false, t0)
	b := mkReq("b", cpPickup, cpDrop, true, true, t0.Add(time.Minute))
	if got := FindMatches(b, []models.RideRequest{a}, Params{}); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestFindMatchesWomenOnlyOneDirectional(t *testing.T) {
	womenOnly := mkReq("w", cpPickup, cpDrop, true, false, t0)
	open := mkReq("o", cpPickup, cpDrop, false, false, t0)

	// A women-only query must not see a non-women-only candidate.
	if got := FindMatches(womenOnly, []models.RideRequest{open}, Params{}); len(got) != 0 {
		t.Fatalf("women-only query matched open candidate: %+v", got)
	}
	// The open query may see the women-only candidate.
	if got := FindMatches(open, []models.RideRequest{womenOnly}, Params{}); len(got) != 1 {
		t.Fatalf("open query should match women-only candidate, got %+v", got)
	}
}

func TestFindMatchesTimeWindow(t *testing.T) {
	a := mkReq("a", cpPickup, cpDrop, false, false, t0)
	c := mkReq("c", cpPickup, cpDrop, false, false, t0.Add(700*time.Second))

	if got := FindMatches(c, []models.RideRequest{a}, Params{}); len(got) != 0 {
		t.Fatalf("expected exclusion past 10 minutes, got %+v", got)
	}
	if got := FindMatches(a, []models.RideRequest{c}, Params{}); len(got) != 0 {
		t.Fatalf("window must exclude in both directions, got %+v", got)
	}
	// Exactly at the boundary still matches.
	edge := mkReq("e", cpPickup, cpDrop, false, false, t0.Add(10*time.Minute))
	if got := FindMatches(edge, []models.RideRequest{a}, Params{}); len(got) != 1 {
		t.Fatalf("expected match at exactly 10 minutes, got %+v", got)
	}
}

func TestFindMatchesNoSelfMatch(t *testing.T) {
	a := mkReq("a", cpPickup, cpDrop, false, false, t0)
	if got := FindMatches(a, []models.RideRequest{a}, Params{}); len(got) != 0 {
		t.Fatalf("request matched itself: %+v", got)
	}
}

func TestFindMatchesSkipsMatched(t *testing.T) {
	a := mkReq("a", cpPickup, cpDrop, false, false, t0)
	b := mkReq("b", cpPickup, cpDrop, false, false, t0)
	b.Status = models.StatusMatched
	if got := FindMatches(a, []models.RideRequest{b}, Params{}); len(got) != 0 {
		t.Fatalf("matched candidate must be excluded, got %+v", got)
	}
}

func TestFindMatchesSortedByPickupDistance(t *testing.T) {
	q := mkReq("q", cpPickup, cpDrop, false, false, t0)
	near := mkReq("near", models.Coord{Lat: 28.6316, Lon: 77.2168}, cpDrop, false, false, t0)
	far := mkReq("far", models.Coord{Lat: 28.6360, Lon: 77.2200}, cpDrop, false, false, t0)

	got := FindMatches(q, []models.RideRequest{far, near}, Params{})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != "near" || got[1].ID != "far" {
		t.Fatalf("expected near before far, got %s, %s", got[0].ID, got[1].ID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].PickupDistanceKm < got[i-1].PickupDistanceKm {
			t.Fatal("output not sorted ascending by pickup distance")
		}
	}
}

func TestFindMatchesStableTieBreak(t *testing.T) {
	q := mkReq("q", cpPickup, cpDrop, false, false, t0)
	first := mkReq("first", cpPickup, cpDrop, false, false, t0)
	second := mkReq("second", cpPickup, cpDrop, false, false, t0)

	got := FindMatches(q, []models.RideRequest{first, second}, Params{})
	if len(got) != 2 || got[0].ID != "first" || got[1].ID != "second" {
		t.Fatalf("tie not broken by input order: %+v", got)
	}
}

func TestFindMatchesEmptySnapshot(t *testing.T) {
	q := mkReq("q", cpPickup, cpDrop, false, false, t0)
	if got := FindMatches(q, nil, Params{}); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestFindMatchesIdenticalCoordinates(t *testing.T) {
	a := mkReq("a", cpPickup, cpDrop, false, false, t0)
	b := mkReq("b", cpPickup, cpDrop, false, false, t0)
	got := FindMatches(a, []models.RideRequest{b}, Params{})
	if len(got) != 1 {
		t.Fatalf("identical endpoints should match, got %+v", got)
	}
	if got[0].PickupDistanceKm != 0 || got[0].DropDistanceKm != 0 {
		t.Fatalf("expected zero distances, got %+v", got[0])
	}
}
