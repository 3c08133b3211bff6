package matcher

import (
	"math"
	"sort"
	"time"

	"github.com/example/saathigo/internal/geo"
	"github.com/example/saathigo/internal/models"
)

// Defaults mirror the product rules: both endpoints within 1 km and
// submissions within 10 minutes of each other.
const (
	DefaultRadiusKm = 1.0
	DefaultWindow   = 10 * time.Minute
)

// Params tune the compatibility predicate. Zero values fall back to the
// defaults above.
type Params struct {
	RadiusKm float64
	Window   time.Duration
}

func (p Params) radius() float64 {
	if p.RadiusKm > 0 {
		return p.RadiusKm
	}
	return DefaultRadiusKm
}

func (p Params) window() time.Duration {
	if p.Window > 0 {
		return p.Window
	}
	return DefaultWindow
}

// FindMatches returns the candidates in snapshot compatible with query,
// ranked by pickup proximity. Pure: it never mutates its inputs and is safe
// to call concurrently on any registry snapshot.
//
// A candidate qualifies when all of these hold: it is a different request,
// still searching, both its pickup and drop are within the radius of the
// query's, the two submissions are within the time window, and preferences
// are compatible (women-only is required one-directionally by the query,
// luggage must match exactly). Filtering uses full-precision distances; the
// two-decimal rounding is presentation only.
func FindMatches(query models.RideRequest, snapshot []models.RideRequest, p Params) []models.MatchCandidate {
	radius := p.radius()
	window := p.window()

	var matches []models.MatchCandidate
	for _, cand := range snapshot {
		if cand.ID == query.ID {
			continue
		}
		if cand.Status != models.StatusSearching {
			continue
		}

		pickupDist := geo.DistanceKm(query.PickupCoords, cand.PickupCoords)
		dropDist := geo.DistanceKm(query.DropCoords, cand.DropCoords)
		if pickupDist > radius || dropDist > radius {
			continue
		}

		delta := query.CreatedAt.Sub(cand.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta > window {
			continue
		}

		if query.WomenOnly && !cand.WomenOnly {
			continue
		}
		if query.Luggage != cand.Luggage {
			continue
		}

		matches = append(matches, models.MatchCandidate{
			RideRequest:      cand,
			PickupDistanceKm: round2(pickupDist),
			DropDistanceKm:   round2(dropDist),
		})
	}

	// Stable keeps registry insertion order for equal rounded distances.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].PickupDistanceKm < matches[j].PickupDistanceKm
	})
	return matches
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
