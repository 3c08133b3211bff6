package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Coord is a (latitude, longitude) pair. On the wire it is a two-element
// JSON array [lat, lon], which is what the clients send.
type Coord struct {
	Lat float64
	Lon float64
}

func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lon})
}

func (c *Coord) UnmarshalJSON(b []byte) error {
	var arr [2]float64
	if err := json.Unmarshal(b, &arr); err != nil {
		return fmt.Errorf("coord must be a [lat, lon] array: %w", err)
	}
	c.Lat, c.Lon = arr[0], arr[1]
	return nil
}

// Valid reports whether both components are finite. Range checks are
// deliberately omitted; out-of-range degrees still yield a well-defined
// haversine result and callers own any stricter validation.
func (c Coord) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lon) && !math.IsInf(c.Lon, 0)
}

// Status is the lifecycle state of a ride request. A request starts
// searching and moves to matched at most once, never back.
type Status string

const (
	StatusSearching Status = "searching"
	StatusMatched   Status = "matched"
)

// Preferences are immutable rider constraints checked during matching.
// WomenOnly is one-directional: a women-only request only accepts other
// women-only requests, while a request without the flag may still be shown
// one that has it. Luggage must agree exactly in both directions.
type Preferences struct {
	WomenOnly bool `json:"womenOnly"`
	Luggage   bool `json:"luggage"`
}

// RideRequest is one rider's active search for a shared ride. ID equals the
// owning connection's identity; the registry holds at most one request per
// connection.
type RideRequest struct {
	ID           string `json:"id"`
	UserName     string `json:"userName"`
	PickupCoords Coord  `json:"pickupCoords"`
	DropCoords   Coord  `json:"dropCoords"`
	Preferences
	CreatedAt time.Time `json:"createdAt"`
	Status    Status    `json:"status"`

	// Extra carries rider-supplied display fields (pickup label, avatar,
	// ...) that the matching core passes through uninterpreted.
	Extra map[string]json.RawMessage `json:"extra,omitempty"`
}

// MatchCandidate is a RideRequest annotated with distances relative to a
// specific querying request, rounded to two decimals for presentation.
// Always derived on demand; the pool mutates between computations.
type MatchCandidate struct {
	RideRequest
	PickupDistanceKm float64 `json:"pickupDistanceKm"`
	DropDistanceKm   float64 `json:"dropDistanceKm"`
}

// ConfirmedMatch records a mutually accepted share for the audit archive
// and the analytics stream. It is not part of live matching state.
type ConfirmedMatch struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	AccepterID  string    `json:"accepter_id"`
	Pickup      Coord     `json:"pickup"`
	Drop        Coord     `json:"drop"`
	MatchedAt   time.Time `json:"matched_at"`
}
