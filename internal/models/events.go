package models

import "encoding/json"

// Event is the envelope for every message crossing the websocket, in both
// directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound event types (client -> server).
const (
	EvSubmitRideRequest = "submit_ride_request"
	EvRequestRideShare  = "request_ride_share"
	EvAcceptRideShare   = "accept_ride_share"
	EvDeclineRideShare  = "decline_ride_share"
	EvCancelRideRequest = "cancel_ride_request"
)

// Outbound event types (server -> client).
const (
	EvMatchesFound      = "matches_found"
	EvMatchesUpdated    = "matches_updated"
	EvRideShareRequest  = "ride_share_request"
	EvRideShareAccepted = "ride_share_accepted"
	EvRideShareDeclined = "ride_share_declined"
)

// SubmitPayload is the body of submit_ride_request. Unknown fields are kept
// in Extra and echoed back to other riders untouched.
type SubmitPayload struct {
	UserName     string `json:"userName"`
	PickupCoords Coord  `json:"pickupCoords"`
	DropCoords   Coord  `json:"dropCoords"`
	Preferences
	Extra map[string]json.RawMessage `json:"-"`

	hasPickup, hasDrop bool
}

// Valid reports whether both coordinate pairs were present in the payload
// and decoded to finite numbers. Rejecting here keeps unrepresentable
// values out of the registry and the distance math.
func (p *SubmitPayload) Valid() bool {
	return p.hasPickup && p.hasDrop &&
		p.PickupCoords.Valid() && p.DropCoords.Valid()
}

// submitKnownFields are stripped from the raw body when collecting Extra.
var submitKnownFields = map[string]bool{
	"userName":     true,
	"pickupCoords": true,
	"dropCoords":   true,
	"womenOnly":    true,
	"luggage":      true,
}

func (p *SubmitPayload) UnmarshalJSON(b []byte) error {
	type plain SubmitPayload
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	_, hasPickup := raw["pickupCoords"]
	_, hasDrop := raw["dropCoords"]
	for k := range raw {
		if submitKnownFields[k] {
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		v.Extra = raw
	}
	*p = SubmitPayload(v)
	p.hasPickup, p.hasDrop = hasPickup, hasDrop
	return nil
}

// SharePayload is the body of request_ride_share.
type SharePayload struct {
	TargetUserID string `json:"targetUserId"`
	Message      string `json:"message,omitempty"`
}

// ShareReplyPayload is the body of accept_ride_share and decline_ride_share.
type ShareReplyPayload struct {
	FromUserID string `json:"fromUserId"`
}

// ShareRequestNotice is delivered to the target of a share invitation.
type ShareRequestNotice struct {
	From    RideRequest `json:"from"`
	Message string      `json:"message"`
}

// ShareAcceptedNotice is delivered to both parties of an accepted share.
// MatchedWith is null for the accepter when the source request had already
// vanished by the time the accept arrived.
type ShareAcceptedNotice struct {
	MatchedWith *RideRequest `json:"matchedWith"`
}
