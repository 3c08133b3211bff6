package engine

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/saathigo/internal/matcher"
	"github.com/example/saathigo/internal/models"
	"github.com/example/saathigo/internal/observability"
	"github.com/example/saathigo/internal/registry"
)

// Notifier is the delivery side of the event gateway. Deliver reports
// whether a live connection received the event; delivering to a vanished
// connection is a no-op, never an error, so broadcast loops keep going.
type Notifier interface {
	Connected(connID string) bool
	Deliver(connID string, ev models.Event) bool
}

// MatchArchive persists confirmed matches for audit. Best-effort; the
// matching path never reads it back.
type MatchArchive interface {
	SaveMatch(m models.ConfirmedMatch) error
}

// EventStream publishes pool activity to an analytics bus. Best-effort.
type EventStream interface {
	Publish(kind string, v any) error
}

// PoolMirror mirrors the active pool into an external index for
// monitoring dashboards. Write-only from the engine's point of view.
type PoolMirror interface {
	Upsert(req models.RideRequest)
	Remove(id string)
}

// Engine is the lifecycle state machine and broadcast coordinator behind
// the event gateway. A single mutex serializes every inbound event as one
// atomic step: validation, registry mutation, and the outbound notification
// sequence all complete before the next event observes the registry.
type Engine struct {
	// Optional collaborators; nil disables the corresponding side effect.
	Archive MatchArchive
	Stream  EventStream
	Mirror  PoolMirror

	Params        matcher.Params
	MaxRequestAge time.Duration

	mu     sync.Mutex
	reg    *registry.Registry
	notify Notifier
	log    *slog.Logger
	now    func() time.Time
}

func New(n Notifier, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		reg:    registry.New(),
		notify: n,
		log:    log,
		now:    time.Now,
	}
}

// Submit handles submit_ride_request. The submitter gets matches_found
// immediately; every other searching rider gets matches_updated since the
// new entrant may now qualify for them. Resubmission with the same
// connection replaces the previous request in place.
func (e *Engine) Submit(connID string, p models.SubmitPayload) {
	observability.EventsTotal.WithLabelValues(models.EvSubmitRideRequest).Inc()
	if !p.Valid() {
		e.log.Warn("rejecting malformed ride request", "conn", connID)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	req := models.RideRequest{
		ID:           connID,
		UserName:     p.UserName,
		PickupCoords: p.PickupCoords,
		DropCoords:   p.DropCoords,
		Preferences:  p.Preferences,
		CreatedAt:    e.now(),
		Status:       models.StatusSearching,
		Extra:        p.Extra,
	}
	e.reg.Put(req)
	e.mirrorUpsert(req)
	e.streamPublish("request_submitted", req)
	e.log.Info("ride request submitted", "conn", connID, "user", req.UserName)

	snap := e.reg.Snapshot()
	e.deliver(connID, models.EvMatchesFound, e.matchesFor(req, snap))
	for _, other := range snap {
		if other.ID == connID || other.Status != models.StatusSearching {
			continue
		}
		e.deliver(other.ID, models.EvMatchesUpdated, e.matchesFor(other, snap))
	}
	observability.ActiveRequests.Set(float64(e.reg.Len()))
}

// RequestShare handles request_ride_share: a fire-and-forget invitation
// carrying the requester's full request. If either side is missing the
// invitation is silently dropped; the other party may have disconnected or
// already matched, which is an expected race and not an error.
func (e *Engine) RequestShare(connID string, p models.SharePayload) {
	observability.EventsTotal.WithLabelValues(models.EvRequestRideShare).Inc()

	e.mu.Lock()
	defer e.mu.Unlock()

	requester, ok := e.reg.Get(connID)
	if !ok || !e.notify.Connected(p.TargetUserID) {
		e.log.Debug("dropping share request", "conn", connID, "target", p.TargetUserID)
		return
	}
	msg := p.Message
	if msg == "" {
		msg = fmt.Sprintf("%s wants to share a ride with you!", requester.UserName)
	}
	if e.deliver(p.TargetUserID, models.EvRideShareRequest, models.ShareRequestNotice{From: requester, Message: msg}) {
		observability.ShareInvites.Inc()
		e.log.Info("share invitation sent", "from", connID, "to", p.TargetUserID)
	}
}

// AcceptShare handles accept_ride_share. Both requests move to matched and
// leave the registry, both parties are cross-notified, and the remaining
// pool gets a full broadcast. If the source's request already vanished the
// accepter is still matched and removed, and receives a null matchedWith;
// that asymmetry is deliberate.
func (e *Engine) AcceptShare(connID string, fromID string) {
	observability.EventsTotal.WithLabelValues(models.EvAcceptRideShare).Inc()

	e.mu.Lock()
	defer e.mu.Unlock()

	accepter, ok := e.reg.Get(connID)
	if !ok || !e.notify.Connected(fromID) {
		e.log.Debug("dropping share accept", "conn", connID, "from", fromID)
		return
	}

	source, sourceOK := e.reg.Get(fromID)
	if sourceOK {
		e.reg.SetStatus(fromID, models.StatusMatched)
		source.Status = models.StatusMatched
	}
	e.reg.SetStatus(connID, models.StatusMatched)
	accepter.Status = models.StatusMatched

	if sourceOK {
		e.deliver(fromID, models.EvRideShareAccepted, models.ShareAcceptedNotice{MatchedWith: &accepter})
		e.deliver(connID, models.EvRideShareAccepted, models.ShareAcceptedNotice{MatchedWith: &source})
	} else {
		e.deliver(connID, models.EvRideShareAccepted, models.ShareAcceptedNotice{})
	}

	e.reg.Remove(fromID)
	e.reg.Remove(connID)
	e.mirrorRemove(fromID)
	e.mirrorRemove(connID)

	if sourceOK {
		m := models.ConfirmedMatch{
			ID:          newID(),
			RequesterID: fromID,
			AccepterID:  connID,
			Pickup:      accepter.PickupCoords,
			Drop:        accepter.DropCoords,
			MatchedAt:   e.now(),
		}
		if e.Archive != nil {
			if err := e.Archive.SaveMatch(m); err != nil {
				e.log.Error("match archive write failed", "error", err)
			}
		}
		e.streamPublish("match_confirmed", m)
	}
	observability.SharesAccepted.Inc()
	e.log.Info("share accepted", "accepter", connID, "source", fromID, "source_present", sourceOK)

	e.broadcastLocked()
}

// DeclineShare handles decline_ride_share. Only the source is notified;
// nothing in the registry changes and the decliner remains searching.
func (e *Engine) DeclineShare(connID string, fromID string) {
	observability.EventsTotal.WithLabelValues(models.EvDeclineRideShare).Inc()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deliver(fromID, models.EvRideShareDeclined, nil) {
		observability.SharesDeclined.Inc()
		e.log.Info("share declined", "decliner", connID, "source", fromID)
	} else {
		e.log.Debug("dropping share decline", "conn", connID, "from", fromID)
	}
}

// Cancel handles cancel_ride_request. Removing an absent request is a
// no-op without a broadcast.
func (e *Engine) Cancel(connID string) {
	observability.EventsTotal.WithLabelValues(models.EvCancelRideRequest).Inc()
	e.removeAndBroadcast(connID, "request cancelled")
}

// Disconnect removes the connection's request, if any, as part of the same
// atomic step that forgets the connection. Safe to call for connections
// that never submitted anything.
func (e *Engine) Disconnect(connID string) {
	e.removeAndBroadcast(connID, "connection closed")
}

func (e *Engine) removeAndBroadcast(connID, why string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.reg.Get(connID); !ok {
		return
	}
	e.reg.Remove(connID)
	e.mirrorRemove(connID)
	e.streamPublish("request_cancelled", map[string]string{"id": connID})
	e.log.Info(why, "conn", connID)
	e.broadcastLocked()
}

// ActiveRequests returns the diagnostic snapshot with connection
// identifiers redacted. Read-only; never a mutation path.
func (e *Engine) ActiveRequests() []models.RideRequest {
	snap := e.reg.Snapshot()
	for i := range snap {
		snap[i].ID = ""
	}
	return snap
}

// broadcastLocked recomputes matches for every still-searching request
// against the latest snapshot and pushes matches_updated to each. O(n^2)
// in the pool size, in exchange for every participant's view reflecting
// the registry immediately after each mutation. Caller holds e.mu.
func (e *Engine) broadcastLocked() {
	snap := e.reg.Snapshot()
	for _, req := range snap {
		if req.Status != models.StatusSearching {
			continue
		}
		e.deliver(req.ID, models.EvMatchesUpdated, e.matchesFor(req, snap))
	}
	observability.BroadcastsTotal.Inc()
	observability.ActiveRequests.Set(float64(e.reg.Len()))
}

func (e *Engine) matchesFor(req models.RideRequest, snap []models.RideRequest) []models.MatchCandidate {
	observability.MatchesComputed.Inc()
	matches := matcher.FindMatches(req, snap, e.Params)
	if matches == nil {
		matches = []models.MatchCandidate{}
	}
	return matches
}

func (e *Engine) deliver(connID, eventType string, payload any) bool {
	ev := models.Event{Type: eventType}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			e.log.Error("encoding outbound event", "type", eventType, "error", err)
			return false
		}
		ev.Payload = b
	}
	return e.notify.Deliver(connID, ev)
}

func (e *Engine) mirrorUpsert(req models.RideRequest) {
	if e.Mirror != nil {
		e.Mirror.Upsert(req)
	}
}

func (e *Engine) mirrorRemove(id string) {
	if e.Mirror != nil {
		e.Mirror.Remove(id)
	}
}

func (e *Engine) streamPublish(kind string, v any) {
	if e.Stream == nil {
		return
	}
	if err := e.Stream.Publish(kind, v); err != nil {
		e.log.Warn("event stream publish failed", "kind", kind, "error", err)
	}
}

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }
