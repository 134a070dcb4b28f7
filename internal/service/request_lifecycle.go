// Package service holds the service-request lifecycle: the transition
// table that moves a request from creation through pricing negotiation,
// acceptance, scheduling and completion or cancellation, gated by the
// acting user and the request's current status.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/myhometech/backend/internal/model"
)

// Lifecycle failure taxonomy. Every transition validates existence, then
// status, then ownership, so callers and tests can tell the three apart
// instead of receiving a collapsed "not available" signal.
var (
	// ErrNotFound is returned when no request exists with the given id.
	ErrNotFound = errors.New("service request not found")
	// ErrInvalidStatus is returned when the request exists but its current
	// status does not permit the attempted transition.
	ErrInvalidStatus = errors.New("service request status does not allow this operation")
	// ErrNotOwner is returned when the request exists in a valid status but
	// the acting user is not the client/technician bound to it.
	ErrNotOwner = errors.New("service request belongs to another user")
	// ErrConflict is returned when the optimistic version check fails, i.e.
	// the request was modified between the read and the write.
	ErrConflict = errors.New("service request was modified concurrently")
)

// RequestStore is the persistence surface the lifecycle needs. The MySQL
// implementation lives in internal/repository; tests substitute an
// in-memory fake. FindByID reports a missing row as sql.ErrNoRows.
// ApplyTransition must persist the mutable lifecycle fields of req only
// when the stored row still carries expectedVersion, returning swapped
// false otherwise.
type RequestStore interface {
	Insert(ctx context.Context, req *model.ServiceRequest) error
	FindByID(ctx context.Context, id uint64) (model.ServiceRequest, error)
	FindPending(ctx context.Context, now time.Time) ([]model.ServiceRequest, error)
	FindByClient(ctx context.Context, clientID uint64) ([]model.ServiceRequest, error)
	FindByTechnician(ctx context.Context, technicianID uint64) ([]model.ServiceRequest, error)
	ApplyTransition(ctx context.Context, req *model.ServiceRequest, expectedVersion uint64) (bool, error)
}

// RequestLifecycle owns every mutation of a service request. Actor
// identities are explicit parameters; nothing below the handler layer
// reads ambient request state.
type RequestLifecycle struct {
	store               RequestStore
	defaultValidMinutes int
}

// NewRequestLifecycle builds a lifecycle over the given store.
// defaultValidMinutes is the fallback discovery window applied when a
// client does not supply one.
func NewRequestLifecycle(store RequestStore, defaultValidMinutes int) *RequestLifecycle {
	if store == nil {
		panic("nil store passed to NewRequestLifecycle")
	}
	if defaultValidMinutes <= 0 {
		defaultValidMinutes = 60
	}
	return &RequestLifecycle{store: store, defaultValidMinutes: defaultValidMinutes}
}

// CreateInput carries the client-supplied fields of a new request.
type CreateInput struct {
	ApplianceID      uint64 `json:"appliance_id"`
	Description      string `json:"description"`
	ClientPriceCents uint32 `json:"client_price_cents"`
	ValidMinutes     int    `json:"valid_minutes"`
}

// Create persists a new pending request for the client. The expiry window
// is ValidMinutes from now, falling back to the configured default when the
// client passes zero or a negative value. The appliance reference is not
// validated here; catalog consistency is the appliance endpoints' concern.
func (l *RequestLifecycle) Create(ctx context.Context, clientID uint64, in CreateInput) (model.ServiceRequest, error) {
	now := time.Now().UTC()
	valid := in.ValidMinutes
	if valid <= 0 {
		valid = l.defaultValidMinutes
	}
	expires := now.Add(time.Duration(valid) * time.Minute)
	req := model.ServiceRequest{
		ClientID:         clientID,
		ApplianceID:      in.ApplianceID,
		Description:      in.Description,
		ClientPriceCents: in.ClientPriceCents,
		Status:           model.StatusPending,
		CreatedAt:        now,
		ExpiresAt:        &expires,
	}
	if err := l.store.Insert(ctx, &req); err != nil {
		return model.ServiceRequest{}, err
	}
	return req, nil
}

// FindPending returns the discoverable pool: pending requests whose expiry
// window has not passed. Expiry is enforced only here; a request past its
// window never flips to cancelled, it just stops being discoverable.
func (l *RequestLifecycle) FindPending(ctx context.Context) ([]model.ServiceRequest, error) {
	return l.store.FindPending(ctx, time.Now().UTC())
}

// GetByID returns a request regardless of status.
func (l *RequestLifecycle) GetByID(ctx context.Context, id uint64) (model.ServiceRequest, error) {
	return l.load(ctx, id)
}

// ListByClient returns every request a client has created.
func (l *RequestLifecycle) ListByClient(ctx context.Context, clientID uint64) ([]model.ServiceRequest, error) {
	return l.store.FindByClient(ctx, clientID)
}

// ListByTechnician returns every request a technician is associated with,
// including ones they rejected.
func (l *RequestLifecycle) ListByTechnician(ctx context.Context, technicianID uint64) ([]model.ServiceRequest, error) {
	return l.store.FindByTechnician(ctx, technicianID)
}

// OfferPrice moves pending -> offered, binding the technician and their
// counter-price to the request. Any technician may offer on any pending
// request; there is no assigned owner to check yet.
func (l *RequestLifecycle) OfferPrice(ctx context.Context, id, technicianID uint64, priceCents uint32) (model.ServiceRequest, error) {
	req, err := l.load(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if req.Status != model.StatusPending {
		return model.ServiceRequest{}, ErrInvalidStatus
	}
	req.TechnicianID = &technicianID
	req.TechnicianPriceCents = &priceCents
	req.Status = model.StatusOffered
	return l.apply(ctx, req)
}

// Accept moves pending|offered -> accepted on behalf of the owning client.
// Accepting straight from pending means the client settled for their own
// asking price without waiting for a counter-offer.
func (l *RequestLifecycle) Accept(ctx context.Context, id, clientID uint64) (model.ServiceRequest, error) {
	req, err := l.load(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if req.Status != model.StatusPending && req.Status != model.StatusOffered {
		return model.ServiceRequest{}, ErrInvalidStatus
	}
	if req.ClientID != clientID {
		return model.ServiceRequest{}, ErrNotOwner
	}
	now := time.Now().UTC()
	req.Status = model.StatusAccepted
	req.AcceptedAt = &now
	return l.apply(ctx, req)
}

// Schedule moves accepted -> scheduled. Only the technician bound to the
// request may schedule it. The timestamp is taken verbatim from the caller
// and deliberately not validated against "now".
func (l *RequestLifecycle) Schedule(ctx context.Context, id, technicianID uint64, scheduledAt time.Time) (model.ServiceRequest, error) {
	req, err := l.load(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if req.Status != model.StatusAccepted {
		return model.ServiceRequest{}, ErrInvalidStatus
	}
	if req.TechnicianID == nil || *req.TechnicianID != technicianID {
		return model.ServiceRequest{}, ErrNotOwner
	}
	at := scheduledAt.UTC()
	req.Status = model.StatusScheduled
	req.ScheduledAt = &at
	return l.apply(ctx, req)
}

// AcceptByTechnician is the shortcut path: pending -> scheduled in one
// step, binding the technician and stamping both acceptance and schedule
// with the same instant. There is no ownership check because a pending
// request has no technician yet.
func (l *RequestLifecycle) AcceptByTechnician(ctx context.Context, id, technicianID uint64) (model.ServiceRequest, error) {
	req, err := l.load(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if req.Status != model.StatusPending {
		return model.ServiceRequest{}, ErrInvalidStatus
	}
	now := time.Now().UTC()
	req.TechnicianID = &technicianID
	req.Status = model.StatusScheduled
	req.AcceptedAt = &now
	req.ScheduledAt = &now
	return l.apply(ctx, req)
}

// CompleteByClient moves scheduled|in_progress -> completed on behalf of
// the owning client. in_progress rows are never produced by this API but
// remain completable when seeded externally.
func (l *RequestLifecycle) CompleteByClient(ctx context.Context, id, clientID uint64) (model.ServiceRequest, error) {
	req, err := l.load(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if req.Status != model.StatusScheduled && req.Status != model.StatusInProgress {
		return model.ServiceRequest{}, ErrInvalidStatus
	}
	if req.ClientID != clientID {
		return model.ServiceRequest{}, ErrNotOwner
	}
	now := time.Now().UTC()
	req.Status = model.StatusCompleted
	req.CompletedAt = &now
	return l.apply(ctx, req)
}

// RejectByTechnician moves pending -> cancelled. The rejecting technician
// is recorded in TechnicianID so the cancellation is attributable; the
// request then appears in that technician's ListByTechnician results.
func (l *RequestLifecycle) RejectByTechnician(ctx context.Context, id, technicianID uint64) (model.ServiceRequest, error) {
	req, err := l.load(ctx, id)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if req.Status != model.StatusPending {
		return model.ServiceRequest{}, ErrInvalidStatus
	}
	now := time.Now().UTC()
	req.TechnicianID = &technicianID
	req.Status = model.StatusCancelled
	req.CancelledAt = &now
	return l.apply(ctx, req)
}

// load fetches a request and maps a missing row to ErrNotFound.
func (l *RequestLifecycle) load(ctx context.Context, id uint64) (model.ServiceRequest, error) {
	req, err := l.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ServiceRequest{}, ErrNotFound
		}
		return model.ServiceRequest{}, err
	}
	return req, nil
}

// apply writes the mutated request guarded by the version read in load.
// A failed swap means another caller won the race for this transition.
func (l *RequestLifecycle) apply(ctx context.Context, req model.ServiceRequest) (model.ServiceRequest, error) {
	swapped, err := l.store.ApplyTransition(ctx, &req, req.Version)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if !swapped {
		return model.ServiceRequest{}, ErrConflict
	}
	return req, nil
}
