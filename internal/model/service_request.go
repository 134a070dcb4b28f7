package model

import "time"

// RequestStatus enumerates the lifecycle states of a service request.
// Transitions only ever move forward through the graph enforced by the
// lifecycle service; completed and cancelled are terminal.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"     // created, awaiting an offer or direct acceptance
	StatusOffered    RequestStatus = "offered"     // a technician proposed a counter-price
	StatusAccepted   RequestStatus = "accepted"    // client agreed, awaiting scheduling
	StatusScheduled  RequestStatus = "scheduled"   // a concrete service time has been set
	StatusInProgress RequestStatus = "in_progress" // service underway; never set by this API, accepted as a prior state
	StatusCompleted  RequestStatus = "completed"   // terminal
	StatusCancelled  RequestStatus = "cancelled"   // terminal
)

// ServiceRequest is a client's repair job offered to the technician pool.
// It aggregates the client's asking price, an optional technician
// counter-offer, and the timestamps stamped by each lifecycle transition.
//
// Fields:
//
//	ID                   – primary key identifier.
//	ClientID             – owning client, immutable after creation.
//	ApplianceID          – target appliance, immutable after creation.
//	Description          – free-text problem description, immutable.
//	ClientPriceCents     – client's proposed price.
//	TechnicianPriceCents – technician counter-offer, set on offer.
//	Status               – current lifecycle state.
//	TechnicianID         – technician who offered, accepted or rejected.
//	CreatedAt            – creation timestamp.
//	ExpiresAt            – end of the pending discovery window.
//	AcceptedAt/ScheduledAt/CompletedAt/CancelledAt – transition stamps.
//	Version              – optimistic concurrency counter, bumped per write.
type ServiceRequest struct {
	ID                   uint64        `json:"id"`                               // service_requests.id
	ClientID             uint64        `json:"client_id"`                        // service_requests.client_id
	ApplianceID          uint64        `json:"appliance_id"`                     // service_requests.appliance_id
	Description          string        `json:"description"`                      // service_requests.description
	ClientPriceCents     uint32        `json:"client_price_cents"`               // service_requests.client_price_cents
	TechnicianPriceCents *uint32       `json:"technician_price_cents,omitempty"` // nullable counter-offer
	Status               RequestStatus `json:"status"`                           // service_requests.status
	TechnicianID         *uint64       `json:"technician_id,omitempty"`          // nullable until a technician acts
	CreatedAt            time.Time     `json:"created_at"`                       // service_requests.created_at
	ExpiresAt            *time.Time    `json:"expires_at,omitempty"`             // soft expiry of the pending pool
	AcceptedAt           *time.Time    `json:"accepted_at,omitempty"`            // stamped by accept
	ScheduledAt          *time.Time    `json:"scheduled_at,omitempty"`           // stamped by schedule
	CompletedAt          *time.Time    `json:"completed_at,omitempty"`           // stamped by complete
	CancelledAt          *time.Time    `json:"cancelled_at,omitempty"`           // stamped by reject
	Version              uint64        `json:"version"`                          // service_requests.version
}
