// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// RequestCompletedEvent is published when a client marks a service request
// as completed. It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary database.
type RequestCompletedEvent struct {
	RequestID            uint64  `json:"request_id"`
	ClientID             uint64  `json:"client_id"`
	TechnicianID         uint64  `json:"technician_id"`
	ApplianceID          uint64  `json:"appliance_id"`
	Description          string  `json:"description"`
	ClientPriceCents     uint32  `json:"client_price_cents"`
	TechnicianPriceCents *uint32 `json:"technician_price_cents,omitempty"`
	CompletedAt          string  `json:"completed_at"`
}
