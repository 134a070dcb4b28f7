package model

import "time"

// Rating is a client's review of the technician who completed a service
// request. At most one rating exists per request (unique request_id), and a
// rating is only valid against a completed request.
type Rating struct {
	ID           uint64    `json:"id"`            // ratings.id
	RequestID    uint64    `json:"request_id"`    // rated service request (unique)
	ClientID     uint64    `json:"client_id"`     // author
	TechnicianID uint64    `json:"technician_id"` // subject
	Score        uint8     `json:"score"`         // 1..5
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}
