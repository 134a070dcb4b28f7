package model

import "time"

// Help ticket states. Tickets are a flat open/closed support flow with no
// further workflow attached.
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// HelpTicket is a support message raised by any authenticated user.
type HelpTicket struct {
	ID        uint64    `json:"id"`      // help_tickets.id
	UserID    uint64    `json:"user_id"` // author (client or technician)
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"` // open | closed
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
