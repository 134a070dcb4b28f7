package model

import "time"

// Appliance is an item in a client's personal catalog. Service requests
// reference an appliance by id; the reference is not validated at request
// creation, so a dangling appliance id only affects catalog lookups.
type Appliance struct {
	ID        uint64    `json:"id"`        // appliances.id
	ClientID  uint64    `json:"client_id"` // owning client
	Name      string    `json:"name"`      // e.g. "washing machine"
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
