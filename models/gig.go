package models

import "time"

// Gig status values. A gig starts open and is flipped to assigned exactly
// once by the hire transaction; there is no way back.
const (
	GigStatusOpen     = "open"
	GigStatusAssigned = "assigned"
)

type Gig struct {
	GigID       string    `json:"gigid" bson:"gigid"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Budget      float64   `json:"budget" bson:"budget"`
	OwnerID     string    `json:"ownerid" bson:"ownerid"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`

	// Populated for list/detail responses, never stored.
	Owner *UserSummary `json:"owner,omitempty" bson:"-"`
}

func ValidGigStatus(s string) bool {
	return s == GigStatusOpen || s == GigStatusAssigned
}
