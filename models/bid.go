package models

import "time"

// Bid status values. pending is the only non-terminal state: the hire
// transaction moves exactly one bid per gig to hired and every other
// pending sibling to rejected.
const (
	BidStatusPending  = "pending"
	BidStatusHired    = "hired"
	BidStatusRejected = "rejected"
)

type Bid struct {
	BidID        string    `json:"bidid" bson:"bidid"`
	GigID        string    `json:"gigid" bson:"gigid"`
	FreelancerID string    `json:"freelancerid" bson:"freelancerid"`
	Message      string    `json:"message" bson:"message"`
	Price        float64   `json:"price" bson:"price"`
	Status       string    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`

	// Populated for responses, never stored.
	Freelancer *UserSummary `json:"freelancer,omitempty" bson:"-"`
	Gig        *Gig         `json:"gig,omitempty" bson:"-"`
}
