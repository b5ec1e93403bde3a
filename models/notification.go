package models

import "time"

// Notification types pushed over the websocket channel.
const (
	NotificationNewBid   = "new_bid"
	NotificationHired    = "hired"
	NotificationRejected = "rejected"
)

// Notification is ephemeral: built at emission time, pushed to the
// recipient's room and never persisted. A recipient who is offline at
// that moment simply misses it.
type Notification struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	GigID          string    `json:"gigId"`
	BidID          string    `json:"bidId,omitempty"`
	FreelancerName string    `json:"freelancerName,omitempty"`
	BidAmount      float64   `json:"bidAmount,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
