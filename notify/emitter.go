package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"gigflow/models"
	"gigflow/ws"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Emitter turns domain events into push notifications addressed to one
// user. It is handed to whoever commits the triggering change; emission
// is strictly best-effort and must never fail the commit, so every error
// ends here as a log line.
type Emitter struct {
	hub *ws.Hub
}

func NewEmitter(hub *ws.Hub) *Emitter {
	return &Emitter{hub: hub}
}

// NewBid tells the gig owner a fresh bid arrived.
func (e *Emitter) NewBid(gig *models.Gig, bid *models.Bid, freelancerName string) {
	n := models.Notification{
		ID:             uuid.NewString(),
		Type:           models.NotificationNewBid,
		Message:        fmt.Sprintf("New bid received on %q from %s", gig.Title, freelancerName),
		GigID:          gig.GigID,
		BidID:          bid.BidID,
		FreelancerName: freelancerName,
		BidAmount:      bid.Price,
		Timestamp:      time.Now(),
	}
	e.send(gig.OwnerID, n)
}

// Hired tells the winning freelancer they got the gig.
func (e *Emitter) Hired(gig *models.Gig, bid *models.Bid) {
	n := models.Notification{
		ID:        uuid.NewString(),
		Type:      models.NotificationHired,
		Message:   fmt.Sprintf("You have been hired for %q!", gig.Title),
		GigID:     gig.GigID,
		BidID:     bid.BidID,
		Timestamp: time.Now(),
	}
	e.send(bid.FreelancerID, n)
}

// Rejected tells a losing freelancer their bid was not selected.
func (e *Emitter) Rejected(gig *models.Gig, bid *models.Bid) {
	n := models.Notification{
		ID:        uuid.NewString(),
		Type:      models.NotificationRejected,
		Message:   fmt.Sprintf("Your bid for %q was not selected.", gig.Title),
		GigID:     gig.GigID,
		BidID:     bid.BidID,
		Timestamp: time.Now(),
	}
	e.send(bid.FreelancerID, n)
}

func (e *Emitter) send(recipientID string, n models.Notification) {
	if e == nil || e.hub == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		log.Printf("notify: marshal %s for %s: %v", n.Type, recipientID, err)
		return
	}
	e.hub.Broadcast(ws.UserRoom(recipientID), data)
	log.WithFields(log.Fields{
		"type":      n.Type,
		"recipient": recipientID,
		"gigid":     n.GigID,
	}).Debug("notification emitted")
}
