package bids

import (
	"context"
	"strings"
	"time"

	"gigflow/models"
	"gigflow/utils"

	log "github.com/sirupsen/logrus"
)

// Notifier is the capability the engine uses to push domain events.
// Implementations must be non-blocking and must swallow their own
// failures; notification loss after a commit is acceptable, a failed
// commit because of a notification is not.
type Notifier interface {
	NewBid(gig *models.Gig, bid *models.Bid, freelancerName string)
	Hired(gig *models.Gig, bid *models.Bid)
	Rejected(gig *models.Gig, bid *models.Bid)
}

// Engine owns the two state-changing operations with real invariants:
// bid submission and the hire transaction. Both run all of their checks
// and writes inside a single Store transaction; cross-request mutual
// exclusion comes from the store's conditional updates, never from an
// in-process lock.
type Engine struct {
	store   Store
	emitter Notifier
}

func NewEngine(store Store, emitter Notifier) *Engine {
	return &Engine{store: store, emitter: emitter}
}

// SubmitBid runs the submission guard and creates a pending bid. Checks
// happen in a fixed order so each failure mode is distinct: gig exists,
// gig still open, caller is not the owner, caller has not already bid.
// All four plus the insert share one transaction so a concurrent
// duplicate cannot slip between the existence check and the insert.
func (e *Engine) SubmitBid(ctx context.Context, gigID, freelancerID, message string, price float64) (*models.Bid, error) {
	if gigID == "" || freelancerID == "" || strings.TrimSpace(message) == "" || price <= 0 {
		return nil, ErrInvalidInput
	}

	bid := &models.Bid{
		BidID:        utils.GenerateID("b"),
		GigID:        gigID,
		FreelancerID: freelancerID,
		Message:      strings.TrimSpace(message),
		Price:        price,
		Status:       models.BidStatusPending,
		CreatedAt:    time.Now(),
	}

	var gig *models.Gig
	err := e.store.WithTxn(ctx, func(txCtx context.Context) error {
		var err error
		gig, err = e.store.GetGig(txCtx, gigID)
		if err != nil {
			return err
		}
		if gig.Status != models.GigStatusOpen {
			return ErrGigClosed
		}
		if gig.OwnerID == freelancerID {
			return ErrSelfBid
		}
		exists, err := e.store.HasBid(txCtx, gigID, freelancerID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyBid
		}
		return e.store.InsertBid(txCtx, bid)
	})
	if err != nil {
		return nil, err
	}

	// Post-commit: populate and notify the gig owner. Neither may fail
	// the already-durable submission.
	freelancer, ferr := e.store.UserSummary(ctx, freelancerID)
	if ferr != nil {
		log.Printf("bids: freelancer lookup after submit %s: %v", bid.BidID, ferr)
	} else {
		bid.Freelancer = freelancer
		e.emitter.NewBid(gig, bid, freelancer.Name)
	}
	bid.Gig = gig

	return bid, nil
}

// HireResult is what a successful hire hands back to the API layer.
type HireResult struct {
	Bid      *models.Bid
	Gig      *models.Gig
	Rejected int64
}

// Hire atomically transitions the gig to assigned, the chosen bid to
// hired and every sibling pending bid to rejected. The two conditional
// updates are the race detectors: when a concurrent hire got there
// first, one of them matches nothing, the transaction aborts and the
// caller gets a conflict to retry after refresh. Exactly one of N
// concurrent calls on the same gig can ever commit.
func (e *Engine) Hire(ctx context.Context, bidID, callerID string) (*HireResult, error) {
	bid, err := e.store.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	gig, err := e.store.GetGig(ctx, bid.GigID)
	if err != nil {
		return nil, err
	}
	if gig.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	var rejected int64
	err = e.store.WithTxn(ctx, func(txCtx context.Context) error {
		// Fixed order: gig CAS, bid CAS, bulk sibling reject.
		if err := e.store.AssignGigIfOpen(txCtx, gig.GigID); err != nil {
			return err
		}
		if err := e.store.MarkBidHiredIfPending(txCtx, bid.BidID); err != nil {
			return err
		}
		n, err := e.store.RejectOtherPendingBids(txCtx, gig.GigID, bid.BidID)
		if err != nil {
			return err
		}
		rejected = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	gig.Status = models.GigStatusAssigned
	bid.Status = models.BidStatusHired

	log.WithFields(log.Fields{
		"gigid":    gig.GigID,
		"bidid":    bid.BidID,
		"rejected": rejected,
	}).Info("freelancer hired")

	e.notifyHireOutcome(ctx, gig, bid)

	if freelancer, err := e.store.UserSummary(ctx, bid.FreelancerID); err == nil {
		bid.Freelancer = freelancer
	}

	return &HireResult{Bid: bid, Gig: gig, Rejected: rejected}, nil
}

// notifyHireOutcome runs after commit. The state change is durable at
// this point; a lost notification is acceptable, a failed one must not
// propagate.
func (e *Engine) notifyHireOutcome(ctx context.Context, gig *models.Gig, hired *models.Bid) {
	e.emitter.Hired(gig, hired)

	losers, err := e.store.RejectedBids(ctx, gig.GigID, hired.BidID)
	if err != nil {
		log.Printf("bids: rejected-bid lookup for gig %s: %v", gig.GigID, err)
		return
	}
	for i := range losers {
		e.emitter.Rejected(gig, &losers[i])
	}
}

// ListForGig returns every bid on a gig, owner only.
func (e *Engine) ListForGig(ctx context.Context, gigID, callerID string) ([]models.Bid, error) {
	gig, err := e.store.GetGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	out, err := e.store.BidsByGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if freelancer, err := e.store.UserSummary(ctx, out[i].FreelancerID); err == nil {
			out[i].Freelancer = freelancer
		}
	}
	return out, nil
}

// ListForFreelancer returns the caller's own bids with their gigs attached.
func (e *Engine) ListForFreelancer(ctx context.Context, freelancerID string) ([]models.Bid, error) {
	out, err := e.store.BidsByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if gig, err := e.store.GetGig(ctx, out[i].GigID); err == nil {
			if owner, err := e.store.UserSummary(ctx, gig.OwnerID); err == nil {
				gig.Owner = owner
			}
			out[i].Gig = gig
		}
	}
	return out, nil
}
