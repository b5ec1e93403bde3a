package bids

import "errors"

// Lookup and authorization errors
var (
	ErrGigNotFound = errors.New("gig not found")
	ErrBidNotFound = errors.New("bid not found")
	ErrNotOwner    = errors.New("not authorized for this gig")
)

// Bid submission guard errors
var (
	ErrInvalidInput = errors.New("invalid bid input")
	ErrGigClosed    = errors.New("gig is no longer accepting bids")
	ErrSelfBid      = errors.New("cannot bid on your own gig")
	ErrAlreadyBid   = errors.New("already bid on this gig")
)

// Optimistic-concurrency conflicts. The caller is expected to refresh
// and retry; every other error above is terminal for the request.
var (
	ErrGigAssigned  = errors.New("gig already assigned")
	ErrBidProcessed = errors.New("bid already processed")
)
